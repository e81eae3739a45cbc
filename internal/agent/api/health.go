package api

import "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/models"

// Health запрашивает GET /health. 503 возвращается как *APIError.
func (c *Client) Health() (models.HealthResponse, error) {
	var resp models.HealthResponse
	err := c.GetJSON("/health", &resp)
	return resp, err
}
