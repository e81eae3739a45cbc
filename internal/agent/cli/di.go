package cli

import (
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/agent/api"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/agent/config"
)

// для тестов
var (
	NewAPIClient = api.NewClient
	SaveSettings = config.Save
)
