package service

import (
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/config"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service/models"
	serr "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/errors"
)

// Pager приводит offset/limit к допустимым значениям.
type Pager struct {
	defaultLimit int
	maxLimit     int
}

func NewPager(cfg config.PaginationConfig) Pager {
	p := Pager{defaultLimit: cfg.DefaultLimit, maxLimit: cfg.MaxLimit}
	if p.defaultLimit <= 0 {
		p.defaultLimit = 100
	}
	if p.maxLimit < p.defaultLimit {
		p.maxLimit = p.defaultLimit
	}
	return p
}

// Normalize: отрицательные значения — ErrInvalidInput,
// limit=0 — лимит по умолчанию, limit больше максимума обрезается.
func (p Pager) Normalize(page models.Page) (models.Page, error) {
	if page.Offset < 0 || page.Limit < 0 {
		return models.Page{}, serr.ErrInvalidInput
	}
	if page.Limit == 0 {
		page.Limit = p.defaultLimit
	}
	if page.Limit > p.maxLimit {
		page.Limit = p.maxLimit
	}
	return page, nil
}
