package tests

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/config"
	dm "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/models"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service/mocks"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service/models"
	serr "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/errors"
)

// Правило пересечения: start < otherEnd && end > otherStart
func TestInterval_Overlaps(t *testing.T) {
	base := dm.Interval{Start: at(9, 0), End: at(10, 0)}

	tests := []struct {
		name string
		iv   dm.Interval
		want bool
	}{
		{"identical", base, true},
		{"inside", dm.Interval{Start: at(9, 15), End: at(9, 45)}, true},
		{"covering", dm.Interval{Start: at(8, 0), End: at(11, 0)}, true},
		{"left overlap", dm.Interval{Start: at(8, 30), End: at(9, 30)}, true},
		{"right overlap", dm.Interval{Start: at(9, 30), End: at(10, 30)}, true},
		{"touching before", dm.Interval{Start: at(8, 0), End: at(9, 0)}, false},
		{"touching after", dm.Interval{Start: at(10, 0), End: at(11, 0)}, false},
		{"disjoint", dm.Interval{Start: at(12, 0), End: at(13, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, base.Overlaps(tt.iv))
			require.Equal(t, tt.want, tt.iv.Overlaps(base))
		})
	}
}

func TestInterval_Valid(t *testing.T) {
	require.True(t, dm.Interval{Start: at(9, 0), End: at(9, 1)}.Valid())
	require.False(t, dm.Interval{Start: at(9, 0), End: at(9, 0)}.Valid())
	require.False(t, dm.Interval{Start: at(10, 0), End: at(9, 0)}.Valid())
}

func TestOverlapChecker_Ensure(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	tx := mocks.NewMockMeetingsTx(ctrl)

	var checker service.OverlapChecker
	userID, self := uuid.New(), uuid.New()
	iv := dm.Interval{Start: at(9, 0), End: at(10, 0)}

	// невалидный интервал: в хранилище не ходим
	err := checker.Ensure(ctx, tx, userID, dm.Interval{Start: at(10, 0), End: at(9, 0)}, uuid.Nil)
	require.ErrorIs(t, err, serr.ErrInvalidTimeRange)

	tx.EXPECT().HasOverlap(ctx, userID, iv, self).Return(false, nil)
	require.NoError(t, checker.Ensure(ctx, tx, userID, iv, self))

	tx.EXPECT().HasOverlap(ctx, userID, iv, uuid.Nil).Return(true, nil)
	require.ErrorIs(t, checker.Ensure(ctx, tx, userID, iv, uuid.Nil), serr.ErrSchedulingConflict)

	tx.EXPECT().HasOverlap(ctx, userID, iv, uuid.Nil).Return(false, serr.ErrInternal)
	require.ErrorIs(t, checker.Ensure(ctx, tx, userID, iv, uuid.Nil), serr.ErrInternal)
}

func TestPager_Normalize(t *testing.T) {
	p := service.NewPager(config.PaginationConfig{DefaultLimit: 20, MaxLimit: 50})

	tests := []struct {
		name    string
		in      models.Page
		want    models.Page
		wantErr bool
	}{
		{"defaults", models.Page{}, models.Page{Limit: 20}, false},
		{"keep", models.Page{Offset: 3, Limit: 10}, models.Page{Offset: 3, Limit: 10}, false},
		{"clamp", models.Page{Limit: 51}, models.Page{Limit: 50}, false},
		{"negative offset", models.Page{Offset: -1}, models.Page{}, true},
		{"negative limit", models.Page{Limit: -5}, models.Page{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Normalize(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, serr.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

// Пустой конфиг пагинации: лимит 100
func TestPager_ZeroConfig(t *testing.T) {
	p := service.NewPager(config.PaginationConfig{})

	got, err := p.Normalize(models.Page{})
	require.NoError(t, err)
	require.Equal(t, 100, got.Limit)
}
