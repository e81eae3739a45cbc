package tests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/config"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service/mocks"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/logger"
)

func testPager() service.Pager {
	return service.NewPager(config.PaginationConfig{DefaultLimit: 100, MaxLimit: 1000})
}

type meetingsDeps struct {
	svc      *service.MeetingsService
	meetings *mocks.MockMeetingsRepo
	users    *mocks.MockUsersRepo
	tx       *mocks.MockMeetingsTx
}

// создаём сервис встреч на моках
func newMeetingsService(t *testing.T) meetingsDeps {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := meetingsDeps{
		meetings: mocks.NewMockMeetingsRepo(ctrl),
		users:    mocks.NewMockUsersRepo(ctrl),
		tx:       mocks.NewMockMeetingsTx(ctrl),
	}
	d.svc = service.NewMeetingsService(d.meetings, d.users, testPager(), logger.NewNop())
	return d
}

// expectLock: WithUserLock вызывает fn с мок-транзакцией
func (d meetingsDeps) expectLock(userID uuid.UUID) *gomock.Call {
	return d.meetings.EXPECT().
		WithUserLock(gomock.Any(), userID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, fn func(service.MeetingsTx) error) error {
			return fn(d.tx)
		})
}

func at(h, m int) time.Time {
	return time.Date(2024, 1, 15, h, m, 0, 0, time.UTC)
}
