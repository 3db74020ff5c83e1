package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dancrewzus/webinar-wizard/internal/clock"
	"github.com/dancrewzus/webinar-wizard/internal/models"
	"github.com/dancrewzus/webinar-wizard/internal/notify"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) ListActive(ctx context.Context) ([]models.Webinar, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.Webinar)
	return list, args.Error(1)
}

func (m *mockStore) Update(ctx context.Context, w *models.Webinar) error {
	return m.Called(ctx, w).Error(0)
}

func (m *mockStore) AttendeeEmails(ctx context.Context, id uuid.UUID) ([]string, error) {
	args := m.Called(ctx, id)
	emails, _ := args.Get(0).([]string)
	return emails, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, msg notify.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time           { return c.t }
func (c fixedClock) Location() *time.Location { return c.t.Location() }

func caracas(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(clock.DefaultTimezone)
	require.NoError(t, err)
	return loc
}

// Webinar starting 01/06/2025 15:00:00 local time, one hour long.
func scheduledWebinar() models.Webinar {
	return models.Webinar{
		ID:       uuid.New(),
		Title:    "Go Concurrency",
		Date:     "01/06/2025 15:00:00",
		Duration: 60,
		Status:   models.StatusScheduled,
	}
}

func runSweep(t *testing.T, store *mockStore, n *mockNotifier, now time.Time) {
	t.Helper()
	s := NewSweep(store, n, fixedClock{t: now}, zap.NewNop(), 0)
	require.NoError(t, s.Run(context.Background()))
}

func TestSweepReminderInsideWindow(t *testing.T) {
	loc := caracas(t)
	w := scheduledWebinar()

	store := new(mockStore)
	n := new(mockNotifier)
	store.On("ListActive", mock.Anything).Return([]models.Webinar{w}, nil)
	store.On("AttendeeEmails", mock.Anything, w.ID).Return([]string{"ana@example.com"}, nil)
	n.On("Notify", mock.Anything, mock.MatchedBy(func(msg notify.Message) bool {
		return msg.Kind == notify.KindReminder && len(msg.Recipients) == 1
	})).Return(nil)

	// 14:31 is 29 minutes before start, inside [start-30m, start-25m)
	runSweep(t, store, n, time.Date(2025, 6, 1, 14, 31, 0, 0, loc))
	n.AssertExpectations(t)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSweepReminderOutsideWindow(t *testing.T) {
	loc := caracas(t)
	w := scheduledWebinar()

	for name, now := range map[string]time.Time{
		"too early":  time.Date(2025, 6, 1, 14, 29, 0, 0, loc), // 31 min before
		"too late":   time.Date(2025, 6, 1, 14, 36, 0, 0, loc), // 24 min before
		"later":      time.Date(2025, 6, 1, 14, 40, 0, 0, loc), // 20 min before
		"way before": time.Date(2025, 6, 1, 10, 0, 0, 0, loc),
	} {
		t.Run(name, func(t *testing.T) {
			store := new(mockStore)
			n := new(mockNotifier)
			store.On("ListActive", mock.Anything).Return([]models.Webinar{w}, nil)

			runSweep(t, store, n, now)
			n.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
		})
	}
}

func TestSweepStartsWebinar(t *testing.T) {
	loc := caracas(t)
	w := scheduledWebinar()

	store := new(mockStore)
	store.On("ListActive", mock.Anything).Return([]models.Webinar{w}, nil)
	store.On("Update", mock.Anything, mock.MatchedBy(func(got *models.Webinar) bool {
		return got.ID == w.ID && got.Status == models.StatusInProgress
	})).Return(nil)

	runSweep(t, store, new(mockNotifier), time.Date(2025, 6, 1, 15, 4, 0, 0, loc))
	store.AssertExpectations(t)
}

func TestSweepCompletesWebinar(t *testing.T) {
	loc := caracas(t)
	w := scheduledWebinar()
	w.Status = models.StatusInProgress

	store := new(mockStore)
	store.On("ListActive", mock.Anything).Return([]models.Webinar{w}, nil)
	store.On("Update", mock.Anything, mock.MatchedBy(func(got *models.Webinar) bool {
		return got.Status == models.StatusCompleted
	})).Return(nil)

	runSweep(t, store, new(mockNotifier), time.Date(2025, 6, 1, 16, 4, 0, 0, loc))
	store.AssertExpectations(t)
}

func TestSweepSkipsStraightToCompleted(t *testing.T) {
	// A webinar whose whole run fell between two ticks still settles on
	// completed rather than getting stuck in-progress.
	loc := caracas(t)
	w := scheduledWebinar()
	w.Duration = 30

	store := new(mockStore)
	store.On("ListActive", mock.Anything).Return([]models.Webinar{w}, nil)
	store.On("Update", mock.Anything, mock.MatchedBy(func(got *models.Webinar) bool {
		return got.Status == models.StatusCompleted
	})).Return(nil)

	runSweep(t, store, new(mockNotifier), time.Date(2025, 6, 1, 16, 4, 0, 0, loc))
	store.AssertExpectations(t)
}

func TestSweepNoChangeNoWrite(t *testing.T) {
	loc := caracas(t)
	w := scheduledWebinar()

	store := new(mockStore)
	store.On("ListActive", mock.Anything).Return([]models.Webinar{w}, nil)

	runSweep(t, store, new(mockNotifier), time.Date(2025, 6, 1, 12, 4, 0, 0, loc))
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSweepIsolatesPerWebinarFailures(t *testing.T) {
	loc := caracas(t)
	bad := scheduledWebinar()
	bad.Date = "not a date"
	good := scheduledWebinar()

	store := new(mockStore)
	store.On("ListActive", mock.Anything).Return([]models.Webinar{bad, good}, nil)
	store.On("Update", mock.Anything, mock.MatchedBy(func(got *models.Webinar) bool {
		return got.ID == good.ID && got.Status == models.StatusInProgress
	})).Return(nil)

	runSweep(t, store, new(mockNotifier), time.Date(2025, 6, 1, 15, 4, 0, 0, loc))
	store.AssertExpectations(t)
}

func TestSweepReminderWithEmptyRosterIsSilent(t *testing.T) {
	loc := caracas(t)
	w := scheduledWebinar()

	store := new(mockStore)
	n := new(mockNotifier)
	store.On("ListActive", mock.Anything).Return([]models.Webinar{w}, nil)
	store.On("AttendeeEmails", mock.Anything, w.ID).Return([]string{}, nil)

	runSweep(t, store, n, time.Date(2025, 6, 1, 14, 31, 0, 0, loc))
	n.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}
