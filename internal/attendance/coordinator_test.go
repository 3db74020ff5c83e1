package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dancrewzus/webinar-wizard/internal/clock"
	"github.com/dancrewzus/webinar-wizard/internal/models"
	"github.com/dancrewzus/webinar-wizard/internal/notify"
)

type mockWebinarStore struct{ mock.Mock }

func (m *mockWebinarStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Webinar, error) {
	args := m.Called(ctx, id)
	w, _ := args.Get(0).(*models.Webinar)
	return w, args.Error(1)
}

func (m *mockWebinarStore) UpdateAttendees(ctx context.Context, id uuid.UUID, attendees []uuid.UUID, updatedAt string) error {
	return m.Called(ctx, id, attendees, updatedAt).Error(0)
}

func (m *mockWebinarStore) SoftDelete(ctx context.Context, id uuid.UUID, at string) error {
	return m.Called(ctx, id, at).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	args := m.Called(ctx, ids)
	list, _ := args.Get(0).([]models.User)
	return list, args.Error(1)
}

func (m *mockUserStore) UpdateWebinars(ctx context.Context, id uuid.UUID, webinars []uuid.UUID, updatedAt string) error {
	return m.Called(ctx, id, webinars, updatedAt).Error(0)
}

type mockTrackStore struct{ mock.Mock }

func (m *mockTrackStore) Create(ctx context.Context, t *models.Track) error {
	return m.Called(ctx, t).Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, msg notify.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time           { return c.t }
func (c fixedClock) Location() *time.Location { return c.t.Location() }

func testClock(t *testing.T) fixedClock {
	t.Helper()
	loc, err := time.LoadLocation(clock.DefaultTimezone)
	require.NoError(t, err)
	return fixedClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, loc)}
}

func newCoordinator(ws *mockWebinarStore, us *mockUserStore, ts *mockTrackStore, n *mockNotifier, clk clock.Clock) *Coordinator {
	return NewCoordinator(ws, us, ts, n, clk, zap.NewNop())
}

func TestJoinAddsBothSides(t *testing.T) {
	ws := new(mockWebinarStore)
	us := new(mockUserStore)
	ts := new(mockTrackStore)
	n := new(mockNotifier)
	clk := testClock(t)

	webinarID := uuid.New()
	userID := uuid.New()
	other := uuid.New()

	w := &models.Webinar{ID: webinarID, Title: "Go Concurrency", Status: models.StatusScheduled,
		MaxAttendees: 10, AttendeeIDs: []uuid.UUID{other}}
	u := &models.User{ID: userID, Email: "ana@example.com", Name: "Ana", WebinarIDs: []uuid.UUID{}}

	ws.On("GetByID", mock.Anything, webinarID).Return(w, nil)
	us.On("GetByID", mock.Anything, userID).Return(u, nil)
	ws.On("UpdateAttendees", mock.Anything, webinarID, []uuid.UUID{other, userID}, mock.Anything).Return(nil)
	us.On("UpdateWebinars", mock.Anything, userID, []uuid.UUID{webinarID}, mock.Anything).Return(nil)
	ts.On("Create", mock.Anything, mock.Anything).Return(nil)
	n.On("Notify", mock.Anything, mock.MatchedBy(func(msg notify.Message) bool {
		return msg.Kind == notify.KindAttendeeJoined && len(msg.Recipients) == 1 && msg.Recipients[0] == "ana@example.com"
	})).Return(nil)

	err := newCoordinator(ws, us, ts, n, clk).Join(context.Background(), webinarID, userID, "10.0.0.1")
	require.NoError(t, err)
	ws.AssertExpectations(t)
	us.AssertExpectations(t)
	n.AssertExpectations(t)
}

func TestJoinAlreadyAttending(t *testing.T) {
	ws := new(mockWebinarStore)
	us := new(mockUserStore)
	clk := testClock(t)

	webinarID := uuid.New()
	userID := uuid.New()
	w := &models.Webinar{ID: webinarID, MaxAttendees: 10, AttendeeIDs: []uuid.UUID{userID}}
	ws.On("GetByID", mock.Anything, webinarID).Return(w, nil)

	err := newCoordinator(ws, us, new(mockTrackStore), new(mockNotifier), clk).
		Join(context.Background(), webinarID, userID, "")
	assert.ErrorIs(t, err, ErrAlreadyAttending)
	us.AssertNotCalled(t, "UpdateWebinars", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinFull(t *testing.T) {
	ws := new(mockWebinarStore)
	clk := testClock(t)

	webinarID := uuid.New()
	w := &models.Webinar{ID: webinarID, MaxAttendees: 2, AttendeeIDs: []uuid.UUID{uuid.New(), uuid.New()}}
	ws.On("GetByID", mock.Anything, webinarID).Return(w, nil)

	err := newCoordinator(ws, new(mockUserStore), new(mockTrackStore), new(mockNotifier), clk).
		Join(context.Background(), webinarID, uuid.New(), "")
	assert.ErrorIs(t, err, ErrWebinarFull)
}

func TestJoinRollsBackRosterOnUserFailure(t *testing.T) {
	ws := new(mockWebinarStore)
	us := new(mockUserStore)
	clk := testClock(t)

	webinarID := uuid.New()
	userID := uuid.New()
	w := &models.Webinar{ID: webinarID, MaxAttendees: 5, AttendeeIDs: []uuid.UUID{}}
	u := &models.User{ID: userID, Email: "ana@example.com", WebinarIDs: []uuid.UUID{}}

	ws.On("GetByID", mock.Anything, webinarID).Return(w, nil)
	us.On("GetByID", mock.Anything, userID).Return(u, nil)
	ws.On("UpdateAttendees", mock.Anything, webinarID, []uuid.UUID{userID}, mock.Anything).Return(nil).Once()
	us.On("UpdateWebinars", mock.Anything, userID, []uuid.UUID{webinarID}, mock.Anything).
		Return(errors.New("write failed"))
	// rollback restores the empty roster
	ws.On("UpdateAttendees", mock.Anything, webinarID, []uuid.UUID{}, mock.Anything).Return(nil).Once()

	err := newCoordinator(ws, us, new(mockTrackStore), new(mockNotifier), clk).
		Join(context.Background(), webinarID, userID, "")
	require.Error(t, err)
	ws.AssertExpectations(t)
}

func TestLeaveRemovesOnlyTargetWebinar(t *testing.T) {
	ws := new(mockWebinarStore)
	us := new(mockUserStore)
	ts := new(mockTrackStore)
	n := new(mockNotifier)
	clk := testClock(t)

	webinarID := uuid.New()
	otherWebinar := uuid.New()
	userID := uuid.New()
	otherUser := uuid.New()

	w := &models.Webinar{ID: webinarID, Title: "Go Concurrency",
		AttendeeIDs: []uuid.UUID{otherUser, userID}}
	u := &models.User{ID: userID, Email: "ana@example.com",
		WebinarIDs: []uuid.UUID{webinarID, otherWebinar}}

	ws.On("GetByID", mock.Anything, webinarID).Return(w, nil)
	us.On("GetByID", mock.Anything, userID).Return(u, nil)
	ws.On("UpdateAttendees", mock.Anything, webinarID, []uuid.UUID{otherUser}, mock.Anything).Return(nil)
	// only the webinar being left disappears from the user's list
	us.On("UpdateWebinars", mock.Anything, userID, []uuid.UUID{otherWebinar}, mock.Anything).Return(nil)
	ts.On("Create", mock.Anything, mock.Anything).Return(nil)
	n.On("Notify", mock.Anything, mock.Anything).Return(nil)

	err := newCoordinator(ws, us, ts, n, clk).Leave(context.Background(), webinarID, userID, "")
	require.NoError(t, err)
	ws.AssertExpectations(t)
	us.AssertExpectations(t)
}

func TestLeaveNotAttending(t *testing.T) {
	ws := new(mockWebinarStore)
	clk := testClock(t)

	webinarID := uuid.New()
	w := &models.Webinar{ID: webinarID, AttendeeIDs: []uuid.UUID{uuid.New()}}
	ws.On("GetByID", mock.Anything, webinarID).Return(w, nil)

	err := newCoordinator(ws, new(mockUserStore), new(mockTrackStore), new(mockNotifier), clk).
		Leave(context.Background(), webinarID, uuid.New(), "")
	assert.ErrorIs(t, err, ErrNotAttending)
}

func TestCancelSeversEveryAttendeeAndNotifies(t *testing.T) {
	ws := new(mockWebinarStore)
	us := new(mockUserStore)
	ts := new(mockTrackStore)
	n := new(mockNotifier)
	clk := testClock(t)

	webinarID := uuid.New()
	otherWebinar := uuid.New()
	actorID := uuid.New()
	u1 := models.User{ID: uuid.New(), Email: "ana@example.com", WebinarIDs: []uuid.UUID{webinarID}}
	u2 := models.User{ID: uuid.New(), Email: "luis@example.com", WebinarIDs: []uuid.UUID{otherWebinar, webinarID}}

	w := &models.Webinar{ID: webinarID, Title: "Go Concurrency",
		AttendeeIDs: []uuid.UUID{u1.ID, u2.ID}}

	ws.On("GetByID", mock.Anything, webinarID).Return(w, nil)
	us.On("ListByIDs", mock.Anything, w.AttendeeIDs).Return([]models.User{u1, u2}, nil)
	us.On("UpdateWebinars", mock.Anything, u1.ID, []uuid.UUID{}, mock.Anything).Return(nil)
	us.On("UpdateWebinars", mock.Anything, u2.ID, []uuid.UUID{otherWebinar}, mock.Anything).Return(nil)
	ws.On("SoftDelete", mock.Anything, webinarID, mock.Anything).Return(nil)
	ts.On("Create", mock.Anything, mock.Anything).Return(nil)
	n.On("Notify", mock.Anything, mock.MatchedBy(func(msg notify.Message) bool {
		return msg.Kind == notify.KindWebinarCancelled &&
			len(msg.Recipients) == 2 &&
			msg.Recipients[0] == "ana@example.com" &&
			msg.Recipients[1] == "luis@example.com"
	})).Return(nil)

	err := newCoordinator(ws, us, ts, n, clk).Cancel(context.Background(), webinarID, actorID, "")
	require.NoError(t, err)
	ws.AssertExpectations(t)
	us.AssertExpectations(t)
	n.AssertExpectations(t)
}

func TestCancelContinuesAfterUserFailure(t *testing.T) {
	ws := new(mockWebinarStore)
	us := new(mockUserStore)
	ts := new(mockTrackStore)
	n := new(mockNotifier)
	clk := testClock(t)

	webinarID := uuid.New()
	u1 := models.User{ID: uuid.New(), Email: "ana@example.com", WebinarIDs: []uuid.UUID{webinarID}}
	u2 := models.User{ID: uuid.New(), Email: "luis@example.com", WebinarIDs: []uuid.UUID{webinarID}}
	w := &models.Webinar{ID: webinarID, AttendeeIDs: []uuid.UUID{u1.ID, u2.ID}}

	ws.On("GetByID", mock.Anything, webinarID).Return(w, nil)
	us.On("ListByIDs", mock.Anything, w.AttendeeIDs).Return([]models.User{u1, u2}, nil)
	us.On("UpdateWebinars", mock.Anything, u1.ID, []uuid.UUID{}, mock.Anything).
		Return(errors.New("write failed"))
	us.On("UpdateWebinars", mock.Anything, u2.ID, []uuid.UUID{}, mock.Anything).Return(nil)
	ws.On("SoftDelete", mock.Anything, webinarID, mock.Anything).Return(nil)
	ts.On("Create", mock.Anything, mock.Anything).Return(nil)
	n.On("Notify", mock.Anything, mock.Anything).Return(nil)

	err := newCoordinator(ws, us, ts, n, clk).Cancel(context.Background(), webinarID, uuid.New(), "")
	require.NoError(t, err)
	us.AssertExpectations(t)
	ws.AssertCalled(t, "SoftDelete", mock.Anything, webinarID, mock.Anything)
}

func TestCancelAlreadyCancelled(t *testing.T) {
	ws := new(mockWebinarStore)
	clk := testClock(t)

	webinarID := uuid.New()
	ws.On("GetByID", mock.Anything, webinarID).Return(&models.Webinar{ID: webinarID, Deleted: true}, nil)

	err := newCoordinator(ws, new(mockUserStore), new(mockTrackStore), new(mockNotifier), clk).
		Cancel(context.Background(), webinarID, uuid.New(), "")
	assert.ErrorIs(t, err, ErrWebinarDeleted)
}
