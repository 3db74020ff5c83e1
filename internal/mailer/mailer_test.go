package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dancrewzus/webinar-wizard/internal/models"
	"github.com/dancrewzus/webinar-wizard/internal/notify"
	"github.com/dancrewzus/webinar-wizard/pkg/queue"
)

type fakeComposer struct {
	email Email
	err   error
}

func (f fakeComposer) Compose(context.Context, notify.Message) (Email, error) {
	return f.email, f.err
}

type fakeSender struct {
	sent   []string
	failTo string
}

func (f *fakeSender) Send(_ context.Context, to string, _ Email) error {
	f.sent = append(f.sent, to)
	if to == f.failTo {
		return errors.New("mailbox unavailable")
	}
	return nil
}

type fakeLogStore struct {
	entries []models.EmailLog
}

func (f *fakeLogStore) Create(_ context.Context, el *models.EmailLog) error {
	f.entries = append(f.entries, *el)
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time           { return c.t }
func (c fixedClock) Location() *time.Location { return c.t.Location() }

func notificationJob(t *testing.T, msg notify.Message) *queue.Job {
	t.Helper()
	payload, err := json.Marshal(msg)
	require.NoError(t, err)
	return &queue.Job{ID: uuid.New().String(), Type: queue.JobTypeNotification, Payload: payload}
}

func testMsg() notify.Message {
	return notify.Message{
		Kind:       notify.KindReminder,
		Recipients: []string{"ana@example.com", "luis@example.com"},
		Webinar:    notify.WebinarInfo{ID: uuid.New(), Title: "Go Concurrency", Date: "01/06/2025 15:00:00", Duration: 60},
	}
}

func newTestMailer(c Composer, s Sender, logs EmailLogStore) *Mailer {
	return New(nil, c, s, logs, fixedClock{t: time.Now()}, zap.NewNop())
}

func TestProcessSendsToEveryRecipient(t *testing.T) {
	sender := &fakeSender{}
	logs := &fakeLogStore{}
	m := newTestMailer(fakeComposer{email: Email{Subject: "Recordatorio", HTML: "<p>hola</p>"}}, sender, logs)

	err := m.Process(context.Background(), notificationJob(t, testMsg()))
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com", "luis@example.com"}, sender.sent)

	require.Len(t, logs.entries, 2)
	for _, e := range logs.entries {
		assert.Equal(t, models.EmailLogStatusSent, e.Status)
		assert.Equal(t, "Recordatorio", e.Subject)
		assert.NotEmpty(t, e.SentAt)
	}
}

func TestProcessRecordsSendFailureAndContinues(t *testing.T) {
	sender := &fakeSender{failTo: "ana@example.com"}
	logs := &fakeLogStore{}
	m := newTestMailer(fakeComposer{email: Email{Subject: "Recordatorio"}}, sender, logs)

	err := m.Process(context.Background(), notificationJob(t, testMsg()))
	require.NoError(t, err)
	// the second recipient was still attempted
	assert.Equal(t, []string{"ana@example.com", "luis@example.com"}, sender.sent)

	require.Len(t, logs.entries, 2)
	assert.Equal(t, models.EmailLogStatusFailed, logs.entries[0].Status)
	assert.NotEmpty(t, logs.entries[0].ErrorMessage)
	assert.Equal(t, models.EmailLogStatusSent, logs.entries[1].Status)
}

func TestProcessComposeFailureIsRetryable(t *testing.T) {
	sender := &fakeSender{}
	m := newTestMailer(fakeComposer{err: errors.New("rate limited")}, sender, &fakeLogStore{})

	err := m.Process(context.Background(), notificationJob(t, testMsg()))
	require.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestProcessRejectsUnknownJobType(t *testing.T) {
	m := newTestMailer(fakeComposer{}, &fakeSender{}, &fakeLogStore{})
	err := m.Process(context.Background(), &queue.Job{ID: "x", Type: "bogus"})
	require.Error(t, err)
}

func TestStaticComposerCoversEveryKind(t *testing.T) {
	msg := testMsg()
	for _, kind := range []notify.Kind{
		notify.KindReminder, notify.KindAttendeeJoined,
		notify.KindAttendeeLeft, notify.KindWebinarCancelled,
	} {
		msg.Kind = kind
		email, err := StaticComposer{}.Compose(context.Background(), msg)
		require.NoError(t, err, kind)
		assert.NotEmpty(t, email.Subject)
		assert.Contains(t, email.HTML, "Go Concurrency")
	}
}
