package mirror

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCopier struct {
	name string
	rows int64
	err  error
	ran  *[]string
}

func (f *fakeCopier) Collection() string { return f.name }

func (f *fakeCopier) Copy(ctx context.Context) (int64, error) {
	*f.ran = append(*f.ran, f.name)
	return f.rows, f.err
}

func TestRunCopiesEveryCollectionInOrder(t *testing.T) {
	var ran []string
	copiers := []Copier{
		&fakeCopier{name: "roles", rows: 2, ran: &ran},
		&fakeCopier{name: "users", rows: 10, ran: &ran},
		&fakeCopier{name: "images", rows: 3, ran: &ran},
		&fakeCopier{name: "tracks", rows: 50, ran: &ran},
		&fakeCopier{name: "webinars", rows: 4, ran: &ran},
	}

	err := NewJob(copiers, zap.NewNop(), 0).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"roles", "users", "images", "tracks", "webinars"}, ran)
}

func TestRunContinuesPastFailures(t *testing.T) {
	var ran []string
	boom := errors.New("connection reset")
	copiers := []Copier{
		&fakeCopier{name: "roles", ran: &ran},
		&fakeCopier{name: "users", err: boom, ran: &ran},
		&fakeCopier{name: "webinars", ran: &ran},
	}

	err := NewJob(copiers, zap.NewNop(), 0).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "users")
	// the failure in users did not stop webinars
	assert.Equal(t, []string{"roles", "users", "webinars"}, ran)
}

func TestRunReportsAllFailures(t *testing.T) {
	var ran []string
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	copiers := []Copier{
		&fakeCopier{name: "roles", err: errA, ran: &ran},
		&fakeCopier{name: "users", err: errB, ran: &ran},
	}

	err := NewJob(copiers, zap.NewNop(), 0).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestDefaultCopiersOrder(t *testing.T) {
	copiers := DefaultCopiers(nil, nil)
	var names []string
	for _, c := range copiers {
		names = append(names, c.Collection())
	}
	assert.Equal(t, []string{"roles", "users", "images", "tracks", "webinars", "email_logs"}, names)
}
