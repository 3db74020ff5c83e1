package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceStatusForward(t *testing.T) {
	w := Webinar{Status: StatusScheduled}
	require.NoError(t, w.AdvanceStatus(StatusInProgress))
	require.NoError(t, w.AdvanceStatus(StatusCompleted))
	assert.Equal(t, StatusCompleted, w.Status)
}

func TestAdvanceStatusSkip(t *testing.T) {
	w := Webinar{Status: StatusScheduled}
	require.NoError(t, w.AdvanceStatus(StatusCompleted))
	assert.Equal(t, StatusCompleted, w.Status)
}

func TestAdvanceStatusRejectsBackward(t *testing.T) {
	w := Webinar{Status: StatusCompleted}
	assert.ErrorIs(t, w.AdvanceStatus(StatusInProgress), ErrStatusRegression)
	assert.Equal(t, StatusCompleted, w.Status)

	w = Webinar{Status: StatusInProgress}
	assert.ErrorIs(t, w.AdvanceStatus(StatusScheduled), ErrStatusRegression)
}

func TestAdvanceStatusSameIsNoop(t *testing.T) {
	w := Webinar{Status: StatusInProgress}
	require.NoError(t, w.AdvanceStatus(StatusInProgress))
	assert.Equal(t, StatusInProgress, w.Status)
}

func TestHasAttendee(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	w := Webinar{AttendeeIDs: []uuid.UUID{a}}
	assert.True(t, w.HasAttendee(a))
	assert.False(t, w.HasAttendee(b))
}
