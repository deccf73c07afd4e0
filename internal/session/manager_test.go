package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCancelUnknownIDIsNoOp(t *testing.T) {
	m := NewManager(true)

	m.Cancel("never-opened")
	assert.Equal(t, 0, m.Active())
}

func TestCancelReleasesOnceAndIsIdempotent(t *testing.T) {
	m := NewManager(true)

	released := 0
	m.sessions["abc"] = &Session{
		id:      "abc",
		cancels: []context.CancelFunc{func() { released++ }},
	}

	m.Cancel("abc")
	assert.Equal(t, 1, released)
	assert.Equal(t, 0, m.Active())

	// second cancel after normal close must be a no-op
	m.Cancel("abc")
	assert.Equal(t, 1, released)
}

func TestOpenRejectsEmptyCorrelationID(t *testing.T) {
	m := NewManager(true)

	s, err := m.Open("")
	assert.Error(t, err)
	assert.Nil(t, s)
	assert.Equal(t, 0, m.Active())
}
