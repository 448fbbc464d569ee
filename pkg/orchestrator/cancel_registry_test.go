package orchestrator

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCancelRegistry(t *testing.T) {
	r := newCancelRegistry()
	sessionID := uuid.New()

	assert.False(t, r.isActive(sessionID))
	assert.False(t, r.cancel(sessionID))

	_, cancel := context.WithCancel(context.Background())
	r.register(sessionID, cancel)
	assert.True(t, r.isActive(sessionID))
	assert.Equal(t, 1, r.count())

	assert.True(t, r.cancel(sessionID))

	r.unregister(sessionID)
	assert.False(t, r.isActive(sessionID))
	assert.Equal(t, 0, r.count())
}
