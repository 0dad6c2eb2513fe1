package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptRepositoryDisabledWithoutClient(t *testing.T) {
	repo := NewAttemptRepository(nil)
	assert.False(t, repo.Enabled())

	count, err := repo.Increment(context.Background(), "login_attempts:a@b.com:127.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.Count(context.Background(), "login_attempts:a@b.com:127.0.0.1")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, repo.Reset(context.Background(), "login_attempts:a@b.com:127.0.0.1"))
}
