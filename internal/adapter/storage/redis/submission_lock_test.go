package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionLock_AcquireRelease(t *testing.T) {
	_, client := newTestClient(t)
	lock := NewSubmissionLock(client)
	ctx := context.Background()

	token, ok, err := lock.Acquire(ctx, "submit:rA", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = lock.Acquire(ctx, "submit:rA", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")

	require.NoError(t, lock.Release(ctx, "submit:rA", token))

	_, ok, err = lock.Acquire(ctx, "submit:rA", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSubmissionLock_DifferentAddresses(t *testing.T) {
	_, client := newTestClient(t)
	lock := NewSubmissionLock(client)
	ctx := context.Background()

	_, ok1, err := lock.Acquire(ctx, "submit:rA", time.Minute)
	require.NoError(t, err)
	_, ok2, err := lock.Acquire(ctx, "submit:rB", time.Minute)
	require.NoError(t, err)

	assert.True(t, ok1)
	assert.True(t, ok2)
}

func TestSubmissionLock_ReleaseWithStaleToken(t *testing.T) {
	_, client := newTestClient(t)
	lock := NewSubmissionLock(client)
	ctx := context.Background()

	_, ok, err := lock.Acquire(ctx, "submit:rA", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, lock.Release(ctx, "submit:rA", "not-the-owner"))

	_, ok, err = lock.Acquire(ctx, "submit:rA", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "a foreign token must not release the lock")
}

func TestSubmissionLock_Expires(t *testing.T) {
	s, client := newTestClient(t)
	lock := NewSubmissionLock(client)
	ctx := context.Background()

	_, ok, err := lock.Acquire(ctx, "submit:rA", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	s.FastForward(2 * time.Second)

	_, ok, err = lock.Acquire(ctx, "submit:rA", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
