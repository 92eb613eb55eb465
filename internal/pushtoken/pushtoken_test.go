package pushtoken

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cristianoliveira/bellsync/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOffline = errors.New("offline")

type fakeRegistrar struct {
	mu         sync.Mutex
	failures   int
	registered []string
	removed    []string
	attempts   int
}

func (f *fakeRegistrar) RegisterPushToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failures > 0 {
		f.failures--
		return errOffline
	}
	f.registered = append(f.registered, token)
	return nil
}

func (f *fakeRegistrar) UnregisterPushToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failures > 0 {
		f.failures--
		return errOffline
	}
	f.removed = append(f.removed, token)
	return nil
}

func wait(t *testing.T, job *retry.Job) {
	t.Helper()
	select {
	case <-job.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish")
	}
}

func TestSendRetriesUntilRegistered(t *testing.T) {
	reg := &fakeRegistrar{failures: 3}
	d := New(reg, WithPolicy(retry.Immediate()))
	defer d.Close()

	job := d.Send("tok")
	wait(t, job)

	require.NoError(t, job.Err())
	assert.Equal(t, []string{"tok"}, reg.registered)
	assert.Equal(t, 4, reg.attempts)
	assert.Equal(t, "tok", d.Token())
}

func TestDeleteUnregisters(t *testing.T) {
	reg := &fakeRegistrar{failures: 1}
	d := New(reg, WithPolicy(retry.Immediate()))
	defer d.Close()

	wait(t, d.Send("tok"))
	job := d.Delete("tok")
	wait(t, job)

	require.NoError(t, job.Err())
	assert.Equal(t, []string{"tok"}, reg.removed)
	assert.Empty(t, d.Token())
}

func TestNewRequestSupersedesPending(t *testing.T) {
	reg := &fakeRegistrar{failures: 1 << 30}
	d := New(reg, WithPolicy(retry.Constant(time.Hour)))
	defer d.Close()

	first := d.Send("old")
	second := d.Send("new")

	wait(t, first)
	require.ErrorIs(t, first.Err(), context.Canceled)
	assert.Equal(t, "new", d.Token())

	d.Close()
	wait(t, second)
	require.ErrorIs(t, second.Err(), context.Canceled)
	assert.Empty(t, reg.registered)
}

func TestCloseWithoutRequests(t *testing.T) {
	d := New(&fakeRegistrar{})
	d.Close()
	d.Close()
}

func TestPendingUntilRequestSucceeds(t *testing.T) {
	reg := &fakeRegistrar{failures: 1_000_000}
	d := New(reg, WithPolicy(retry.Constant(5*time.Millisecond)))
	assert.False(t, d.Pending())

	d.Delete("tok")
	assert.True(t, d.Pending())

	reg.mu.Lock()
	reg.failures = 0
	reg.mu.Unlock()
	assert.Eventually(t, func() bool { return !d.Pending() }, 2*time.Second, 5*time.Millisecond)

	d.Close()
	assert.False(t, d.Pending())
}
