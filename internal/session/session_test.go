package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rfqdomain "smartrfq/internal/rfq/domain"
	"smartrfq/internal/store"
	"smartrfq/internal/tenant"
	"smartrfq/pkg/notify"
	"smartrfq/pkg/snapshot"
)

func TestTimer_PromptsThenLogsOut(t *testing.T) {
	var prompts, logouts atomic.Int32
	notices := notify.NewChanNotifier(4)
	timer := New(Options{
		Timeout:  20 * time.Millisecond,
		Grace:    20 * time.Millisecond,
		Notifier: notices,
		Prompt:   func() { prompts.Add(1) },
		Logout:   func() { logouts.Add(1) },
	})
	timer.Start()
	defer timer.Stop()

	require.Eventually(t, func() bool { return prompts.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return logouts.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, timer.Expiring())

	titles := []string{}
	for _, n := range notices.Drain() {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"Session expiring", "Signed out"}, titles)
}

func TestTimer_TouchDuringGraceKeepsSession(t *testing.T) {
	var logouts atomic.Int32
	prompted := make(chan struct{}, 1)
	timer := New(Options{
		Timeout: 20 * time.Millisecond,
		Grace:   80 * time.Millisecond,
		Prompt:  func() { prompted <- struct{}{} },
		Logout:  func() { logouts.Add(1) },
	})
	timer.Start()
	defer timer.Stop()

	select {
	case <-prompted:
	case <-time.After(time.Second):
		t.Fatal("prompt never fired")
	}
	assert.True(t, timer.Expiring())
	timer.Touch()
	assert.False(t, timer.Expiring())

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, logouts.Load())
}

func TestTimer_StopCancels(t *testing.T) {
	var fired atomic.Int32
	timer := New(Options{
		Timeout: 10 * time.Millisecond,
		Grace:   10 * time.Millisecond,
		Prompt:  func() { fired.Add(1) },
		Logout:  func() { fired.Add(1) },
	})
	timer.Start()
	timer.Stop()
	timer.Touch()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestTimer_LogoutPurgesStores(t *testing.T) {
	rfq := store.NewRFQStore()
	rfq.Add(rfqdomain.Part{ID: "i1", ProjectID: "p1"})
	snapshots := snapshot.NewMemory()
	data, err := rfq.Snapshot()
	require.NoError(t, err)
	require.NoError(t, snapshots.Save(context.Background(), rfq.SnapshotKey(), data))

	done := make(chan struct{})
	timer := New(Options{
		Timeout: 5 * time.Millisecond,
		Grace:   5 * time.Millisecond,
		Logout: func() {
			_ = tenant.Purge(context.Background(), []store.Store{rfq}, snapshots)
			close(done)
		},
	})
	timer.Start()
	defer timer.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("logout never ran")
	}
	assert.Equal(t, store.InitialRFQState(), rfq.State())
	assert.Empty(t, snapshots.Keys())
}
