package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShutdownManager_Defaults(t *testing.T) {
	sm := NewShutdownManager(nil, 0)
	assert.NotNil(t, sm.logger)
	assert.Equal(t, 30*time.Second, sm.shutdownTimeout)
}

func TestShutdownManager_RunsAllFuncs(t *testing.T) {
	sm := NewShutdownManager(NewNopLogger(), time.Second)

	var calls atomic.Int32
	for _, name := range []string{"cron", "watcher", "redis"} {
		sm.RegisterShutdownFunc(name, func(ctx context.Context) error {
			calls.Add(1)
			return nil
		})
	}
	sm.RegisterShutdownFunc("nil", nil)

	require.NoError(t, sm.Shutdown())
	assert.Equal(t, int32(3), calls.Load())
}

func TestShutdownManager_CollectsErrors(t *testing.T) {
	sm := NewShutdownManager(NewNopLogger(), time.Second)
	sm.RegisterShutdownFunc("ok", func(ctx context.Context) error { return nil })
	sm.RegisterShutdownFunc("journal", func(ctx context.Context) error { return errors.New("close failed") })

	err := sm.Shutdown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal: close failed")
}

func TestShutdownManager_Timeout(t *testing.T) {
	sm := NewShutdownManager(NewNopLogger(), 50*time.Millisecond)
	sm.RegisterShutdownFunc("slow", func(ctx context.Context) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})

	err := sm.Shutdown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestShutdownManager_StopsServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &http.Server{Handler: http.NotFoundHandler()}
	served := make(chan error, 1)
	go func() { served <- server.Serve(ln) }()

	sm := NewShutdownManager(NewNopLogger(), time.Second, server)
	require.NoError(t, sm.Shutdown())

	select {
	case err := <-served:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}

func TestShutdownManager_WaitForShutdownOnContext(t *testing.T) {
	sm := NewShutdownManager(NewNopLogger(), time.Second)

	var ran atomic.Bool
	sm.RegisterShutdownFunc("flag", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, sm.WaitForShutdown(ctx))
	assert.True(t, ran.Load())
}
