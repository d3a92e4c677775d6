// ABOUTME: End-to-end test of the daemon over a real unix socket
// ABOUTME: Exercises Run/Shutdown and the socket listener path

package gateway

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/coven-vars/internal/config"
)

func TestGateway_RunOverUnixSocket(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Store.Path = filepath.Join(dir, "variables.json")
	cfg.Gateway.Socket = filepath.Join(dir, "gateway.sock")
	cfg.Gateway.HTTPAddr = ""

	g := New(cfg, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- g.Run(ctx)
	}()

	client := NewClient(cfg.Gateway.Socket, WithTimeout(2*time.Second))

	// Wait for the socket to come up.
	require.Eventually(t, func() bool {
		return client.Health(context.Background())
	}, 5*time.Second, 20*time.Millisecond)

	h := client.Create(context.Background(), "")
	require.True(t, h.Valid())
	assert.True(t, client.Set(context.Background(), h, "name", "Alice"))
	assert.Equal(t, "Alice", client.Get(context.Background(), h, "name"))
	client.Destroy(context.Background(), h)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("gateway did not shut down")
	}

	// The store file persisted across the daemon's lifetime.
	fresh := New(cfg, nil, nil)
	s := fresh.sessions.create("")
	v, ok := s.store.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Alice", v.Render())
}
