package core_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Pictionary/internal/core"
)

// recordingConn stores every frame it is handed.
type recordingConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
	// block makes Send wait for ctx to expire.
	block bool
}

func (c *recordingConn) Send(ctx context.Context, f core.Frame) error {
	if c.block {
		<-ctx.Done()
		return ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, append(core.Frame(nil), f...))
	return nil
}

func (c *recordingConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *recordingConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *recordingConn) messages(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func (c *recordingConn) types(t *testing.T) []string {
	t.Helper()
	msgs := c.messages(t)
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m["type"].(string))
	}
	return out
}

func (c *recordingConn) last(t *testing.T) map[string]any {
	t.Helper()
	msgs := c.messages(t)
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func (c *recordingConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

// firstPick always selects index 0.
func firstPick(int) int { return 0 }

// lastPick always selects the last index.
func lastPick(n int) int { return n - 1 }
