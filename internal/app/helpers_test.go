package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Pictionary/internal/core"
	"github.com/dkeye/Pictionary/internal/domain"
)

type fakeConn struct {
	mu      sync.Mutex
	frames  []core.Frame
	closed  bool
	sendErr error
}

func (c *fakeConn) Send(_ context.Context, f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.frames = append(c.frames, append(core.Frame(nil), f...))
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

func (c *fakeConn) messages(t *testing.T) []map[string]any {
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

func (c *fakeConn) types(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, m := range c.messages(t) {
		out = append(out, m["type"].(string))
	}
	return out
}

func newOrchestrator(policy Policy) *Orchestrator {
	return &Orchestrator{
		Registry: NewRegistry(core.RoomOptions{
			Words: []string{"Apple"},
			Pick:  func(int) int { return 0 },
		}),
		Policy: policy,
	}
}

func mustJoin(t *testing.T, o *Orchestrator, room, name string) (*Membership, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	m, err := o.Join(domain.RoomID(room), domain.PlayerName(name), core.SessionID(room+"/"+name), conn)
	require.NoError(t, err)
	return m, conn
}
