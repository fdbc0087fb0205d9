package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"soapcore/internal/infra/persistence/memory"
)

type scriptedReply struct {
	body string
	err  error
}

// fakeTransport answers by the root field of the posted document.
type fakeTransport struct {
	mu      sync.Mutex
	replies map[string]scriptedReply
	calls   []string
	bodies  [][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{replies: make(map[string]scriptedReply)}
}

func (f *fakeTransport) reply(root, body string) *fakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[root] = scriptedReply{body: body}
	return f
}

func (f *fakeTransport) fail(root string, err error) *fakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[root] = scriptedReply{err: err}
	return f
}

func (f *fakeTransport) Do(ctx context.Context, body []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var env struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("fake transport: bad envelope: %w", err)
	}
	root := rootField(env.Query)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, root)
	f.bodies = append(f.bodies, append([]byte(nil), body...))
	r, ok := f.replies[root]
	if !ok {
		return nil, fmt.Errorf("fake transport: no reply scripted for %s", root)
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.body), nil
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func rootField(doc string) string {
	_, rest, ok := strings.Cut(doc, "{")
	if !ok {
		return ""
	}
	root, _, _ := strings.Cut(strings.TrimSpace(rest), "(")
	return root
}

// recordingLogger keeps warn messages for assertions.
type recordingLogger struct {
	noopLogger
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprint(append([]any{msg}, args...)...))
}

func (l *recordingLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warns)
}

func newTestClient(t *testing.T, ft *fakeTransport, opts ...ClientOption) (*Client, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	c := NewClient(ft, store, opts...)
	require.Same(t, store, c.Store())
	return c, store
}

func requireEmpty(t *testing.T, store *memory.Store) {
	t.Helper()
	for entity, n := range store.Counts() {
		require.Zerof(t, n, "expected no %s entities", entity)
	}
	_, ok := store.SessionUser()
	require.False(t, ok, "expected no session user")
}
