package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func TestMulti(t *testing.T) {
	ok := &recorder{}
	failing := &recorder{err: errors.New("broker down")}
	m := Multi{ok, failing, Nop{}}

	err := m.Publish(context.Background(), New(ExpenseCreated, "g1", "e1", "u1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Len(t, ok.events, 1)
	assert.Len(t, failing.events, 1, "a failing publisher must not stop the others")
}

func TestEmitSwallowsErrors(t *testing.T) {
	failing := &recorder{err: errors.New("nope")}
	assert.NotPanics(t, func() {
		Emit(context.Background(), failing, New(SettlementCreated, "g1", "s1", "u1"))
		Emit(context.Background(), nil, New(SettlementCreated, "g1", "s1", "u1"))
	})
	assert.Len(t, failing.events, 1)
}

func TestEventJSON(t *testing.T) {
	e := New(ExpenseUpdated, "g1", "e1", "u1").WithAmount("12.50")
	body, err := e.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "expense.updated", decoded["type"])
	assert.Equal(t, "g1", decoded["group_id"])
	assert.Equal(t, "12.50", decoded["amount"])
}

func TestHubBroadcastsToGroup(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Subscribe(w, r, r.URL.Query().Get("group"))
	}))
	defer srv.Close()

	dial := func(group string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?group=" + group
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		return conn
	}
	alpha := dial("alpha")
	defer alpha.Close()
	beta := dial("beta")
	defer beta.Close()

	require.Eventually(t, func() bool { return hub.Sessions() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), New(ExpenseCreated, "alpha", "e1", "u1")))

	require.NoError(t, alpha.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := alpha.ReadMessage()
	require.NoError(t, err)
	var got Event
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, ExpenseCreated, got.Type)
	assert.Equal(t, "e1", got.EntityID)

	require.NoError(t, beta.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = beta.ReadMessage()
	assert.Error(t, err, "beta must not receive alpha's events")
}
