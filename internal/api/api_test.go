package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofcsolver/ofcsolver/ofc/arrangement"
	"github.com/ofcsolver/ofcsolver/ofc/card"
	"github.com/ofcsolver/ofcsolver/ofc/mcts"
	"github.com/ofcsolver/ofcsolver/ofc/solver"
)

// readUntilDecision drains progress heartbeats off conn and returns the
// final decision frame, decoded directly from its raw bytes so that large
// card.Set bitmasks never pass through a lossy float64 (interface{})
// representation.
func readUntilDecision(t *testing.T, conn *websocket.Conn) decisionMessage {
	t.Helper()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		var peek struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &peek); err != nil {
			t.Fatalf("peek frame type: %v", err)
		}
		if peek.Type == "progress" {
			continue
		}
		var final decisionMessage
		if err := json.Unmarshal(data, &final); err != nil {
			t.Fatalf("decode decision frame: %v", err)
		}
		return final
	}
}

func mustParse(t *testing.T, s string) card.Card {
	t.Helper()
	c, err := card.Parse(s)
	if err != nil {
		t.Fatalf("card.Parse(%q): %v", s, err)
	}
	return c
}

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	sv := solver.New(zerolog.Nop())
	srv := NewServer(sv, zerolog.Nop())
	srv.HeartbeatInterval = 10 * time.Millisecond

	ts := httptest.NewServer(http.HandlerFunc(srv.ServeHTTP))
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	return srv, wsURL
}

func freshOpenerState(t *testing.T) solver.State {
	t.Helper()
	dealt := []card.Card{
		mustParse(t, "2h"), mustParse(t, "3c"), mustParse(t, "4d"),
		mustParse(t, "5s"), mustParse(t, "6h"),
	}
	return solver.State{
		Arrangement: arrangement.New(),
		Unseen:      card.FullDeck,
		Street:      mcts.StreetOpener,
		Dealt:       dealt,
	}
}

func TestServeHTTPReturnsDecision(t *testing.T) {
	_, wsURL := testServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	opts := solver.DefaultOptions()
	opts.Threads = 1
	req := SolveRequest{
		State:          freshOpenerState(t),
		MaxSimulations: 20,
		Options:        opts,
	}
	require.NoError(t, conn.WriteJSON(req))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	final := readUntilDecision(t, conn)
	assert.Equal(t, "decision", final.Type)
	assert.Empty(t, final.Error)
	assert.NotZero(t, final.Decision.SimulationsRun)
}

func TestServeHTTPRejectsInvalidState(t *testing.T) {
	_, wsURL := testServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	state := freshOpenerState(t)
	state.Dealt = state.Dealt[:2] // street 0 needs 5 dealt cards

	req := SolveRequest{State: state, MaxSimulations: 5, Options: solver.DefaultOptions()}
	require.NoError(t, conn.WriteJSON(req))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	final := readUntilDecision(t, conn)
	assert.NotEmpty(t, final.Error, "expected an error in the decision frame for an invalid state")
}

func TestHeartbeatIntervalDefaultsWhenUnset(t *testing.T) {
	srv := &Server{}
	assert.Equal(t, 500*time.Millisecond, srv.heartbeatInterval())
}

func TestHeartbeatIntervalHonorsOverride(t *testing.T) {
	srv := &Server{HeartbeatInterval: 25 * time.Millisecond}
	assert.Equal(t, 25*time.Millisecond, srv.heartbeatInterval())
}
