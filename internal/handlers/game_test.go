// internal/handlers/game_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/cardhall/internal/engine"
	"github.com/jason-s-yu/cardhall/internal/game"
	"github.com/jason-s-yu/cardhall/internal/models"
)

func newTestServer(t *testing.T) (*GameServer, *httptest.Server) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	gs := NewGameServer(logger, nil)
	srv := httptest.NewServer(gs.Routes())
	t.Cleanup(func() {
		srv.Close()
		gs.Store.Close()
	})
	return gs, srv
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func createSimple(t *testing.T, base string) string {
	t.Helper()
	resp := postJSON(t, base+"/games", map[string]interface{}{"variant": "simple", "players": []string{"p", "q"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out struct {
		GameID string       `json:"game_id"`
		State  engine.State `json:"state"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.GameID)
	assert.Empty(t, out.State.Owners["p"].Cards)
	return out.GameID
}

func giveTurn(player, to, card string) models.Turn {
	t := models.Turn{PlayerID: player, Kind: models.TurnPlay}
	for _, c := range models.MustParseCards(card) {
		t.Transactions = append(t.Transactions, models.Transaction{Card: c, From: player, To: to})
	}
	return t
}

func TestCreateGameValidation(t *testing.T) {
	_, srv := newTestServer(t)

	cases := []struct {
		name string
		body interface{}
		code int
	}{
		{"unknown variant", map[string]interface{}{"variant": "cambia", "players": []string{"a", "b"}}, http.StatusBadRequest},
		{"wrong player count", map[string]interface{}{"variant": "vietcong", "players": []string{"a", "b"}}, http.StatusBadRequest},
		{"bad option", map[string]interface{}{"variant": "vietcong", "players": []string{"a", "b", "c", "d"},
			"options": map[string]interface{}{"deckSize": 60}}, http.StatusBadRequest},
		{"ok", map[string]interface{}{"variant": "fish", "players": []string{"a", "b", "c", "x", "y", "z"}}, http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/games", tc.body)
			assert.Equal(t, tc.code, resp.StatusCode)
		})
	}

	resp, err := http.Post(srv.URL+"/games", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitTurnOverHTTP(t *testing.T) {
	_, srv := newTestServer(t)
	id := createSimple(t, srv.URL)

	var out submitResponse
	resp := postJSON(t, srv.URL+"/games/"+id+"/turns", giveTurn("q", "p", "AD"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Accepted)
	assert.Contains(t, out.Reason, "protocol")
	assert.Equal(t, 0, out.State.Seq)

	resp = postJSON(t, srv.URL+"/games/"+id+"/turns", giveTurn("p", "q", "AC"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Accepted)
	assert.Equal(t, 1, out.State.Seq)
	assert.Len(t, out.State.Owners["p"].Cards, 9)
	assert.Empty(t, out.State.Owners["q"].Cards)

	get, err := http.Get(srv.URL + "/games/" + id + "?player=q")
	require.NoError(t, err)
	defer get.Body.Close()
	var st engine.State
	require.NoError(t, json.NewDecoder(get.Body).Decode(&st))
	assert.Len(t, st.Owners["q"].Cards, 11)
	assert.Equal(t, "q", st.CurrentPlayer)

	resp = postJSON(t, srv.URL+"/games/nope/turns", giveTurn("p", "q", "2C"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteGame(t *testing.T) {
	gs, srv := newTestServer(t)
	id := createSimple(t, srv.URL)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/games/"+id, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, ok := gs.Store.Get(id)
	assert.False(t, ok)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStorageRoutesWithoutDB(t *testing.T) {
	_, srv := newTestServer(t)
	for _, path := range []string{"/replays/" + "00000000-0000-0000-0000-000000000000", "/users/p/stats"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
	}
}

func dial(t *testing.T, srv *httptest.Server, id, player string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/games/" + id + "/ws?player=" + player
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{Subprotocols: []string{"game"}})
	require.NoError(t, err)
	t.Cleanup(func() { c.CloseNow() })
	return c
}

func readEvent(t *testing.T, c *websocket.Conn) game.GameEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	var ev game.GameEvent
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

// readUntil skips events until one of type typ arrives.
func readUntil(t *testing.T, c *websocket.Conn, typ game.GameEventType, match func(game.GameEvent) bool) game.GameEvent {
	t.Helper()
	for i := 0; i < 10; i++ {
		ev := readEvent(t, c)
		if ev.Type == typ && (match == nil || match(ev)) {
			return ev
		}
	}
	t.Fatalf("no %s event", typ)
	return game.GameEvent{}
}

func sendMsg(t *testing.T, c *websocket.Conn, msg GameMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Write(ctx, websocket.MessageText, data))
}

func TestGameSocketFlow(t *testing.T) {
	gs, srv := newTestServer(t)
	id := createSimple(t, srv.URL)

	p := dial(t, srv, id, "p")
	sync := readEvent(t, p)
	require.Equal(t, game.EventPrivateSyncState, sync.Type)
	assert.Len(t, sync.State.Owners["p"].Cards, 10)
	assert.Empty(t, sync.State.Owners["q"].Cards)

	q := dial(t, srv, id, "q")
	require.Equal(t, game.EventPrivateSyncState, readEvent(t, q).Type)
	require.Eventually(t, func() bool { return gs.Hub.Subscribers(id) == 2 }, time.Second, 10*time.Millisecond)

	// q is not on turn
	turn := giveTurn("q", "p", "AD")
	sendMsg(t, q, GameMessage{Type: "turn", Turn: &turn})
	rej := readUntil(t, q, game.EventTurnRejected, nil)
	assert.Contains(t, rej.Payload["message"], "protocol")

	// the submitted player id is ignored in favor of the connection's
	turn = giveTurn("q", "q", "AC")
	turn.Transactions[0].From = "p"
	sendMsg(t, p, GameMessage{Type: "turn", Turn: &turn})

	atSeq1 := func(ev game.GameEvent) bool { return ev.State != nil && ev.State.Seq == 1 }
	seen := readUntil(t, q, game.EventGameState, atSeq1)
	assert.Len(t, seen.State.Owners["q"].Cards, 11)
	assert.Empty(t, seen.State.Owners["p"].Cards)

	seen = readUntil(t, p, game.EventGameState, atSeq1)
	assert.Len(t, seen.State.Owners["p"].Cards, 9)

	sendMsg(t, p, GameMessage{Type: "ping"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := p.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(data))
}

func TestGameSocketRejectsStrangers(t *testing.T) {
	_, srv := newTestServer(t)
	id := createSimple(t, srv.URL)

	c := dial(t, srv, id, "mallory")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _, err := c.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusCode(InvalidPlayerError), websocket.CloseStatus(err))

	missing := dial(t, srv, "missing", "p")
	_, _, err = missing.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusCode(InvalidGameIDError), websocket.CloseStatus(err))
}

func TestObserverCannotSubmit(t *testing.T) {
	_, srv := newTestServer(t)
	id := createSimple(t, srv.URL)

	obs := dial(t, srv, id, "")
	sync := readEvent(t, obs)
	assert.Empty(t, sync.State.Owners["p"].Cards)

	turn := giveTurn("p", "q", "AC")
	sendMsg(t, obs, GameMessage{Type: "turn", Turn: &turn})
	ev := readUntil(t, obs, game.EventError, nil)
	assert.Equal(t, "observers cannot submit turns", ev.Payload["message"])
}
