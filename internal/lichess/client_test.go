package lichess

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGetAccountSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/account" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("unexpected authorization %q", got)
		}
		w.Write([]byte(`{"id":"alice","username":"Alice"}`))
	}))
	defer srv.Close()

	acct, err := NewClient(srv.URL).GetAccount(context.Background(), "tok")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if acct.ID != "alice" || acct.Username != "Alice" {
		t.Fatalf("unexpected account %+v", acct)
	}
}

func TestOngoingGamesKeepsRawPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/account/playing" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"nowPlaying":[
			{"fullId":"abc123","color":"white","isMyTurn":true,"lastMove":"e2e4",
			 "opponent":{"id":"bob","username":"Bob"},"speed":"correspondence"},
			{"fullId":"def456","color":"black"}
		]}`))
	}))
	defer srv.Close()

	games, err := NewClient(srv.URL).OngoingGames(context.Background(), "tok")
	if err != nil {
		t.Fatalf("ongoing games: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
	g := games[0]
	if g.FullID != "abc123" || !g.IsMyTurn || g.Opponent.Username != "Bob" {
		t.Fatalf("unexpected game %+v", g)
	}
	if !strings.Contains(string(g.Raw), `"speed":"correspondence"`) {
		t.Fatalf("raw payload must keep fields the struct drops, got %s", g.Raw)
	}
}

func TestFollowingParsesNDJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/rel/following" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte("{\"id\":\"bob\",\"username\":\"Bob\"}\n\n{\"id\":\"carol\"}\nnot json\n"))
	}))
	defer srv.Close()

	users, err := NewClient(srv.URL).Following(context.Background(), "tok")
	if err != nil {
		t.Fatalf("following: %v", err)
	}
	if len(users) != 2 || users[0].Username != "Bob" || users[1].ID != "carol" {
		t.Fatalf("unexpected users %+v", users)
	}
}

func TestGameStateHeadReadsFirstEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/board/game/stream/abc123" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte("{\"type\":\"gameFull\",\"initialFen\":\"startpos\",\"state\":{\"moves\":\"e2e4 e7e5\"}}\n{\"type\":\"gameState\",\"moves\":\"e2e4 e7e5 g1f3\"}\n"))
	}))
	defer srv.Close()

	head, err := NewClient(srv.URL).GameStateHead(context.Background(), "tok", "abc123")
	if err != nil {
		t.Fatalf("state head: %v", err)
	}
	if head.InitialFEN != "startpos" || head.Moves != "e2e4 e7e5" {
		t.Fatalf("unexpected head %+v", head)
	}
}

func TestGameStateHeadFlatEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{\"type\":\"gameState\",\"moves\":\"e2e4\"}\n"))
	}))
	defer srv.Close()

	head, err := NewClient(srv.URL).GameStateHead(context.Background(), "tok", "abc123")
	if err != nil {
		t.Fatalf("state head: %v", err)
	}
	if head.Moves != "e2e4" {
		t.Fatalf("unexpected head %+v", head)
	}
}

func TestGameStateHeadEmptyStreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).GameStateHead(context.Background(), "tok", "abc123"); err == nil {
		t.Fatalf("empty stream must error")
	}
}

func TestMakeMovePostsToMoveEndpoint(t *testing.T) {
	var path, method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).MakeMove(context.Background(), "tok", "abc123", "e2e4"); err != nil {
		t.Fatalf("make move: %v", err)
	}
	if method != http.MethodPost || path != "/api/board/game/abc123/move/e2e4" {
		t.Fatalf("unexpected request %s %s", method, path)
	}
}

func TestCreateChallengeSendsFormAndExtractsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/challenge/bob" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("rated") != "false" || r.PostForm.Get("color") != "white" || r.PostForm.Get("days") != "3" {
			t.Fatalf("unexpected form %v", r.PostForm)
		}
		w.Write([]byte(`{"challenge":{"id":"ch42"}}`))
	}))
	defer srv.Close()

	id, err := NewClient(srv.URL).CreateChallenge(context.Background(), "tok", "bob", "white")
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	if id != "ch42" {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestCreateChallengeTopLevelID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"ch7"}`))
	}))
	defer srv.Close()

	id, err := NewClient(srv.URL).CreateChallenge(context.Background(), "tok", "bob", "random")
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	if id != "ch7" {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestErrorStatusIncludesBodySnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Not your turn, or game already over"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).MakeMove(context.Background(), "tok", "abc123", "e2e4")
	if err == nil {
		t.Fatalf("4xx must surface as an error")
	}
	if !strings.Contains(err.Error(), "Not your turn") {
		t.Fatalf("error must carry the body snippet, got %v", err)
	}
}
