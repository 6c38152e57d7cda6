// Package lichess is a minimal client for the pieces of the Lichess API the
// service uses: account lookup, ongoing games, the board state stream,
// moves, challenges and the following list. Every call is timeout-bound and
// throttled to stay inside the published API limits.
package lichess

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const defaultTimeout = 10 * time.Second

// Client talks to the Lichess REST API. The token is passed per call so one
// client serves every linked account.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a client for the given API base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		// Lichess allows sustained polite traffic; one request per 500ms
		// with small bursts keeps us well inside it.
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 4),
	}
}

// Account is the authenticated user's profile.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// User is a minimal profile entry from the following list.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Opponent is the other player of an ongoing game.
type Opponent struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Status is a game lifecycle descriptor.
type Status struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// OngoingGame is one entry of the ongoing-games summary.
type OngoingGame struct {
	FullID   string          `json:"fullId"`
	GameID   string          `json:"gameId"`
	Color    string          `json:"color"`
	FEN      string          `json:"fen"`
	IsMyTurn bool            `json:"isMyTurn"`
	LastMove string          `json:"lastMove"`
	Opponent Opponent        `json:"opponent"`
	Status   *Status         `json:"status"`
	Raw      json.RawMessage `json:"-"`
}

// StateHead is the first event of a game's board stream: the authoritative
// move history and initial position.
type StateHead struct {
	InitialFEN string
	Moves      string
}

func (c *Client) do(ctx context.Context, token, method, path string, form url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	return resp, nil
}

// GetAccount fetches the authenticated user's profile. It doubles as token
// validation during account setup.
func (c *Client) GetAccount(ctx context.Context, token string) (*Account, error) {
	resp, err := c.do(ctx, token, http.MethodGet, "/api/account", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var acct Account
	if err := json.NewDecoder(resp.Body).Decode(&acct); err != nil {
		return nil, errors.Wrap(err, "decode account")
	}
	return &acct, nil
}

// OngoingGames lists the account's games in progress.
func (c *Client) OngoingGames(ctx context.Context, token string) ([]OngoingGame, error) {
	resp, err := c.do(ctx, token, http.MethodGet, "/api/account/playing", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var payload struct {
		NowPlaying []json.RawMessage `json:"nowPlaying"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode ongoing games")
	}
	games := make([]OngoingGame, 0, len(payload.NowPlaying))
	for _, raw := range payload.NowPlaying {
		var g OngoingGame
		if err := json.Unmarshal(raw, &g); err != nil {
			continue
		}
		g.Raw = raw
		games = append(games, g)
	}
	return games, nil
}

// Following lists the players the account follows.
func (c *Client) Following(ctx context.Context, token string) ([]User, error) {
	resp, err := c.do(ctx, token, http.MethodGet, "/api/rel/following", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// ND-JSON: one user object per line.
	var users []User
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var u User
		if err := json.Unmarshal([]byte(line), &u); err != nil {
			continue
		}
		users = append(users, u)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read following stream")
	}
	return users, nil
}

// GameStateHead reads the first event of the board stream for a game, which
// carries the full move history and initial position, then disconnects.
func (c *Client) GameStateHead(ctx context.Context, token, gameID string) (*StateHead, error) {
	resp, err := c.do(ctx, token, http.MethodGet, "/api/board/game/stream/"+gameID, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event struct {
			Type       string `json:"type"`
			InitialFEN string `json:"initialFen"`
			State      *struct {
				Moves string `json:"moves"`
			} `json:"state"`
			Moves string `json:"moves"`
		}
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			return nil, errors.Wrap(err, "decode stream event")
		}
		head := &StateHead{InitialFEN: event.InitialFEN}
		if event.State != nil {
			head.Moves = event.State.Moves
		} else {
			head.Moves = event.Moves
		}
		return head, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read game stream")
	}
	return nil, errors.New("game stream ended without an event")
}

// MakeMove plays a UCI move in an ongoing game.
func (c *Client) MakeMove(ctx context.Context, token, gameID, uci string) error {
	resp, err := c.do(ctx, token, http.MethodPost, fmt.Sprintf("/api/board/game/%s/move/%s", gameID, uci), nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// CreateChallenge challenges a user to a correspondence game and returns the
// challenge id when the response carries one.
func (c *Client) CreateChallenge(ctx context.Context, token, username, color string) (string, error) {
	form := url.Values{}
	form.Set("rated", "false")
	form.Set("color", color)
	form.Set("days", "3")
	resp, err := c.do(ctx, token, http.MethodPost, "/api/challenge/"+username, form)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var payload struct {
		ID        string `json:"id"`
		Challenge *struct {
			ID string `json:"id"`
		} `json:"challenge"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", nil
	}
	if payload.Challenge != nil && payload.Challenge.ID != "" {
		return payload.Challenge.ID, nil
	}
	return payload.ID, nil
}

// ResignGame resigns an ongoing game.
func (c *Client) ResignGame(ctx context.Context, token, gameID string) error {
	resp, err := c.do(ctx, token, http.MethodPost, "/api/board/game/"+gameID+"/resign", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// OfferDraw offers or accepts a draw in an ongoing game.
func (c *Client) OfferDraw(ctx context.Context, token, gameID string) error {
	resp, err := c.do(ctx, token, http.MethodPost, "/api/board/game/"+gameID+"/draw/yes", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// AbortGame aborts a game that has not really started yet.
func (c *Client) AbortGame(ctx context.Context, token, gameID string) error {
	resp, err := c.do(ctx, token, http.MethodPost, "/api/board/game/"+gameID+"/abort", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
