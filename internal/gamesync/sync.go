// Package gamesync reconciles locally cached game and adversary records
// against the authoritative remote state.
package gamesync

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"chessink/internal/lichess"
	"chessink/internal/logging"
	"chessink/internal/storage"
)

// Remote is the slice of the Lichess client the synchronizer needs.
type Remote interface {
	OngoingGames(ctx context.Context, token string) ([]lichess.OngoingGame, error)
	GameStateHead(ctx context.Context, token, gameID string) (*lichess.StateHead, error)
	Following(ctx context.Context, token string) ([]lichess.User, error)
}

// GameStore is the persistence surface the synchronizer needs.
// *storage.Store satisfies it.
type GameStore interface {
	GameByLichessID(ctx context.Context, lichessID string) (*storage.Game, error)
	CreateGame(ctx context.Context, game *storage.Game) error
	SaveGame(ctx context.Context, game *storage.Game) error
	UpsertAdversary(ctx context.Context, accountID uuid.UUID, username, friendly string) error
}

// Synchronizer pulls remote game and adversary state into the local store.
type Synchronizer struct {
	store  GameStore
	remote Remote
}

// New wires a synchronizer.
func New(store GameStore, remote Remote) *Synchronizer {
	return &Synchronizer{store: store, remote: remote}
}

// SyncGames fetches the account's ongoing games and upserts local mirrors.
// Per-game failures are logged and skipped; a Game row is never left with a
// partially merged history.
func (s *Synchronizer) SyncGames(ctx context.Context, account *storage.Account) (int, error) {
	if account == nil || account.APIToken == "" {
		return 0, nil
	}
	ongoing, err := s.remote.OngoingGames(ctx, account.APIToken)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, remote := range ongoing {
		if remote.FullID == "" {
			continue
		}
		if err := s.syncOne(ctx, account, remote); err != nil {
			logging.WithGame(remote.FullID).WithError(err).Warn("game sync skipped")
			continue
		}
		count++
	}
	return count, nil
}

func (s *Synchronizer) syncOne(ctx context.Context, account *storage.Account, remote lichess.OngoingGame) error {
	// Prefer the live stream for the authoritative move history; on stream
	// failure fall back to the summary payload.
	var head *lichess.StateHead
	if h, err := s.remote.GameStateHead(ctx, account.APIToken, remote.FullID); err == nil {
		head = h
	} else {
		logging.WithGame(remote.FullID).WithError(err).Debug("board stream unavailable, using summary")
	}

	incomingInitial := ""
	incomingMoves := ""
	lastMove := remote.LastMove
	if head != nil {
		incomingInitial = normalizeInitialFEN(head.InitialFEN)
		incomingMoves = head.Moves
		if lastMove == "" {
			parts := strings.Fields(head.Moves)
			if len(parts) > 0 {
				lastMove = parts[len(parts)-1]
			}
		}
	}

	existing, err := s.store.GameByLichessID(ctx, remote.FullID)
	if err != nil {
		if err != storage.ErrNotFound {
			return err
		}
		game := &storage.Game{
			LichessGameID:    remote.FullID,
			AccountID:        account.ID,
			PlayerColor:      playerColor(remote),
			OpponentUsername: opponentName(remote),
			Status:           mapStatus(remote.Status),
			IsMyTurn:         remote.IsMyTurn,
			FEN:              remote.FEN,
			InitialFEN:       firstNonEmpty(incomingInitial, remote.FEN),
			LastMove:         lastMove,
			Moves:            incomingMoves,
			RawJSON:          string(remote.Raw),
		}
		return s.store.CreateGame(ctx, game)
	}

	existing.AccountID = account.ID
	existing.PlayerColor = playerColor(remote)
	existing.OpponentUsername = opponentName(remote)
	existing.IsMyTurn = remote.IsMyTurn
	existing.FEN = remote.FEN
	existing.LastMove = lastMove
	existing.RawJSON = string(remote.Raw)

	// Status transitions are one-directional: a finished game never goes
	// back to started, whatever a stale summary claims.
	next := mapStatus(remote.Status)
	if !existing.Status.Terminal() || next.Terminal() {
		existing.Status = next
	}

	if incomingInitial != "" || incomingMoves != "" {
		existing.InitialFEN, existing.Moves = MergeHistories(
			existing.InitialFEN, existing.Moves,
			incomingInitial, incomingMoves,
		)
	}

	return s.store.SaveGame(ctx, existing)
}

// SyncAdversaries refreshes the account's adversary list from the players
// the account follows.
func (s *Synchronizer) SyncAdversaries(ctx context.Context, account *storage.Account) (int, error) {
	if account == nil || account.APIToken == "" {
		return 0, nil
	}
	users, err := s.remote.Following(ctx, account.APIToken)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, u := range users {
		username := firstNonEmpty(u.Username, u.ID)
		if username == "" {
			continue
		}
		if err := s.store.UpsertAdversary(ctx, account.ID, username, username); err != nil {
			logging.Log.WithError(err).WithField("adversary", username).Warn("adversary upsert failed")
			continue
		}
		count++
	}
	return count, nil
}

func playerColor(remote lichess.OngoingGame) string {
	if strings.EqualFold(remote.Color, "black") {
		return "black"
	}
	return "white"
}

func opponentName(remote lichess.OngoingGame) string {
	name := firstNonEmpty(remote.Opponent.ID, remote.Opponent.Username)
	if name == "" {
		return "Unknown"
	}
	return name
}

func mapStatus(status *lichess.Status) storage.GameStatus {
	// The ongoing-games summary omits the status object entirely; a game in
	// that list is in progress.
	if status == nil {
		return storage.StatusStarted
	}
	switch strings.ToLower(status.Name) {
	case "created":
		return storage.StatusCreated
	case "started":
		return storage.StatusStarted
	case "aborted":
		return storage.StatusAborted
	case "mate":
		return storage.StatusMate
	case "resign":
		return storage.StatusResign
	case "stalemate":
		return storage.StatusStalemate
	case "timeout":
		return storage.StatusTimeout
	case "draw":
		return storage.StatusDraw
	case "outoftime":
		return storage.StatusOutOfTime
	case "cheat":
		return storage.StatusCheat
	case "nostart":
		return storage.StatusNoStart
	case "variantend":
		return storage.StatusVariantEnd
	default:
		return storage.StatusUnknownFinish
	}
}

func normalizeInitialFEN(fen string) string {
	if fen == "" {
		return ""
	}
	if fen == "startpos" {
		return storage.StartFEN
	}
	return fen
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
