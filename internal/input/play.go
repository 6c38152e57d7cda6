package input

import (
	"context"
	"strings"

	"chessink/internal/logging"
	"chessink/internal/oracle"
	"chessink/internal/storage"
)

// handlePlay drives the move-input state machine for the selected game and
// submits confirmed moves upstream.
func (p *Processor) handlePlay(ctx context.Context, inst *storage.Instance, b Button) (bool, string) {
	if inst.CurrentGameID == nil {
		return false, "No active game"
	}
	game, err := p.repo.Game(ctx, *inst.CurrentGameID)
	if err != nil {
		return false, "Game not found"
	}
	if !game.IsMyTurn {
		return false, "Not your turn"
	}

	state := LoadMoveState(game.MoveState)
	pos, err := oracle.FromFEN(game.FEN)
	if err != nil {
		logging.WithGame(game.ID.String()).WithError(err).Error("stored position unreadable")
		return false, "Invalid board position"
	}

	// ESC with nothing persisted is already at the state it would reset to.
	if b == Esc && state.Step == StepSelectPiece && game.MoveState == "" {
		return false, ""
	}

	out := Advance(state, b, pos)

	switch {
	case out.Confirmed != "":
		return p.submitMove(ctx, inst, game, out.Confirmed)
	case out.Cleared:
		if err := p.repo.ClearMoveState(ctx, game.ID); err != nil {
			logging.WithGame(game.ID.String()).WithError(err).Warn("clear move state")
			return false, ""
		}
		game.MoveState = ""
		return out.Changed, out.Message
	case out.Changed:
		blob := SerializeMoveState(out.State)
		if err := p.repo.SetMoveState(ctx, game.ID, blob); err != nil {
			logging.WithGame(game.ID.String()).WithError(err).Warn("persist move state")
			return false, ""
		}
		game.MoveState = blob
	}
	return out.Changed, out.Message
}

// activeGame loads the instance's selected game and the account token the
// game-level actions need.
func (p *Processor) activeGame(ctx context.Context, inst *storage.Instance) (*storage.Game, string, string) {
	if inst.CurrentGameID == nil {
		return nil, "", "No active game"
	}
	game, err := p.repo.Game(ctx, *inst.CurrentGameID)
	if err != nil {
		return nil, "", "Game not found"
	}
	token := ""
	if inst.LinkedAccountID != nil {
		if account, err := p.repo.Account(ctx, *inst.LinkedAccountID); err == nil {
			token = account.APIToken
		}
	}
	if token == "" {
		return nil, "", "Account not configured"
	}
	return game, token, ""
}

// endGame resigns the selected game, or aborts it when no move has been
// played yet, then returns the instance to the new-match screen.
func (p *Processor) endGame(ctx context.Context, inst *storage.Instance) (bool, string) {
	game, token, msg := p.activeGame(ctx, inst)
	if msg != "" {
		return false, msg
	}
	if game.Status.Terminal() {
		return false, "Game already over"
	}

	if strings.TrimSpace(game.Moves) == "" {
		if err := p.up.AbortGame(ctx, token, game.LichessGameID); err != nil {
			return false, "Abort failed: " + truncate(err.Error(), 80)
		}
		game.Status = storage.StatusAborted
	} else {
		if err := p.up.ResignGame(ctx, token, game.LichessGameID); err != nil {
			return false, "Resign failed: " + truncate(err.Error(), 80)
		}
		game.Status = storage.StatusResign
	}
	game.IsMyTurn = false
	game.MoveState = ""
	if err := p.repo.SaveGame(ctx, game); err != nil {
		logging.WithGame(game.ID.String()).WithError(err).Warn("persist game end")
	}

	inst.CurrentScreen = storage.ScreenNewMatch
	inst.CurrentGameID = nil
	if err := p.repo.SetScreen(ctx, inst.ID, inst.CurrentScreen, nil); err != nil {
		logging.WithInstance(inst.ID.String()).WithError(err).Warn("persist screen change")
	}
	return true, ""
}

// offerDraw sends a draw offer for the selected game. The board itself does
// not change, so no re-render is scheduled.
func (p *Processor) offerDraw(ctx context.Context, inst *storage.Instance) (bool, string) {
	game, token, msg := p.activeGame(ctx, inst)
	if msg != "" {
		return false, msg
	}
	if game.Status.Terminal() {
		return false, "Game already over"
	}
	if err := p.up.OfferDraw(ctx, token, game.LichessGameID); err != nil {
		return false, "Draw offer failed: " + truncate(err.Error(), 80)
	}
	return false, "Draw offered"
}

// submitMove hands the confirmed move to the remote chess server and, on
// success, rolls the local mirror forward so the next render shows it.
// On failure the pending state is kept so the user can retry.
func (p *Processor) submitMove(ctx context.Context, inst *storage.Instance, game *storage.Game, uci string) (bool, string) {
	token := ""
	if inst.LinkedAccountID != nil {
		if account, err := p.repo.Account(ctx, *inst.LinkedAccountID); err == nil {
			token = account.APIToken
		}
	}
	if token == "" {
		return false, "Account not configured"
	}

	if err := p.up.MakeMove(ctx, token, game.LichessGameID, uci); err != nil {
		return false, "Move failed: " + truncate(err.Error(), 80)
	}

	if fen, err := oracle.Replay(game.FEN, []string{uci}); err == nil {
		game.FEN = fen
	}
	game.LastMove = uci
	game.IsMyTurn = false
	game.MoveState = ""
	if game.Moves == "" {
		game.Moves = uci
	} else {
		game.Moves = strings.TrimSpace(game.Moves) + " " + uci
	}
	if err := p.repo.SaveGame(ctx, game); err != nil {
		logging.WithGame(game.ID.String()).WithError(err).Warn("persist submitted move")
	}
	logging.WithGame(game.ID.String()).WithField("move", uci).Info("move submitted")
	return true, ""
}
