package input

import (
	"context"
	"time"

	"github.com/google/uuid"

	"chessink/internal/logging"
	"chessink/internal/storage"
)

// Staleness windows for the cached remote state. Refresh failures are
// swallowed and the stale cache is used.
const (
	gamesSyncWindow     = 30 * time.Second
	adversarySyncWindow = 60 * time.Second
)

const newMatchKey = "new_match"

// Repo is the persistence surface the processor needs. *storage.Store
// satisfies it.
type Repo interface {
	Account(ctx context.Context, id uuid.UUID) (*storage.Account, error)
	TouchGamesSync(ctx context.Context, accountID uuid.UUID, at time.Time) error

	Adversaries(ctx context.Context, accountID uuid.UUID) ([]storage.Adversary, error)
	Adversary(ctx context.Context, id uuid.UUID) (*storage.Adversary, error)
	LatestAdversaryUpdate(ctx context.Context, accountID uuid.UUID) (*time.Time, error)

	Game(ctx context.Context, id uuid.UUID) (*storage.Game, error)
	ActiveGames(ctx context.Context, accountID uuid.UUID) ([]storage.Game, error)
	SaveGame(ctx context.Context, game *storage.Game) error
	SetMoveState(ctx context.Context, gameID uuid.UUID, blob string) error
	ClearMoveState(ctx context.Context, gameID uuid.UUID) error

	SetScreen(ctx context.Context, id uuid.UUID, screen storage.ScreenType, gameID *uuid.UUID) error
	SetNewMatchState(ctx context.Context, id uuid.UUID, blob string) error
}

// Upstream is the remote chess-server surface the processor needs.
type Upstream interface {
	CreateChallenge(ctx context.Context, token, username, color string) (string, error)
	MakeMove(ctx context.Context, token, gameID, uci string) error
	ResignGame(ctx context.Context, token, gameID string) error
	OfferDraw(ctx context.Context, token, gameID string) error
	AbortGame(ctx context.Context, token, gameID string) error
}

// Syncer reconciles cached games and adversaries with the remote state.
type Syncer interface {
	SyncGames(ctx context.Context, account *storage.Account) (int, error)
	SyncAdversaries(ctx context.Context, account *storage.Account) (int, error)
}

// Processor routes button events to the active screen's workflow.
type Processor struct {
	repo Repo
	up   Upstream
	sync Syncer
	now  func() time.Time
}

// NewProcessor wires a processor with its collaborators.
func NewProcessor(repo Repo, up Upstream, sync Syncer) *Processor {
	return &Processor{repo: repo, up: up, sync: sync, now: time.Now}
}

// ProcessEvent routes one button event. A LONG_PRESS on the play screen
// maps to game-level actions (resign, abort, draw offer); every other event
// is handled like a plain press.
func (p *Processor) ProcessEvent(ctx context.Context, inst *storage.Instance, b Button, et EventType) (bool, string) {
	if et == LongPress && inst.CurrentScreen == storage.ScreenPlay {
		switch b {
		case Esc:
			return p.endGame(ctx, inst)
		case Enter:
			return p.offerDraw(ctx, inst)
		}
	}
	return p.ProcessButton(ctx, inst, b)
}

// ProcessButton handles one button press for the instance. It returns
// whether visible state changed (so a re-render should be scheduled) and an
// optional advisory message. It never returns an error: integration
// failures are swallowed or surfaced as truncated messages.
func (p *Processor) ProcessButton(ctx context.Context, inst *storage.Instance, b Button) (bool, string) {
	switch b {
	case HLLeft:
		return p.navigate(ctx, inst, -1)
	case HLRight:
		return p.navigate(ctx, inst, 1)
	}

	switch inst.CurrentScreen {
	case storage.ScreenSetup:
		return p.handleSetup(ctx, inst)
	case storage.ScreenNewMatch:
		return p.handleNewMatch(ctx, inst, b)
	case storage.ScreenPlay:
		return p.handlePlay(ctx, inst, b)
	}
	return false, ""
}

// navigate cycles through [new_match, game...] with wraparound. The target
// list is rebuilt on every event from the account's active games, refreshed
// through the synchronizer when the cache is stale.
func (p *Processor) navigate(ctx context.Context, inst *storage.Instance, direction int) (bool, string) {
	if inst.CurrentScreen == storage.ScreenSetup && inst.NeedsConfiguration {
		return false, "Configure an account first"
	}

	targets := []string{newMatchKey}
	if inst.LinkedAccountID != nil {
		account, err := p.repo.Account(ctx, *inst.LinkedAccountID)
		if err == nil {
			p.refreshGames(ctx, account)
			games, err := p.repo.ActiveGames(ctx, account.ID)
			if err == nil {
				for _, g := range games {
					targets = append(targets, g.ID.String())
				}
			}
		}
	}

	current := newMatchKey
	if inst.CurrentScreen == storage.ScreenPlay && inst.CurrentGameID != nil {
		current = inst.CurrentGameID.String()
	}
	idx := 0
	for i, t := range targets {
		if t == current {
			idx = i
			break
		}
	}

	n := len(targets)
	next := targets[((idx+direction)%n+n)%n]

	if next == newMatchKey {
		inst.CurrentScreen = storage.ScreenNewMatch
		inst.CurrentGameID = nil
	} else {
		id, err := uuid.Parse(next)
		if err != nil {
			return false, ""
		}
		inst.CurrentScreen = storage.ScreenPlay
		inst.CurrentGameID = &id
	}
	if err := p.repo.SetScreen(ctx, inst.ID, inst.CurrentScreen, inst.CurrentGameID); err != nil {
		logging.WithInstance(inst.ID.String()).WithError(err).Warn("persist screen change")
		return false, ""
	}
	return true, ""
}

// refreshGames re-syncs the account's game list when the cache is older than
// the staleness window. Failures never block navigation.
func (p *Processor) refreshGames(ctx context.Context, account *storage.Account) {
	now := p.now()
	if account.LastGamesSyncAt != nil && now.Sub(*account.LastGamesSyncAt) <= gamesSyncWindow {
		return
	}
	if _, err := p.sync.SyncGames(ctx, account); err != nil {
		logging.Log.WithError(err).Debug("game sync failed, using cached games")
		return
	}
	if err := p.repo.TouchGamesSync(ctx, account.ID, now); err != nil {
		logging.Log.WithError(err).Warn("record game sync time")
	}
	account.LastGamesSyncAt = &now
}

// handleSetup leaves the setup screen on any button once a press arrives.
func (p *Processor) handleSetup(ctx context.Context, inst *storage.Instance) (bool, string) {
	inst.CurrentScreen = storage.ScreenNewMatch
	inst.CurrentGameID = nil
	if err := p.repo.SetScreen(ctx, inst.ID, inst.CurrentScreen, nil); err != nil {
		return false, ""
	}
	return true, ""
}
