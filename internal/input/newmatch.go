package input

import (
	"context"

	"github.com/google/uuid"

	"chessink/internal/logging"
	"chessink/internal/newmatch"
	"chessink/internal/storage"
)

// handleNewMatch pages through adversaries and colors and submits challenges.
//
//	BTN_1 / BTN_8  previous / next adversary
//	BTN_3 / BTN_6  previous / next color
//	ENTER          create the challenge
//	ESC            cancel, no side effects
func (p *Processor) handleNewMatch(ctx context.Context, inst *storage.Instance, b Button) (bool, string) {
	state := newmatch.Load(inst.NewMatchState)

	switch b {
	case Btn1:
		return p.cycleAdversary(ctx, inst, state, -1)
	case Btn8:
		return p.cycleAdversary(ctx, inst, state, 1)
	case Btn3:
		return p.cycleColor(ctx, inst, state, -1)
	case Btn6:
		return p.cycleColor(ctx, inst, state, 1)
	case Enter:
		return p.createMatch(ctx, inst, state)
	}
	return false, ""
}

func (p *Processor) cycleColor(ctx context.Context, inst *storage.Instance, state newmatch.State, direction int) (bool, string) {
	state = newmatch.CycleColor(state, direction)
	return p.saveNewMatchState(ctx, inst, state)
}

func (p *Processor) cycleAdversary(ctx context.Context, inst *storage.Instance, state newmatch.State, direction int) (bool, string) {
	if inst.LinkedAccountID == nil {
		return false, "No account linked"
	}
	advs := p.adversariesFresh(ctx, *inst.LinkedAccountID)
	if len(advs) == 0 {
		return false, "No adversaries configured"
	}
	ids := make([]string, len(advs))
	for i, adv := range advs {
		ids[i] = adv.ID.String()
	}
	state = newmatch.CycleAdversary(state, ids, direction)
	return p.saveNewMatchState(ctx, inst, state)
}

func (p *Processor) saveNewMatchState(ctx context.Context, inst *storage.Instance, state newmatch.State) (bool, string) {
	blob := newmatch.Serialize(state)
	if err := p.repo.SetNewMatchState(ctx, inst.ID, blob); err != nil {
		logging.WithInstance(inst.ID.String()).WithError(err).Warn("persist new-match state")
		return false, ""
	}
	inst.NewMatchState = blob
	return true, ""
}

// adversariesFresh returns the account's adversaries, refreshing the cache
// from upstream when the newest row is older than the freshness window.
// Refresh errors are swallowed and the stale cache is used.
func (p *Processor) adversariesFresh(ctx context.Context, accountID uuid.UUID) []storage.Adversary {
	latest, err := p.repo.LatestAdversaryUpdate(ctx, accountID)
	if err != nil || latest == nil || p.now().Sub(*latest) > adversarySyncWindow {
		if account, err := p.repo.Account(ctx, accountID); err == nil {
			if _, err := p.sync.SyncAdversaries(ctx, account); err != nil {
				logging.Log.WithError(err).Debug("adversary sync failed, using cached list")
			}
		}
	}
	advs, err := p.repo.Adversaries(ctx, accountID)
	if err != nil {
		return nil
	}
	return advs
}

// createMatch validates the selection and issues a challenge upstream.
func (p *Processor) createMatch(ctx context.Context, inst *storage.Instance, state newmatch.State) (bool, string) {
	if inst.LinkedAccountID == nil {
		return false, "No account linked"
	}
	account, err := p.repo.Account(ctx, *inst.LinkedAccountID)
	if err != nil || account.APIToken == "" {
		return false, "Account not configured"
	}

	if state.AdversaryID == "" {
		return false, "No adversary selected"
	}
	advID, err := uuid.Parse(state.AdversaryID)
	if err != nil {
		return false, "No adversary selected"
	}
	adversary, err := p.repo.Adversary(ctx, advID)
	if err != nil {
		return false, "Adversary not found"
	}

	color := state.Color
	if color == "" {
		color = newmatch.Colors[0]
	}

	challengeID, err := p.up.CreateChallenge(ctx, account.APIToken, adversary.LichessUsername, color)
	if err != nil {
		return false, "Failed to create challenge: " + truncate(err.Error(), 80)
	}

	name := adversary.FriendlyName
	if name == "" {
		name = adversary.LichessUsername
	}
	if challengeID != "" {
		return true, "Challenge " + challengeID + " sent to " + name
	}
	return true, "Challenge sent to " + name
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
