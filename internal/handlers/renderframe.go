package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"chessink/internal/input"
	"chessink/internal/llss"
	"chessink/internal/logging"
	"chessink/internal/newmatch"
	"chessink/internal/render"
	"chessink/internal/storage"
)

const renderTimeout = 15 * time.Second

// renderAndSubmit renders the instance's current screen and pushes the
// frame to the display service. It runs as a fire-and-forget task after the
// triggering mutation has committed; failures are logged, never surfaced.
func (h *Handler) renderAndSubmit(instanceID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
	defer cancel()

	log := logging.WithInstance(instanceID.String())

	inst, err := h.Store.Instance(ctx, instanceID)
	if err != nil {
		log.WithError(err).Warn("render: instance load failed")
		return
	}

	image, gameID, err := h.renderScreen(ctx, inst)
	if err != nil {
		log.WithError(err).Warn("render failed")
		return
	}

	frame := &storage.Frame{
		GameID:     gameID,
		ScreenType: inst.CurrentScreen,
		ImageData:  image,
		ImageHash:  llss.FrameHash(image),
		Width:      inst.DisplayWidth,
		Height:     inst.DisplayHeight,
	}
	if err := h.Store.SaveFrame(ctx, frame); err != nil {
		log.WithError(err).Warn("render: frame save failed")
		return
	}
	if err := h.Store.SetLastFrame(ctx, inst.ID, frame.ID); err != nil {
		log.WithError(err).Warn("render: last frame update failed")
	}

	if inst.LLSSInstanceID == "" {
		return
	}
	resp, err := h.LLSS.SubmitFrame(ctx, inst.LLSSInstanceID, image)
	if err != nil {
		log.WithError(err).Warn("frame submission failed")
		return
	}
	if err := h.Store.MarkFrameSubmitted(ctx, frame.ID, resp.FrameID, time.Now().UTC()); err != nil {
		log.WithError(err).Warn("render: frame submit record failed")
	}
	if err := h.LLSS.Notify(ctx, inst.LLSSInstanceID); err != nil {
		log.WithError(err).Debug("notify failed")
	}
}

// renderScreen builds the frame bytes for the instance's current screen and
// returns the game id the frame belongs to, when any.
func (h *Handler) renderScreen(ctx context.Context, inst *storage.Instance) ([]byte, *uuid.UUID, error) {
	switch inst.CurrentScreen {
	case storage.ScreenPlay:
		if inst.CurrentGameID != nil {
			game, err := h.Store.Game(ctx, *inst.CurrentGameID)
			if err == nil {
				image, err := h.renderPlay(ctx, inst, game)
				return image, &game.ID, err
			}
		}
		// No usable game selected; fall back to the new-match screen.
		image, err := h.renderNewMatch(ctx, inst)
		return image, nil, err

	case storage.ScreenNewMatch:
		image, err := h.renderNewMatch(ctx, inst)
		return image, nil, err

	default:
		image, err := h.Renderer.Setup(render.SetupData{ConfigURL: inst.ConfigurationURL})
		return image, nil, err
	}
}

func (h *Handler) renderNewMatch(ctx context.Context, inst *storage.Instance) ([]byte, error) {
	state := newmatch.Load(inst.NewMatchState)
	name := ""
	if state.AdversaryID != "" {
		if id, err := uuid.Parse(state.AdversaryID); err == nil {
			if adv, err := h.Store.Adversary(ctx, id); err == nil {
				name = adv.FriendlyName
				if name == "" {
					name = adv.LichessUsername
				}
			}
		}
	}
	return h.Renderer.NewMatch(render.NewMatchData{
		AdversaryName: name,
		Color:         state.Color,
		Hints:         render.HintRows(h.Proc.ValidButtons(ctx, inst)),
	})
}

func (h *Handler) renderPlay(ctx context.Context, inst *storage.Instance, game *storage.Game) ([]byte, error) {
	state := input.LoadMoveState(game.MoveState)
	return h.Renderer.Play(render.PlayData{
		Opponent:  game.OpponentUsername,
		MyTurn:    game.IsMyTurn,
		LastMove:  game.LastMove,
		Board:     render.BoardFromFEN(game.FEN),
		StepLabel: stepLabel(state),
		Hints:     render.HintRows(h.Proc.ValidButtons(ctx, inst)),
	})
}

func stepLabel(state input.MoveState) string {
	switch state.Step {
	case input.StepSelectFile:
		return "Select file for " + state.SelectedPiece
	case input.StepSelectRank:
		return "Select rank for " + state.SelectedPiece + state.SelectedFile
	case input.StepDisambiguation:
		return "Choose between candidate moves"
	case input.StepConfirm:
		return "Confirm " + state.PendingMove
	}
	return ""
}
