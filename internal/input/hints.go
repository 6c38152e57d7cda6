package input

import (
	"context"
	"strconv"
	"strings"

	"chessink/internal/oracle"
	"chessink/internal/storage"
)

// Hint is the label and availability of one button for the current screen,
// consumed by the rendering collaborator.
type Hint struct {
	Label   string
	Enabled bool
}

// ValidButtons maps each button to its hint for the instance's current
// screen and workflow step. Navigation arrows are always present.
func (p *Processor) ValidButtons(ctx context.Context, inst *storage.Instance) map[Button]Hint {
	hints := make(map[Button]Hint)

	switch inst.CurrentScreen {
	case storage.ScreenSetup:
		hints[Btn8] = Hint{Label: "Config", Enabled: true}

	case storage.ScreenNewMatch:
		haveAdversaries := false
		if inst.LinkedAccountID != nil {
			haveAdversaries = len(p.adversariesFresh(ctx, *inst.LinkedAccountID)) > 0
		}
		hints[Btn1] = Hint{Label: "Prev Opp", Enabled: haveAdversaries}
		hints[Btn3] = Hint{Label: "Prev Color", Enabled: true}
		hints[Btn6] = Hint{Label: "Next Color", Enabled: true}
		hints[Btn8] = Hint{Label: "Next Opp", Enabled: haveAdversaries}
		hints[Enter] = Hint{Label: "Create", Enabled: true}
		hints[Esc] = Hint{Label: "Cancel", Enabled: true}

	case storage.ScreenPlay:
		if inst.CurrentGameID != nil {
			if game, err := p.repo.Game(ctx, *inst.CurrentGameID); err == nil && game.IsMyTurn {
				if pos, err := oracle.FromFEN(game.FEN); err == nil {
					stepHints(hints, LoadMoveState(game.MoveState), pos)
				}
			}
		}
	}

	hints[HLLeft] = Hint{Label: "←", Enabled: true}
	hints[HLRight] = Hint{Label: "→", Enabled: true}
	return hints
}

// stepHints fills the generic-button hints for the active move-input step.
func stepHints(hints map[Button]Hint, state MoveState, pos *oracle.Position) {
	switch state.Step {
	case StepSelectPiece:
		for i, token := range pieceTokens {
			hints[numberedButtons[i]] = Hint{Label: token, Enabled: pos.HasMoves(token)}
		}
		hints[Esc] = Hint{Label: "Cancel", Enabled: true}

	case StepSelectFile:
		legal := make(map[byte]bool)
		for _, f := range pos.Files(state.SelectedPiece) {
			legal[f] = true
		}
		for i, f := range fileLetters {
			hints[numberedButtons[i]] = Hint{Label: strings.ToUpper(string(f)), Enabled: legal[f]}
		}
		hints[Esc] = Hint{Label: "Back", Enabled: true}

	case StepSelectRank:
		legal := make(map[int]bool)
		if state.SelectedFile != "" {
			for _, r := range pos.Ranks(state.SelectedPiece, state.SelectedFile[0]) {
				legal[r] = true
			}
		}
		for i := range numberedButtons {
			rank := i + 1
			hints[numberedButtons[i]] = Hint{Label: strconv.Itoa(rank), Enabled: legal[rank]}
		}
		hints[Esc] = Hint{Label: "Back", Enabled: true}

	case StepDisambiguation:
		for i, option := range state.DisambiguationOptions {
			if i >= len(numberedButtons) {
				break
			}
			hints[numberedButtons[i]] = Hint{Label: option, Enabled: true}
		}
		hints[Esc] = Hint{Label: "Back", Enabled: true}

	case StepConfirm:
		hints[Enter] = Hint{Label: "Confirm", Enabled: true}
		hints[Esc] = Hint{Label: "Cancel", Enabled: true}
	}
}
