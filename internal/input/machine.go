package input

import (
	"chessink/internal/oracle"
)

// Outcome is the result of feeding one button into the move-input machine.
// Exactly one of three shapes comes back: a state change, an advisory no-op
// (Message set, state untouched), or a silent no-op.
type Outcome struct {
	// State is the workflow state after the transition. Meaningless when
	// Cleared is set.
	State MoveState
	// Changed reports whether anything the renderer cares about moved.
	Changed bool
	// Message is an advisory for the user when the input could not be
	// honored, or empty.
	Message string
	// Confirmed carries the finalized UCI move once the user confirms it.
	Confirmed string
	// Cleared means the persisted state blob must be removed.
	Cleared bool
}

func unchanged(s MoveState) Outcome { return Outcome{State: s} }

func advise(s MoveState, msg string) Outcome { return Outcome{State: s, Message: msg} }

func moved(s MoveState) Outcome { return Outcome{State: s, Changed: true} }

// Advance runs one transition of the move-input state machine against the
// legal-move oracle for the game's current position. It performs no I/O; the
// caller persists or clears the returned state.
//
// ESC walks exactly one step back, clearing only the fields owned by the
// step being exited. In SelectPiece ESC aborts the whole workflow; the
// caller downgrades that to a no-op when no state was persisted yet.
func Advance(state MoveState, b Button, pos *oracle.Position) Outcome {
	switch state.Step {
	case StepSelectPiece:
		return advancePiece(state, b, pos)
	case StepSelectFile:
		return advanceFile(state, b)
	case StepSelectRank:
		return advanceRank(state, b, pos)
	case StepDisambiguation:
		return advanceDisambiguation(state, b)
	case StepConfirm:
		return advanceConfirm(state, b)
	}
	return unchanged(state)
}

func advancePiece(state MoveState, b Button, pos *oracle.Position) Outcome {
	if b == Esc {
		return Outcome{Cleared: true, Changed: true}
	}
	idx, ok := ordinal(b)
	if !ok {
		return unchanged(state)
	}
	token := pieceTokens[idx]

	if token == oracle.KingsideCastle || token == oracle.QueensideCastle {
		uci, legal := pos.CastleMove(token)
		if !legal {
			return advise(state, "Castling not legal")
		}
		state.PendingMove = uci
		state.Step = StepConfirm
		return moved(state)
	}

	if !pos.HasMoves(token) {
		return advise(state, "No legal moves for "+token)
	}
	state.SelectedPiece = token
	state.Step = StepSelectFile
	return moved(state)
}

func advanceFile(state MoveState, b Button) Outcome {
	if b == Esc {
		state.Step = StepSelectPiece
		state.SelectedPiece = ""
		return moved(state)
	}
	idx, ok := ordinal(b)
	if !ok {
		return unchanged(state)
	}
	state.SelectedFile = string(fileLetters[idx])
	state.Step = StepSelectRank
	return moved(state)
}

func advanceRank(state MoveState, b Button, pos *oracle.Position) Outcome {
	if b == Esc {
		state.Step = StepSelectFile
		state.SelectedFile = ""
		return moved(state)
	}
	idx, ok := ordinal(b)
	if !ok {
		return unchanged(state)
	}
	rank := idx + 1

	candidates := pos.Candidates(state.SelectedPiece, state.SelectedFile[0], rank)
	if len(candidates) == 0 {
		return advise(state, "Invalid move")
	}

	state.SelectedRank = rank
	if len(candidates) == 1 {
		state.PendingMove = candidates[0]
		state.Step = StepConfirm
		return moved(state)
	}
	state.DisambiguationOptions = candidates
	state.Step = StepDisambiguation
	return moved(state)
}

func advanceDisambiguation(state MoveState, b Button) Outcome {
	if b == Esc {
		state.Step = StepSelectRank
		state.SelectedRank = 0
		state.DisambiguationOptions = nil
		return moved(state)
	}
	idx, ok := ordinal(b)
	if !ok || idx >= len(state.DisambiguationOptions) {
		return unchanged(state)
	}
	state.PendingMove = state.DisambiguationOptions[idx]
	state.DisambiguationOptions = nil
	state.Step = StepConfirm
	return moved(state)
}

func advanceConfirm(state MoveState, b Button) Outcome {
	switch b {
	case Enter:
		return Outcome{Confirmed: state.PendingMove, Cleared: true, Changed: true}
	case Esc:
		return Outcome{Cleared: true, Changed: true}
	}
	return unchanged(state)
}
