package input

import (
	"encoding/json"
)

// Step is the current step of the move-input workflow.
type Step string

const (
	StepSelectPiece    Step = "select_piece"
	StepSelectFile     Step = "select_file"
	StepSelectRank     Step = "select_rank"
	StepDisambiguation Step = "disambiguation"
	StepConfirm        Step = "confirm"
)

// MoveState is the serialized move-input workflow state, scoped to one game.
type MoveState struct {
	Step                  Step     `json:"step"`
	SelectedPiece         string   `json:"selected_piece,omitempty"`
	SelectedFile          string   `json:"selected_file,omitempty"`
	SelectedRank          int      `json:"selected_rank,omitempty"`
	DisambiguationOptions []string `json:"disambiguation_options,omitempty"`
	PendingMove           string   `json:"pending_move,omitempty"`
}

// NewMoveState returns the initial workflow state.
func NewMoveState() MoveState {
	return MoveState{Step: StepSelectPiece}
}

// Initial reports whether the state is indistinguishable from a fresh one.
func (s MoveState) Initial() bool {
	return s.Step == StepSelectPiece &&
		s.SelectedPiece == "" &&
		s.SelectedFile == "" &&
		s.SelectedRank == 0 &&
		len(s.DisambiguationOptions) == 0 &&
		s.PendingMove == ""
}

func validStep(st Step) bool {
	switch st {
	case StepSelectPiece, StepSelectFile, StepSelectRank, StepDisambiguation, StepConfirm:
		return true
	}
	return false
}

// consistent reports whether the fields earlier steps should have filled are
// actually present for the current step. A blob that names a step without its
// prerequisites would otherwise feed empty selections into the transitions.
func (s MoveState) consistent() bool {
	switch s.Step {
	case StepSelectFile:
		return s.SelectedPiece != ""
	case StepSelectRank:
		return s.SelectedPiece != "" && s.SelectedFile != ""
	case StepDisambiguation:
		return s.SelectedPiece != "" && s.SelectedFile != "" &&
			s.SelectedRank != 0 && len(s.DisambiguationOptions) > 0
	case StepConfirm:
		return s.PendingMove != ""
	}
	return true
}

// LoadMoveState deserializes a state blob. A missing, corrupt or
// out-of-contract blob resets silently to the initial state.
func LoadMoveState(blob string) MoveState {
	if blob == "" {
		return NewMoveState()
	}
	var s MoveState
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		return NewMoveState()
	}
	if !validStep(s.Step) || !s.consistent() {
		return NewMoveState()
	}
	return s
}

// SerializeMoveState encodes the state for storage.
func SerializeMoveState(s MoveState) string {
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(data)
}
