package input

import (
	"reflect"
	"testing"
)

func TestLoadMoveStateEmptyBlob(t *testing.T) {
	if got := LoadMoveState(""); !got.Initial() {
		t.Fatalf("empty blob must load as initial state, got %+v", got)
	}
}

func TestLoadMoveStateCorruptBlobResets(t *testing.T) {
	for _, blob := range []string{"{not json", `[1,2,3]`, `{"step":"bogus_step"}`} {
		got := LoadMoveState(blob)
		if !got.Initial() {
			t.Fatalf("blob %q must reset silently, got %+v", blob, got)
		}
	}
}

func TestLoadMoveStateMissingPrerequisitesResets(t *testing.T) {
	// A step without the fields the earlier steps fill is out of contract
	// and must reset rather than feed empty selections into a transition.
	blobs := []string{
		`{"step":"select_file"}`,
		`{"step":"select_rank","selected_piece":"P"}`,
		`{"step":"select_rank","selected_file":"e"}`,
		`{"step":"disambiguation","selected_piece":"N","selected_file":"f"}`,
		`{"step":"disambiguation","selected_piece":"N","selected_file":"f","selected_rank":3}`,
		`{"step":"confirm"}`,
	}
	for _, blob := range blobs {
		got := LoadMoveState(blob)
		if !got.Initial() {
			t.Fatalf("blob %q must reset silently, got %+v", blob, got)
		}
	}
}

func TestMoveStateRoundTrip(t *testing.T) {
	state := MoveState{
		Step:                  StepDisambiguation,
		SelectedPiece:         "N",
		SelectedFile:          "f",
		SelectedRank:          3,
		DisambiguationOptions: []string{"d2f3", "g1f3"},
	}
	got := LoadMoveState(SerializeMoveState(state))
	if !reflect.DeepEqual(got, state) {
		t.Fatalf("round trip mismatch: %+v != %+v", got, state)
	}
}

func TestInitialDetectsAnyPopulatedField(t *testing.T) {
	if !(NewMoveState()).Initial() {
		t.Fatalf("fresh state must be initial")
	}
	populated := []MoveState{
		{Step: StepConfirm},
		{Step: StepSelectPiece, SelectedPiece: "P"},
		{Step: StepSelectPiece, PendingMove: "e2e4"},
	}
	for _, s := range populated {
		if s.Initial() {
			t.Fatalf("%+v must not be initial", s)
		}
	}
}
