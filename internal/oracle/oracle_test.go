package oracle

import (
	"reflect"
	"strings"
	"testing"
)

func position(t *testing.T, fen string) *Position {
	t.Helper()
	pos, err := FromFEN(fen)
	if err != nil {
		t.Fatalf("position from %q: %v", fen, err)
	}
	return pos
}

func TestFromFENEmptyMeansStartingPosition(t *testing.T) {
	for _, fen := range []string{"", "  ", "startpos"} {
		pos := position(t, fen)
		if !pos.WhiteToMove() {
			t.Fatalf("start position must be white to move")
		}
		if !strings.HasPrefix(pos.FEN(), "rnbqkbnr/pppppppp/") {
			t.Fatalf("unexpected start fen %q", pos.FEN())
		}
	}
}

func TestFromFENRejectsGarbage(t *testing.T) {
	if _, err := FromFEN("not a fen"); err == nil {
		t.Fatalf("garbage fen must fail")
	}
}

func TestHasMovesAtStart(t *testing.T) {
	pos := position(t, "")
	cases := map[string]bool{
		"P": true, "N": true,
		"B": false, "R": false, "Q": false, "K": false,
		"O-O": false, "O-O-O": false,
		"X": false,
	}
	for token, want := range cases {
		if got := pos.HasMoves(token); got != want {
			t.Fatalf("HasMoves(%q) = %v, want %v", token, got, want)
		}
	}
}

func TestCastleMove(t *testing.T) {
	pos := position(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if uci, ok := pos.CastleMove(KingsideCastle); !ok || uci != "e1g1" {
		t.Fatalf("kingside = (%q, %v)", uci, ok)
	}
	if uci, ok := pos.CastleMove(QueensideCastle); !ok || uci != "e1c1" {
		t.Fatalf("queenside = (%q, %v)", uci, ok)
	}
	if _, ok := position(t, "").CastleMove(KingsideCastle); ok {
		t.Fatalf("castling must be illegal at the start")
	}
	if _, ok := pos.CastleMove("Q"); ok {
		t.Fatalf("non-castle token must not resolve")
	}
}

func TestCandidatesByDestination(t *testing.T) {
	pos := position(t, "")
	got := pos.Candidates("P", 'e', 4)
	if !reflect.DeepEqual(got, []string{"e2e4"}) {
		t.Fatalf("pawn to e4: %v", got)
	}
	got = pos.Candidates("N", 'f', 3)
	if !reflect.DeepEqual(got, []string{"g1f3"}) {
		t.Fatalf("knight to f3: %v", got)
	}
	if got = pos.Candidates("Q", 'd', 4); got != nil {
		t.Fatalf("queen has no moves at start, got %v", got)
	}
}

func TestPawnCandidatesIncludeOriginFileCaptures(t *testing.T) {
	// After 1.e4 d5 the e-pawn can push to e5 or capture on d5; selecting
	// file e rank 5 must offer both.
	pos := position(t, "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2")
	got := pos.Candidates("P", 'e', 5)
	if len(got) != 2 {
		t.Fatalf("expected push and capture, got %v", got)
	}
	want := map[string]bool{"e4e5": true, "e4d5": true}
	for _, u := range got {
		if !want[u] {
			t.Fatalf("unexpected candidate %q in %v", u, got)
		}
	}
}

func TestCandidatesDedupePromotions(t *testing.T) {
	pos := position(t, "4k3/4P3/8/8/8/8/8/4K3 w - - 0 1")
	got := pos.Candidates("P", 'e', 8)
	if len(got) != 4 {
		t.Fatalf("expected 4 promotion moves, got %v", got)
	}
	seen := map[string]bool{}
	for _, u := range got {
		if !strings.HasPrefix(u, "e7e8") || seen[u] {
			t.Fatalf("bad or duplicated candidate %q in %v", u, got)
		}
		seen[u] = true
	}
}

func TestFilesAndRanks(t *testing.T) {
	// Lone knight on g1: destinations e2, f3 and h3.
	pos := position(t, "4k3/8/8/8/8/8/8/4K1N1 w - - 0 1")
	files := pos.Files("N")
	if !reflect.DeepEqual(files, []byte{'e', 'f', 'h'}) {
		t.Fatalf("knight files: %q", files)
	}
	ranks := pos.Ranks("N", 'f')
	if !reflect.DeepEqual(ranks, []int{3}) {
		t.Fatalf("knight ranks on f: %v", ranks)
	}

	pawnFiles := position(t, "").Files("P")
	if !reflect.DeepEqual(pawnFiles, []byte("abcdefgh")) {
		t.Fatalf("pawn files at start: %q", pawnFiles)
	}
	pawnRanks := position(t, "").Ranks("P", 'e')
	if !reflect.DeepEqual(pawnRanks, []int{3, 4}) {
		t.Fatalf("pawn ranks on e: %v", pawnRanks)
	}
}

func TestIsLegal(t *testing.T) {
	pos := position(t, "")
	if !pos.IsLegal("e2e4") {
		t.Fatalf("e2e4 must be legal at the start")
	}
	if pos.IsLegal("e2e5") || pos.IsLegal("nonsense") {
		t.Fatalf("illegal moves must not pass")
	}
}

func TestReplay(t *testing.T) {
	fen, err := Replay("", []string{"e2e4", "e7e5", "g1f3"})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !strings.Contains(fen, "4P3") || !strings.Contains(fen, " b ") {
		t.Fatalf("unexpected fen %q", fen)
	}

	if _, err := Replay("", []string{"e2e5"}); err == nil {
		t.Fatalf("illegal move must abort replay")
	}
	if _, err := Replay("", []string{"zz99"}); err == nil {
		t.Fatalf("undecodable move must abort replay")
	}
	if _, err := Replay("broken fen", nil); err == nil {
		t.Fatalf("bad initial fen must fail")
	}
}
