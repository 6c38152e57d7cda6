package gamesync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chessink/internal/storage"
)

func TestMergeOverlapExtendsExisting(t *testing.T) {
	initial, moves := MergeHistories(
		storage.StartFEN, "e2e4 e7e5",
		storage.StartFEN, "e7e5 g1f3",
	)
	assert.Equal(t, storage.StartFEN, initial)
	assert.Equal(t, "e2e4 e7e5 g1f3", moves)
}

func TestMergeFullRetransmissionKeepsExisting(t *testing.T) {
	initial, moves := MergeHistories(
		storage.StartFEN, "e2e4 e7e5",
		storage.StartFEN, "e2e4 e7e5",
	)
	assert.Equal(t, storage.StartFEN, initial)
	assert.Equal(t, "e2e4 e7e5", moves)
}

func TestMergeEmptyIncomingKeepsExisting(t *testing.T) {
	initial, moves := MergeHistories(storage.StartFEN, "e2e4", "", "")
	assert.Equal(t, storage.StartFEN, initial)
	assert.Equal(t, "e2e4", moves)
}

func TestMergeEmptyExistingAdoptsIncoming(t *testing.T) {
	initial, moves := MergeHistories("", "", storage.StartFEN, "e2e4 e7e5")
	assert.Equal(t, storage.StartFEN, initial)
	assert.Equal(t, "e2e4 e7e5", moves)
}

func TestMergeDivergentHistoriesAdoptIncoming(t *testing.T) {
	initial, moves := MergeHistories(
		storage.StartFEN, "e2e4",
		storage.StartFEN, "d2d4",
	)
	assert.Equal(t, storage.StartFEN, initial)
	assert.Equal(t, "d2d4", moves)
}

func TestMergeTranspositionKeepsExisting(t *testing.T) {
	// Both knight shuffles return to the starting squares, so the replayed
	// positions are identical even though no move is shared.
	existing := "g1f3 g8f6 f3g1 f6g8"
	incoming := "b1c3 b8c6 c3b1 c6b8"

	initial, moves := MergeHistories(
		storage.StartFEN, existing,
		storage.StartFEN, incoming,
	)
	assert.Equal(t, storage.StartFEN, initial)
	assert.Equal(t, existing, moves)
}

func TestMergeUnreplayableExistingAdoptsIncoming(t *testing.T) {
	initial, moves := MergeHistories(
		storage.StartFEN, "e2e9",
		storage.StartFEN, "d2d4",
	)
	assert.Equal(t, storage.StartFEN, initial)
	assert.Equal(t, "d2d4", moves)
}
