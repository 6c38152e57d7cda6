package gamesync

import (
	"strings"

	"chessink/internal/oracle"
)

// MergeHistories reconciles two independently observed move histories for
// the same game: the locally cached one and the incoming one from the live
// stream. Both carry their own initial position. It returns the initial
// position and space-separated move list to keep.
//
// The common case is the stream re-sending moves the cache already has, so
// the longest suffix of the existing list equal to a prefix of the incoming
// list merges the two. When no overlap exists, both lists are replayed
// through the rules engine; identical final positions mean the shorter list
// is a retransmission and the longer wins. Anything else adopts the
// incoming history wholesale — the stream is the authoritative source, and
// the cached history is discarded (lossy by design of the fallback).
func MergeHistories(existingInitial, existingMoves, incomingInitial, incomingMoves string) (string, string) {
	existing := strings.Fields(existingMoves)
	incoming := strings.Fields(incomingMoves)

	if len(incoming) == 0 {
		return existingInitial, existingMoves
	}
	if len(existing) == 0 {
		return incomingInitial, incomingMoves
	}

	max := len(existing)
	if len(incoming) < max {
		max = len(incoming)
	}
	for overlap := max; overlap >= 1; overlap-- {
		if equal(existing[len(existing)-overlap:], incoming[:overlap]) {
			merged := append(append([]string{}, existing...), incoming[overlap:]...)
			return existingInitial, strings.Join(merged, " ")
		}
	}

	// No textual overlap. Replay both histories; a replay failure on either
	// side abandons the comparison and adopts the incoming history.
	incomingFEN, err := oracle.Replay(incomingInitial, incoming)
	if err != nil {
		return incomingInitial, incomingMoves
	}
	existingFEN, err := oracle.Replay(existingInitial, existing)
	if err != nil {
		return incomingInitial, incomingMoves
	}
	if incomingFEN == existingFEN {
		if len(existing) >= len(incoming) {
			return existingInitial, existingMoves
		}
		return incomingInitial, incomingMoves
	}

	return incomingInitial, incomingMoves
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
