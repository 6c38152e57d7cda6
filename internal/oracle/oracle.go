// Package oracle wraps the chess rules engine behind the small surface the
// rest of the service needs: legal-move queries keyed by piece selection and
// replay of UCI move lists from an initial position.
package oracle

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// Piece tokens as selected on the device. Castles are treated as pseudo
// piece selections that resolve directly to a move.
const (
	KingsideCastle  = "O-O"
	QueensideCastle = "O-O-O"
)

// Position is a board position with legal-move queries.
type Position struct {
	game *chess.Game
}

// FromFEN builds a position from a FEN string. An empty string means the
// standard starting position.
func FromFEN(fen string) (*Position, error) {
	if strings.TrimSpace(fen) == "" || fen == "startpos" {
		return &Position{game: chess.NewGame()}, nil
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, errors.Wrapf(err, "parse fen %q", fen)
	}
	return &Position{game: chess.NewGame(opt)}, nil
}

// FEN returns the position encoded as FEN.
func (p *Position) FEN() string {
	return p.game.Position().String()
}

// WhiteToMove reports whose turn it is.
func (p *Position) WhiteToMove() bool {
	return p.game.Position().Turn() == chess.White
}

func pieceTypeFor(token string) (chess.PieceType, bool) {
	switch token {
	case "P":
		return chess.Pawn, true
	case "N":
		return chess.Knight, true
	case "B":
		return chess.Bishop, true
	case "R":
		return chess.Rook, true
	case "Q":
		return chess.Queen, true
	case "K":
		return chess.King, true
	}
	return 0, false
}

func (p *Position) uci(m *chess.Move) string {
	return chess.UCINotation{}.Encode(p.game.Position(), m)
}

func (p *Position) pieceMoves(pt chess.PieceType) []*chess.Move {
	board := p.game.Position().Board()
	var out []*chess.Move
	for _, m := range p.game.ValidMoves() {
		if board.Piece(m.S1()).Type() == pt {
			out = append(out, m)
		}
	}
	return out
}

// HasMoves reports whether the piece token has at least one legal move.
// Castle tokens report whether that castle is currently legal.
func (p *Position) HasMoves(token string) bool {
	if token == KingsideCastle || token == QueensideCastle {
		_, ok := p.CastleMove(token)
		return ok
	}
	pt, ok := pieceTypeFor(token)
	if !ok {
		return false
	}
	return len(p.pieceMoves(pt)) > 0
}

// CastleMove returns the castle move for the token in UCI, if legal.
func (p *Position) CastleMove(token string) (string, bool) {
	var tag chess.MoveTag
	switch token {
	case KingsideCastle:
		tag = chess.KingSideCastle
	case QueensideCastle:
		tag = chess.QueenSideCastle
	default:
		return "", false
	}
	for _, m := range p.game.ValidMoves() {
		if m.HasTag(tag) {
			return p.uci(m), true
		}
	}
	return "", false
}

// Candidates returns the legal moves (in UCI) for a piece token and a
// destination square given as file 'a'..'h' and rank 1..8. Pawn selections
// additionally match moves originating on the selected file, so captures can
// be specified by the pawn's own file the way players name them.
func (p *Position) Candidates(token string, file byte, rank int) []string {
	pt, ok := pieceTypeFor(token)
	if !ok {
		return nil
	}
	target := fmt.Sprintf("%c%d", file, rank)
	moves := p.pieceMoves(pt)

	var out []string
	seen := make(map[string]struct{})
	add := func(m *chess.Move) {
		u := p.uci(m)
		if _, dup := seen[u]; !dup {
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}

	for _, m := range moves {
		if m.S2().String() == target {
			add(m)
		}
	}
	if pt == chess.Pawn {
		fromFile := chess.File(int(file - 'a'))
		toRank := chess.Rank(rank - 1)
		for _, m := range moves {
			if m.S1().File() == fromFile && m.S2().Rank() == toRank {
				add(m)
			}
		}
	}
	return out
}

// Files returns the destination files that have at least one legal move for
// the piece token, in board order. Pawns also contribute their origin files.
func (p *Position) Files(token string) []byte {
	pt, ok := pieceTypeFor(token)
	if !ok {
		return nil
	}
	moves := p.pieceMoves(pt)
	present := make(map[chess.File]struct{})
	for _, m := range moves {
		present[m.S2().File()] = struct{}{}
		if pt == chess.Pawn {
			present[m.S1().File()] = struct{}{}
		}
	}
	var out []byte
	for f := chess.FileA; f <= chess.FileH; f++ {
		if _, ok := present[f]; ok {
			out = append(out, byte('a'+int(f)))
		}
	}
	return out
}

// Ranks returns the destination ranks reachable for the piece token on the
// selected file, in board order.
func (p *Position) Ranks(token string, file byte) []int {
	pt, ok := pieceTypeFor(token)
	if !ok {
		return nil
	}
	moves := p.pieceMoves(pt)
	sel := chess.File(int(file - 'a'))
	present := make(map[chess.Rank]struct{})
	for _, m := range moves {
		if m.S2().File() == sel {
			present[m.S2().Rank()] = struct{}{}
		}
		if pt == chess.Pawn && m.S1().File() == sel {
			present[m.S2().Rank()] = struct{}{}
		}
	}
	var out []int
	for r := chess.Rank1; r <= chess.Rank8; r++ {
		if _, ok := present[r]; ok {
			out = append(out, int(r)+1)
		}
	}
	return out
}

// IsLegal reports whether the UCI move is legal in this position.
func (p *Position) IsLegal(uciMove string) bool {
	for _, m := range p.game.ValidMoves() {
		if p.uci(m) == uciMove {
			return true
		}
	}
	return false
}

// Replay applies a UCI move list to an initial position and returns the
// resulting FEN. Any undecodable or illegal move aborts with an error.
func Replay(initialFEN string, moves []string) (string, error) {
	pos, err := FromFEN(initialFEN)
	if err != nil {
		return "", err
	}
	uci := chess.UCINotation{}
	for i, mv := range moves {
		decoded, err := uci.Decode(pos.game.Position(), mv)
		if err != nil {
			return "", errors.Wrapf(err, "decode move %d %q", i+1, mv)
		}
		if err := pos.game.Move(decoded); err != nil {
			return "", errors.Wrapf(err, "apply move %d %q", i+1, mv)
		}
	}
	return pos.FEN(), nil
}
