// Package render produces the HTML frames shown on the device. Pixel
// rasterization for the e-ink panel is owned by the display service; this
// package only lays the screens out.
package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/pkg/errors"

	"chessink/internal/input"
)

// Renderer renders logical screens to frame bytes.
type Renderer struct {
	setup    *template.Template
	newMatch *template.Template
	play     *template.Template
}

// New parses the screen templates.
func New() (*Renderer, error) {
	setup, err := template.New("setup").Parse(setupHTML)
	if err != nil {
		return nil, errors.Wrap(err, "parse setup template")
	}
	newMatch, err := template.New("new_match").Parse(newMatchHTML)
	if err != nil {
		return nil, errors.Wrap(err, "parse new-match template")
	}
	play, err := template.New("play").Parse(playHTML)
	if err != nil {
		return nil, errors.Wrap(err, "parse play template")
	}
	return &Renderer{setup: setup, newMatch: newMatch, play: play}, nil
}

// SetupData feeds the setup screen.
type SetupData struct {
	ConfigURL string
}

// NewMatchData feeds the new-match screen.
type NewMatchData struct {
	AdversaryName string
	Color         string
	Message       string
	Hints         []HintRow
}

// PlayData feeds the play screen.
type PlayData struct {
	Opponent  string
	MyTurn    bool
	LastMove  string
	Board     [8][8]string
	StepLabel string
	Message   string
	Hints     []HintRow
}

// HintRow is one button hint line for the side panel.
type HintRow struct {
	Button  string
	Label   string
	Enabled bool
}

// Setup renders the initial configuration screen.
func (r *Renderer) Setup(data SetupData) ([]byte, error) {
	return execute(r.setup, data)
}

// NewMatch renders the challenge-creation screen.
func (r *Renderer) NewMatch(data NewMatchData) ([]byte, error) {
	return execute(r.newMatch, data)
}

// Play renders the active-game screen.
func (r *Renderer) Play(data PlayData) ([]byte, error) {
	return execute(r.play, data)
}

func execute(t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, "render frame")
	}
	return buf.Bytes(), nil
}

// HintRows flattens a hint map into display order.
func HintRows(hints map[input.Button]input.Hint) []HintRow {
	order := []input.Button{
		input.Btn1, input.Btn2, input.Btn3, input.Btn4,
		input.Btn5, input.Btn6, input.Btn7, input.Btn8,
		input.Enter, input.Esc, input.HLLeft, input.HLRight,
	}
	var rows []HintRow
	for _, b := range order {
		if h, ok := hints[b]; ok {
			rows = append(rows, HintRow{Button: string(b), Label: h.Label, Enabled: h.Enabled})
		}
	}
	return rows
}

var pieceGlyphs = map[byte]string{
	'K': "♔", 'Q': "♕", 'R': "♖", 'B': "♗", 'N': "♘", 'P': "♙",
	'k': "♚", 'q': "♛", 'r': "♜", 'b': "♝", 'n': "♞", 'p': "♟",
}

// BoardFromFEN expands the placement field of a FEN into an 8x8 glyph grid,
// rank 8 first. Unparseable input yields an empty board.
func BoardFromFEN(fen string) [8][8]string {
	var board [8][8]string
	placement := strings.SplitN(fen, " ", 2)[0]
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return board
	}
	for r, rank := range ranks {
		file := 0
		for i := 0; i < len(rank) && file < 8; i++ {
			c := rank[i]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			if glyph, ok := pieceGlyphs[c]; ok {
				board[r][file] = glyph
			}
			file++
		}
	}
	return board
}

const setupHTML = `<!doctype html>
<html><body class="screen setup">
<h1>chessink</h1>
<p>Scan to configure your Lichess account:</p>
<p class="config-url">{{.ConfigURL}}</p>
</body></html>
`

const newMatchHTML = `<!doctype html>
<html><body class="screen new-match">
<h1>New match</h1>
<p>Opponent: <strong>{{if .AdversaryName}}{{.AdversaryName}}{{else}}none{{end}}</strong></p>
<p>Color: <strong>{{.Color}}</strong></p>
{{if .Message}}<p class="message">{{.Message}}</p>{{end}}
<ul class="hints">
{{range .Hints}}<li class="{{if not .Enabled}}disabled{{end}}">{{.Button}}: {{.Label}}</li>
{{end}}</ul>
</body></html>
`

const playHTML = `<!doctype html>
<html><body class="screen play">
<h1>vs {{.Opponent}}</h1>
<p>{{if .MyTurn}}Your move{{else}}Waiting for opponent{{end}}{{if .LastMove}} (last {{.LastMove}}){{end}}</p>
<table class="board">
{{range .Board}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
{{if .StepLabel}}<p class="step">{{.StepLabel}}</p>{{end}}
{{if .Message}}<p class="message">{{.Message}}</p>{{end}}
<ul class="hints">
{{range .Hints}}<li class="{{if not .Enabled}}disabled{{end}}">{{.Button}}: {{.Label}}</li>
{{end}}</ul>
</body></html>
`
