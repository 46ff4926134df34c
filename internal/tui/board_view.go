package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"syogi/pkg/syogi"
)

var (
	hintStyle  = lipgloss.NewStyle().Reverse(true)
	whiteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	lastStyle  = lipgloss.NewStyle().Underline(true)
)

// RenderBoard draws the position with file 9 on the left, as in a kifu
// diagram. Hinted squares are reversed and the last destination underlined.
func RenderBoard(e *syogi.Engine) string {
	var last *syogi.Square
	if moves := e.Moves(); len(moves) > 0 {
		to := moves[len(moves)-1].To
		last = &to
	}

	var b strings.Builder
	b.WriteString(handLine("☖", e.HandOf(syogi.White)) + "\n")
	b.WriteString("   ９ ８ ７ ６ ５ ４ ３ ２ １\n")
	b.WriteString("  +---------------------------+\n")
	for y := 0; y < 9; y++ {
		b.WriteString("  |")
		for x := 8; x >= 0; x-- {
			isLast := last != nil && *last == (syogi.Square{X: x, Y: y})
			b.WriteString(cell(e.CellAt(x, y), isLast))
		}
		fmt.Fprintf(&b, "|%d\n", y+1)
	}
	b.WriteString("  +---------------------------+\n")
	b.WriteString(handLine("☗", e.HandOf(syogi.Black)) + "\n")
	return b.String()
}

// cell returns a three-column cell: a side marker and the piece glyph.
func cell(c syogi.Cell, isLast bool) string {
	var s string
	switch {
	case c.Empty():
		s = " ・"
	case c.Owner == syogi.White:
		s = whiteStyle.Render("v" + c.Piece.String())
	default:
		s = " " + c.Piece.String()
	}
	if isLast {
		s = lastStyle.Render(s)
	}
	if c.Hint {
		s = hintStyle.Render(s)
	}
	return s
}

func handLine(mark string, hand []syogi.HandEntry) string {
	var parts []string
	for _, h := range hand {
		if h.Count == 0 {
			continue
		}
		if h.Count == 1 {
			parts = append(parts, h.Kind.String())
			continue
		}
		parts = append(parts, fmt.Sprintf("%s%d", h.Kind.String(), h.Count))
	}
	if len(parts) == 0 {
		return mark + " なし"
	}
	return mark + " " + strings.Join(parts, " ")
}
