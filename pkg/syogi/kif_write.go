package syogi

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

type KIFOptions struct {
	SenteName string
	GoteName  string
	StartTime time.Time
	// ShiftJIS encodes the output for older kifu software.
	ShiftJIS bool
}

var fullWidthDigits = []string{"０", "１", "２", "３", "４", "５", "６", "７", "８", "９"}

var kifMoveNames = map[PieceKind]string{
	Ou: "玉", Gyoku: "玉",
	Hisya: "飛", Kaku: "角", Kin: "金", Gin: "銀", Kei: "桂", Kyo: "香", Fu: "歩",
	Ryu: "龍", Uma: "馬", NariGin: "成銀", NariKei: "成桂", NariKyo: "成香", To: "と",
}

func squareToKIF(sq Square) string {
	return fullWidthDigits[sq.X+1] + string(kanjiDigits[sq.Y])
}

// countKanji renders a hand count the KIF way: nothing for one, kanji above.
func countKanji(n int) string {
	switch {
	case n <= 1:
		return ""
	case n < 10:
		return string(kanjiDigits[n-1])
	case n == 10:
		return "十"
	case n < 20:
		return "十" + string(kanjiDigits[n-11])
	default:
		return fmt.Sprintf("%d", n)
	}
}

// kifMoveText renders l as "７六歩(77)", "同　歩(23)", "５五角打" or
// "２二角成(88)".
func kifMoveText(l GameLog, prevTo *Square) string {
	var b strings.Builder
	if prevTo != nil && *prevTo == l.To {
		b.WriteString("同　")
	} else {
		b.WriteString(squareToKIF(l.To))
	}
	b.WriteString(kifMoveNames[l.Piece])
	if l.From.IsHand() {
		b.WriteString("打")
		return b.String()
	}
	switch {
	case l.Promote:
		b.WriteString("成")
	case l.promotable():
		b.WriteString("不成")
	}
	fmt.Fprintf(&b, "(%d%d)", l.From.Square.X+1, l.From.Square.Y+1)
	return b.String()
}

func handToKIF(b *Board, side Side) string {
	var parts []string
	for _, kind := range HandKinds {
		if n := b.Hand(side, kind); n > 0 {
			parts = append(parts, kifMoveNames[kind]+countKanji(n))
		}
	}
	if len(parts) == 0 {
		return "なし"
	}
	return strings.Join(parts, "　") + "　"
}

// boardDiagram renders b as a KIF board diagram with both hands.
func boardDiagram(b *Board) []string {
	lines := []string{
		"後手の持駒：" + handToKIF(b, White),
		"  ９ ８ ７ ６ ５ ４ ３ ２ １",
		"+---------------------------+",
	}
	for y := 0; y < boardSize; y++ {
		var row strings.Builder
		row.WriteString("|")
		for x := boardSize - 1; x >= 0; x-- {
			c := b.cells[x][y]
			switch {
			case c.Empty():
				row.WriteString(" ・")
			case c.Owner == White:
				row.WriteString("v" + c.Piece.String())
			default:
				row.WriteString(" " + c.Piece.String())
			}
		}
		row.WriteString("|" + string(kanjiDigits[y]))
		lines = append(lines, row.String())
	}
	lines = append(lines, "+---------------------------+", "先手の持駒："+handToKIF(b, Black))
	return lines
}

// KIFLines renders the applied moves of the game as KIF.
func (e *Engine) KIFLines(opts KIFOptions) []string {
	out := []string{"# KIF形式棋譜ファイル"}
	if !opts.StartTime.IsZero() {
		out = append(out, "開始日時："+opts.StartTime.Format("2006/01/02 15:04:05"))
	}
	switch {
	case e.handicap != Hirate && e.startTurn == White:
		out = append(out, "手合割："+e.handicap.KIFName())
	case e.handicap == Hirate && e.start.Equal(NewBoard()) && e.startTurn == Black:
		out = append(out, "手合割："+Hirate.KIFName())
	default:
		out = append(out, boardDiagram(e.start)...)
		if e.startTurn == White {
			out = append(out, "後手番")
		}
	}
	out = append(out, "先手："+opts.SenteName, "後手："+opts.GoteName)
	out = append(out, "手数----指手---------消費時間--")

	var prevTo *Square
	for i, l := range e.Moves() {
		out = append(out, fmt.Sprintf("%4d %s (00:00/00:00:00)", i+1, kifMoveText(l, prevTo)))
		to := l.To
		prevTo = &to
	}
	if outcome, reason := e.Result(false); outcome != InProgress {
		n := e.Ply()
		out = append(out, fmt.Sprintf("%4d %s", n+1, reason))
		out = append(out, fmt.Sprintf("まで%d手で%s", n, reason))
	}
	return out
}

// WriteKIF writes the game as KIF to w.
func (e *Engine) WriteKIF(w io.Writer, opts KIFOptions) error {
	if opts.ShiftJIS {
		tw := transform.NewWriter(w, japanese.ShiftJIS.NewEncoder())
		if err := writeLines(tw, e.KIFLines(opts)); err != nil {
			return err
		}
		return tw.Close()
	}
	return writeLines(w, e.KIFLines(opts))
}

func writeLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line + "\r\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
