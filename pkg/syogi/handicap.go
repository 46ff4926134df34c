package syogi

import (
	"fmt"
	"strings"
)

type Handicap int

const (
	Hirate Handicap = iota
	KyoOchi
	KakuOchi
	HisyaOchi
	HiKyoOchi
	NimaiOchi
	YonmaiOchi
	RokumaiOchi
	HachimaiOchi
	JumaiOchi
)

type handicapDef struct {
	id      string
	kifName string
	// squares are given for White; Black's are point-mirrored.
	squares []Square
}

var (
	leftLance   = Square{0, 0}
	rightLance  = Square{8, 0}
	whiteRook   = Square{7, 1}
	whiteBishop = Square{1, 1}
	knights     = []Square{{1, 0}, {7, 0}}
	silvers     = []Square{{2, 0}, {6, 0}}
	golds       = []Square{{3, 0}, {5, 0}}
)

func squares(groups ...[]Square) []Square {
	var out []Square
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var handicapDefs = []handicapDef{
	Hirate:       {id: "hirate", kifName: "平手"},
	KyoOchi:      {id: "kyo", kifName: "香落ち", squares: []Square{leftLance}},
	KakuOchi:     {id: "kaku", kifName: "角落ち", squares: []Square{whiteBishop}},
	HisyaOchi:    {id: "hisya", kifName: "飛車落ち", squares: []Square{whiteRook}},
	HiKyoOchi:    {id: "hikyo", kifName: "飛香落ち", squares: []Square{whiteRook, leftLance}},
	NimaiOchi:    {id: "nimai", kifName: "二枚落ち", squares: []Square{whiteRook, whiteBishop}},
	YonmaiOchi:   {id: "yonmai", kifName: "四枚落ち", squares: squares([]Square{whiteRook, whiteBishop, leftLance, rightLance})},
	RokumaiOchi:  {id: "rokumai", kifName: "六枚落ち", squares: squares([]Square{whiteRook, whiteBishop, leftLance, rightLance}, knights)},
	HachimaiOchi: {id: "hachimai", kifName: "八枚落ち", squares: squares([]Square{whiteRook, whiteBishop, leftLance, rightLance}, knights, silvers)},
	JumaiOchi:    {id: "jumai", kifName: "十枚落ち", squares: squares([]Square{whiteRook, whiteBishop, leftLance, rightLance}, knights, silvers, golds)},
}

func (h Handicap) valid() bool {
	return h >= Hirate && int(h) < len(handicapDefs)
}

func (h Handicap) String() string {
	if !h.valid() {
		return fmt.Sprintf("handicap(%d)", int(h))
	}
	return handicapDefs[h].id
}

// KIFName returns the 手合割 label of h.
func (h Handicap) KIFName() string {
	if !h.valid() {
		return ""
	}
	return handicapDefs[h].kifName
}

// ParseHandicap accepts the short id ("kaku") or the KIF label ("角落ち").
func ParseHandicap(name string) (Handicap, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Hirate, nil
	}
	for i, def := range handicapDefs {
		if strings.EqualFold(name, def.id) || name == def.kifName {
			return Handicap(i), nil
		}
	}
	return Hirate, fmt.Errorf("unknown handicap %q", name)
}

// ParseSide accepts "black"/"sente" and "white"/"gote".
func ParseSide(name string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "white", "gote", "後手", "上手":
		return White, nil
	case "black", "sente", "先手", "下手":
		return Black, nil
	default:
		return NoSide, fmt.Errorf("unknown side %q", name)
	}
}

// applyHandicap removes the pieces h takes away from side.
func (b *Board) applyHandicap(side Side, h Handicap) {
	for _, sq := range handicapDefs[h].squares {
		if side == Black {
			sq = Square{boardSize - 1 - sq.X, boardSize - 1 - sq.Y}
		}
		if b.cell(sq).Owner == side {
			b.put(sq, None, NoSide)
		}
	}
}
