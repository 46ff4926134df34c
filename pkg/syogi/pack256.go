package syogi

import "fmt"

// Packed256 is a Huffman-coded position: side to move, both king squares,
// every other square and both hands in exactly 256 bits. Only positions with
// the full 40-piece set fit.
type Packed256 struct {
	Words [4]uint64
}

func (p Packed256) String() string {
	return fmt.Sprintf("%016x%016x%016x%016x", p.Words[0], p.Words[1], p.Words[2], p.Words[3])
}

type bitWriter256 struct {
	words [4]uint64
	pos   int
}

type bitReader256 struct {
	words [4]uint64
	pos   int
}

type codeSpec struct {
	kind    PieceKind
	bits    uint64
	bitLen  int
	isEmpty bool
}

type codeBook struct {
	byLen  map[int]map[uint64]codeSpec
	byKind map[PieceKind]codeSpec
	maxLen int
}

var boardCodes = []codeSpec{
	{kind: None, bits: 0b0, bitLen: 1, isEmpty: true},
	{kind: Fu, bits: 0b01, bitLen: 2},
	{kind: Kyo, bits: 0b0011, bitLen: 4},
	{kind: Kei, bits: 0b1011, bitLen: 4},
	{kind: Gin, bits: 0b0111, bitLen: 4},
	{kind: Kin, bits: 0b01111, bitLen: 5},
	{kind: Kaku, bits: 0b011111, bitLen: 6},
	{kind: Hisya, bits: 0b111111, bitLen: 6},
}

var handCodes = []codeSpec{
	{kind: Fu, bits: 0b0, bitLen: 1},
	{kind: Kyo, bits: 0b001, bitLen: 3},
	{kind: Kei, bits: 0b101, bitLen: 3},
	{kind: Gin, bits: 0b011, bitLen: 3},
	{kind: Kin, bits: 0b0111, bitLen: 4},
	{kind: Kaku, bits: 0b01111, bitLen: 5},
	{kind: Hisya, bits: 0b11111, bitLen: 5},
}

var handPackOrder = []PieceKind{Fu, Kyo, Kei, Gin, Kin, Kaku, Hisya}

var boardCodeBook = buildCodeBook(boardCodes)
var handCodeBook = buildCodeBook(handCodes)

// squareIndex numbers squares rank by rank, file 1 first.
func squareIndex(sq Square) int {
	return sq.Y*boardSize + sq.X
}

func indexSquare(idx int) Square {
	return Square{X: idx % boardSize, Y: idx / boardSize}
}

// PackBoard256 packs b with turn to move.
func PackBoard256(b *Board, turn Side) (Packed256, error) {
	writer := &bitWriter256{}

	if err := writer.writeSide(turn); err != nil {
		return Packed256{}, err
	}

	blackKing, whiteKing, err := kingIndices(b)
	if err != nil {
		return Packed256{}, err
	}
	if err := writer.writeBits(uint64(blackKing), 7); err != nil {
		return Packed256{}, err
	}
	if err := writer.writeBits(uint64(whiteKing), 7); err != nil {
		return Packed256{}, err
	}

	for idx := 0; idx < boardSize*boardSize; idx++ {
		if idx == blackKing || idx == whiteKing {
			continue
		}
		c := b.cell(indexSquare(idx))
		if c.Empty() {
			if err := writer.writeCode(boardCodeBook, None); err != nil {
				return Packed256{}, err
			}
			continue
		}
		if c.Piece.IsKing() {
			return Packed256{}, fmt.Errorf("unexpected king at square %d", idx)
		}
		base := c.Piece.Base()
		if err := writer.writeCode(boardCodeBook, base); err != nil {
			return Packed256{}, err
		}
		if err := writer.writeSide(c.Owner); err != nil {
			return Packed256{}, err
		}
		if base.CanPromote() {
			promoBit := uint64(0)
			if c.Piece.IsPromoted() {
				promoBit = 1
			}
			if err := writer.writeBit(promoBit); err != nil {
				return Packed256{}, err
			}
		}
	}

	for _, side := range []Side{Black, White} {
		for _, kind := range handPackOrder {
			for i := 0; i < b.hands[side][kind]; i++ {
				if err := writer.writeCode(handCodeBook, kind); err != nil {
					return Packed256{}, err
				}
				if err := writer.writeSide(side); err != nil {
					return Packed256{}, err
				}
				if kind.CanPromote() {
					if err := writer.writeBit(0); err != nil {
						return Packed256{}, err
					}
				}
			}
		}
	}

	if writer.pos != 256 {
		return Packed256{}, fmt.Errorf("packed length is %d bits, expected 256", writer.pos)
	}
	return Packed256{Words: writer.words}, nil
}

// UnpackBoard256 reverses PackBoard256.
func UnpackBoard256(p Packed256) (*Board, Side, error) {
	reader := &bitReader256{words: p.Words}

	turn, err := reader.readSide()
	if err != nil {
		return nil, NoSide, err
	}
	blackKing, err := reader.readBits(7)
	if err != nil {
		return nil, NoSide, err
	}
	whiteKing, err := reader.readBits(7)
	if err != nil {
		return nil, NoSide, err
	}
	if blackKing == whiteKing {
		return nil, NoSide, fmt.Errorf("kings share square %d", blackKing)
	}
	if blackKing >= 81 || whiteKing >= 81 {
		return nil, NoSide, fmt.Errorf("king square out of range")
	}

	b := &Board{}
	b.put(indexSquare(int(blackKing)), Gyoku, Black)
	b.put(indexSquare(int(whiteKing)), Ou, White)

	for idx := 0; idx < boardSize*boardSize; idx++ {
		if idx == int(blackKing) || idx == int(whiteKing) {
			continue
		}
		code, err := reader.readCode(boardCodeBook)
		if err != nil {
			return nil, NoSide, err
		}
		if code.isEmpty {
			continue
		}
		side, err := reader.readSide()
		if err != nil {
			return nil, NoSide, err
		}
		kind := code.kind
		if kind.CanPromote() {
			promoBit, err := reader.readBit()
			if err != nil {
				return nil, NoSide, err
			}
			if promoBit == 1 {
				kind = kind.Promoted()
			}
		}
		b.put(indexSquare(idx), kind, side)
	}

	for reader.pos < 256 {
		code, err := reader.readCode(handCodeBook)
		if err != nil {
			return nil, NoSide, err
		}
		side, err := reader.readSide()
		if err != nil {
			return nil, NoSide, err
		}
		if code.kind.CanPromote() {
			promoBit, err := reader.readBit()
			if err != nil {
				return nil, NoSide, err
			}
			if promoBit != 0 {
				return nil, NoSide, fmt.Errorf("promoted piece in hand: %s", code.kind)
			}
		}
		b.hands[side][code.kind]++
	}
	return b, turn, nil
}

// Fingerprint is the repetition key of b with turn to move: the packed form
// when the full piece set is on the board or in hand, the SFEN fields
// otherwise. Both cover the board, the side to move and the hands.
func Fingerprint(b *Board, turn Side) string {
	if packed, err := PackBoard256(b, turn); err == nil {
		return packed.String()
	}
	return b.sfenBoard() + " " + sfenTurn(turn) + " " + b.sfenHands()
}

func buildCodeBook(codes []codeSpec) codeBook {
	book := codeBook{
		byLen:  map[int]map[uint64]codeSpec{},
		byKind: map[PieceKind]codeSpec{},
	}
	for _, code := range codes {
		if book.byLen[code.bitLen] == nil {
			book.byLen[code.bitLen] = map[uint64]codeSpec{}
		}
		book.byLen[code.bitLen][code.bits] = code
		book.byKind[code.kind] = code
		if code.bitLen > book.maxLen {
			book.maxLen = code.bitLen
		}
	}
	return book
}

func (w *bitWriter256) writeBit(bit uint64) error {
	if w.pos >= 256 {
		return fmt.Errorf("bitstream overflow")
	}
	if bit != 0 {
		w.words[w.pos/64] |= 1 << uint(w.pos%64)
	}
	w.pos++
	return nil
}

func (w *bitWriter256) writeBits(value uint64, bitLen int) error {
	for i := 0; i < bitLen; i++ {
		if err := w.writeBit((value >> i) & 1); err != nil {
			return err
		}
	}
	return nil
}

func (w *bitWriter256) writeCode(book codeBook, kind PieceKind) error {
	code, ok := book.byKind[kind]
	if !ok {
		return fmt.Errorf("unknown piece code: %s", kind)
	}
	return w.writeBits(code.bits, code.bitLen)
}

func (w *bitWriter256) writeSide(side Side) error {
	bit := uint64(0)
	if side == White {
		bit = 1
	}
	return w.writeBit(bit)
}

func (r *bitReader256) readBit() (uint64, error) {
	if r.pos >= 256 {
		return 0, fmt.Errorf("bitstream underflow")
	}
	bit := (r.words[r.pos/64] >> uint(r.pos%64)) & 1
	r.pos++
	return bit, nil
}

func (r *bitReader256) readBits(bitLen int) (uint64, error) {
	var value uint64
	for i := 0; i < bitLen; i++ {
		bit, err := r.readBit()
		if err != nil {
			return 0, err
		}
		value |= bit << i
	}
	return value, nil
}

func (r *bitReader256) readCode(book codeBook) (codeSpec, error) {
	var value uint64
	for length := 1; length <= book.maxLen; length++ {
		bit, err := r.readBit()
		if err != nil {
			return codeSpec{}, err
		}
		value |= bit << (length - 1)
		if entry, ok := book.byLen[length][value]; ok {
			return entry, nil
		}
	}
	return codeSpec{}, fmt.Errorf("invalid code")
}

func (r *bitReader256) readSide() (Side, error) {
	bit, err := r.readBit()
	if err != nil {
		return NoSide, err
	}
	if bit == 1 {
		return White, nil
	}
	return Black, nil
}

func kingIndices(b *Board) (int, int, error) {
	black, white := -1, -1
	for x := range b.cells {
		for y := range b.cells[x] {
			c := b.cells[x][y]
			if !c.Piece.IsKing() {
				continue
			}
			idx := squareIndex(Square{x, y})
			switch c.Owner {
			case Black:
				if black != -1 {
					return 0, 0, fmt.Errorf("multiple black kings")
				}
				black = idx
			case White:
				if white != -1 {
					return 0, 0, fmt.Errorf("multiple white kings")
				}
				white = idx
			}
		}
	}
	if black == -1 || white == -1 {
		return 0, 0, fmt.Errorf("missing king")
	}
	return black, white, nil
}
