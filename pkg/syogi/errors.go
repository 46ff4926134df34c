package syogi

import "errors"

var (
	ErrIllegalMove     = errors.New("illegal move")
	ErrNoSelection     = errors.New("no piece selected")
	ErrNotPromotable   = errors.New("move cannot promote")
	ErrNoMove          = errors.New("no move played")
	ErrInvalidHandicap = errors.New("invalid handicap")
	ErrInvalidSFEN     = errors.New("invalid sfen")
	ErrInvalidKIF      = errors.New("invalid kif")
	ErrGameNotFound    = errors.New("game not found")
)
