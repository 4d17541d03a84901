package envelope

import "errors"

var (
	ErrInvalidRoom                = errors.New("invalid room geometry")
	ErrWindowPercentageOutOfRange = errors.New("window percentage must be within [0, 100]")
	ErrComputation                = errors.New("heat loss computation failed")
	ErrInvalidParam               = errors.New("invalid parameter")
	ErrInvalidOffsetMode          = errors.New("invalid vertical offset mode")
	ErrInvalidSeason              = errors.New("invalid season")
	ErrUnknownPreset              = errors.New("unknown preset")
)
