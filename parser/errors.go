package parser

import "errors"

var (
	ErrMalformedParameter = errors.New("malformed parameter")
	ErrUnknownAttribute   = errors.New("unknown attribute")
	ErrDuplicateEntry     = errors.New("duplicate entry name")
	ErrUnknownAlias       = errors.New("unknown alias")
	ErrSlotConflict       = errors.New("slot conflict")
	ErrInvalidSlotLayout  = errors.New("invalid slot layout")
)
