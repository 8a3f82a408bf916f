package model

import "errors"

var (
	ErrInvalidDateRange = errors.New("date range start is after end")
	ErrUnknownDomain    = errors.New("unknown record domain")
)
