package contract

import "errors"

var (
	ErrThreadNotFound   = errors.New("thread not found")
	ErrTurnNotFound     = errors.New("turn not found")
	ErrDocumentNotFound = errors.New("document not found")
)
