package service

import "errors"

var (
	// ErrRateLimited means the send arrived inside the minimum interval
	// since the previous send on the same document.
	ErrRateLimited = errors.New("sending too fast, wait a moment before retrying")

	// ErrNoTurnInFlight means a cancel arrived with nothing streaming.
	ErrNoTurnInFlight = errors.New("no turn in flight for this document")

	// ErrEmptyStream means the assistant closed the stream without
	// producing any text.
	ErrEmptyStream = errors.New("assistant stream produced no content")
)
