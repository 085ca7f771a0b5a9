package types

import (
	"io"
)

type Stream interface {
	io.Closer
}

type PlayStream interface {
	Stream

	// Drain blocks until everything written to the stream is played.
	Drain() error
}
