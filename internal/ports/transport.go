package ports

import (
	"context"
	"errors"

	"github.com/dorian305/rtls-client/internal/domain"
)

// ErrConnClosed is returned by Conn.ReadMessage once the peer closed the
// connection cleanly.
var ErrConnClosed = errors.New("connection closed")

type Dialer interface {
	Dial(ctx context.Context, endpoint domain.Endpoint) (Conn, error)
}

// Conn is a message-oriented duplex transport. ReadMessage is called from a
// single reader goroutine and WriteMessage from a single writer goroutine.
// Close must be safe to call more than once and unblocks a pending read.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}
