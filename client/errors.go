package client

import (
	"errors"
	"fmt"

	"github.com/ggoodman/mcp-stdio-go/internal/jsonrpc"
)

// ErrStreamClosed is returned when the server's output ends before the
// awaited response arrives.
var ErrStreamClosed = errors.New("client: server stream closed before response")

// SpawnError reports that the server process could not be started.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string { return fmt.Sprintf("client: spawn %s: %v", e.Path, e.Err) }

func (e *SpawnError) Unwrap() error { return e.Err }

// RemoteError carries an error response returned by the server.
type RemoteError struct {
	Method  string
	Code    int
	Message string

	// Raw is the error object as received.
	Raw *jsonrpc.Error
}

func newRemoteError(method string, e *jsonrpc.Error) *RemoteError {
	return &RemoteError{Method: method, Code: int(e.Code), Message: e.Message, Raw: e}
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("client: %s failed: %s (code %d)", e.Method, e.Message, e.Code)
}

// IsMethodNotFound reports whether the server did not know the method.
func (e *RemoteError) IsMethodNotFound() bool {
	return e.Code == int(jsonrpc.ErrorCodeMethodNotFound)
}

// NoiseLimitError is returned when more than the configured number of
// unrelated lines were discarded while awaiting a response.
type NoiseLimitError struct {
	ID        int64
	Discarded int
}

func (e *NoiseLimitError) Error() string {
	return fmt.Sprintf("client: gave up awaiting id %d after %d unrelated lines", e.ID, e.Discarded)
}
