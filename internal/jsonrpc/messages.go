package jsonrpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ProtocolVersion is the supported JSON-RPC protocol version.
const ProtocolVersion = "2.0"

// Request represents a JSON-RPC request. A nil ID is encoded as an absent id.
type Request struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	ID             *RequestID      `json:"id,omitempty"`
	Method         string          `json:"method"`
	Params         json.RawMessage `json:"params,omitempty"`
}

// NewRequest builds a request, marshalling params when non-nil.
func NewRequest(id *RequestID, method string, params any) (*Request, error) {
	req := &Request{JSONRPCVersion: ProtocolVersion, ID: id, Method: method}
	if params == nil {
		return req, nil
	}
	if raw, ok := params.(json.RawMessage); ok {
		req.Params = raw
		return req, nil
	}
	b, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	req.Params = b
	return req, nil
}

// Response represents a JSON-RPC response. The id key is always emitted and
// encodes as null when ID is nil.
type Response struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	ID             *RequestID      `json:"id"`
	Result         json.RawMessage `json:"result,omitempty"`
	Error          *Error          `json:"error,omitempty"`
}

// NewResultResponse builds a successful JSON-RPC response object.
func NewResultResponse(id *RequestID, result any) (*Response, error) {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &Response{
		JSONRPCVersion: ProtocolVersion,
		Result:         resultBytes,
		ID:             id,
	}, nil
}

// NewErrorResponse builds an error JSON-RPC response with the given code.
func NewErrorResponse(id *RequestID, code ErrorCode, message string) *Response {
	return &Response{
		JSONRPCVersion: ProtocolVersion,
		Error: &Error{
			Code:    code,
			Message: message,
		},
		ID: id,
	}
}

// NewParseErrorResponse builds the fixed response sent for an undecodable line.
func NewParseErrorResponse() *Response {
	return NewErrorResponse(nil, ErrorCodeParseError, ParseErrorMessage)
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// ParseRequest decodes one framed line into a Request. The line must hold a
// single JSON object; anything else yields a *ParseError. A non-string method
// is kept in its raw JSON spelling so it can be reported as not found, and an
// id that is neither a number nor a string is treated as null.
func ParseRequest(line []byte) (*Request, error) {
	line = bytes.TrimSpace(line)
	if !json.Valid(line) {
		return nil, &ParseError{Err: errors.New("invalid JSON")}
	}
	if len(line) == 0 || line[0] != '{' {
		return nil, &ParseError{Err: errors.New("message is not a JSON object")}
	}

	var raw struct {
		ID     json.RawMessage `json:"id"`
		Method json.RawMessage `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, &ParseError{Err: err}
	}

	req := &Request{JSONRPCVersion: ProtocolVersion, Params: raw.Params}
	if len(raw.ID) > 0 {
		var id RequestID
		if err := json.Unmarshal(raw.ID, &id); err == nil && !id.IsNil() {
			req.ID = &id
		}
	}
	if len(raw.Method) > 0 {
		var m string
		if err := json.Unmarshal(raw.Method, &m); err == nil {
			req.Method = m
		} else if !bytes.Equal(raw.Method, []byte("null")) {
			req.Method = string(raw.Method)
		}
	}
	if bytes.Equal(req.Params, []byte("null")) {
		req.Params = nil
	}
	return req, nil
}
