package tool

import (
	"encoding/json"

	// Packages
	agentface "github.com/atagle123/AgentFace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Status of a tool result
type Status string

// Result is the structured outcome of a tool call. A failure carries a
// machine-readable kind (for example "invalid-input" or
// "render-engine-missing") as well as a human-readable message.
type Result struct {
	Status  Status `json:"status"`
	Kind    string `json:"error_kind,omitempty"`
	Message string `json:"message,omitempty"`
	Value   any    `json:"value,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewResult returns a success result for value when err is nil, or a
// failure result with the kind of err otherwise
func NewResult(value any, err error) Result {
	if err != nil {
		return Result{
			Status:  StatusError,
			Kind:    agentface.KindOf(err),
			Message: err.Error(),
		}
	}
	return Result{
		Status: StatusOK,
		Value:  value,
	}
}

// DecodeResult decodes a result from JSON. Data which is not a structured
// result is returned as a successful result with the raw value.
func DecodeResult(data []byte) Result {
	var r Result
	if err := json.Unmarshal(data, &r); err == nil && (r.Status == StatusOK || r.Status == StatusError) {
		return r
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		v = string(data)
	}
	return Result{Status: StatusOK, Value: v}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// OK returns true for a successful result
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Err returns nil for a successful result, or an error wrapping the code
// which corresponds to the result kind
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	code := agentface.ErrFromKind(r.Kind)
	if r.Message == "" {
		return code
	}
	return &resultError{code: code, message: r.Message}
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r Result) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE

// resultError keeps the original message of a failure received over the
// wire while matching the code with errors.Is
type resultError struct {
	code    agentface.Err
	message string
}

func (e *resultError) Error() string {
	return e.message
}

func (e *resultError) Unwrap() error {
	return e.code
}
