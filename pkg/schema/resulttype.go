package schema

import (
	"encoding/json"
	"fmt"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// ResultType is the reason a model stopped generating
type ResultType uint

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ResultStop      ResultType = iota // Normal completion
	ResultMaxTokens                   // Truncated due to max tokens
	ResultToolCall                    // Model requested one or more tool calls
	ResultError                       // Generation error
)

// ResultOK is an alias for ResultStop
const ResultOK = ResultStop

var resultNames = map[ResultType]string{
	ResultStop:      "stop",
	ResultMaxTokens: "max_tokens",
	ResultToolCall:  "tool_call",
	ResultError:     "error",
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r ResultType) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "unknown"
}

////////////////////////////////////////////////////////////////////////////////
// JSON MARSHAL

func (r ResultType) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *ResultType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for k, v := range resultNames {
		if v == s {
			*r = k
			return nil
		}
	}
	return fmt.Errorf("unknown result type: %q", s)
}
