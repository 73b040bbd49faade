package opt

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Opt sets a per-call option. Options are applied to a fresh set on every
// call, so no call observes another call's configuration.
type Opt func(*opts) error

// set of options
type opts struct {
	url.Values
	values map[string]any
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	SystemPromptKey = "system"
	TemperatureKey  = "temperature"
	MaxTokensKey    = "max_tokens"
	FormatKey       = "format"
	LimitKey        = "limit"
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Apply returns a structure of applied options
func Apply(o ...Opt) (*opts, error) {
	opts := &opts{Values: make(url.Values), values: make(map[string]any)}
	for _, opt := range o {
		if opt == nil {
			continue
		}
		if err := opt(opts); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Query returns the string values for the given keys, suitable for a URL
// query string. Keys holding arbitrary values are not included.
func (o *opts) Query(keys ...string) url.Values {
	query := make(url.Values)
	for _, key := range keys {
		if value, ok := o.Values[key]; ok {
			query[key] = value
		}
	}
	return query
}

// GetString returns the trimmed value for key, or empty string if not set
func (o *opts) GetString(key string) string {
	if values, ok := o.Values[key]; ok && len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

// GetStringArray returns all values for key, each trimmed
func (o *opts) GetStringArray(key string) []string {
	values, ok := o.Values[key]
	if !ok {
		return nil
	}
	result := make([]string, len(values))
	for i, v := range values {
		result[i] = strings.TrimSpace(v)
	}
	return result
}

// GetBool returns true if key is present, false if absent
func (o *opts) GetBool(key string) bool {
	_, ok := o.Values[key]
	return ok
}

// GetFloat64 returns the float64 value for key, or 0 if not set or invalid
func (o *opts) GetFloat64(key string) float64 {
	if values, ok := o.Values[key]; ok && len(values) > 0 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(values[0]), 64); err == nil {
			return v
		}
	}
	return 0
}

// GetUint returns the uint value for key, or 0 if not set or invalid
func (o *opts) GetUint(key string) uint {
	if values, ok := o.Values[key]; ok && len(values) > 0 {
		if v, err := strconv.ParseUint(strings.TrimSpace(values[0]), 10, 64); err == nil {
			return uint(v)
		}
	}
	return 0
}

// Has returns true if the key exists
func (o *opts) Has(key string) bool {
	if _, ok := o.Values[key]; ok {
		return true
	}
	_, ok := o.values[key]
	return ok
}

// Get returns an arbitrary value set with Set, or nil
func (o *opts) Get(key string) any {
	return o.values[key]
}

// Set stores an arbitrary value for key
func (o *opts) Set(key string, value any) {
	o.values[key] = value
}

////////////////////////////////////////////////////////////////////////////////
// OPTIONS

// Error returns an option that always returns an error
func Error(err error) Opt {
	return func(o *opts) error {
		return err
	}
}

// WithOpts combines multiple options into a single option
func WithOpts(options ...Opt) Opt {
	return func(o *opts) error {
		for _, opt := range options {
			if opt == nil {
				continue
			}
			if err := opt(o); err != nil {
				return err
			}
		}
		return nil
	}
}

func WithString(key string, value ...string) Opt {
	return func(o *opts) error {
		for _, v := range value {
			o.Values.Add(key, v)
		}
		return nil
	}
}

func WithUint(key string, value ...uint) Opt {
	return func(o *opts) error {
		for _, v := range value {
			o.Values.Add(key, fmt.Sprintf("%d", v))
		}
		return nil
	}
}

func WithFloat64(key string, value float64) Opt {
	return func(o *opts) error {
		o.Values.Set(key, strconv.FormatFloat(value, 'f', -1, 64))
		return nil
	}
}

func WithBool(key string, value bool) Opt {
	return func(o *opts) error {
		if value {
			o.Values.Set(key, "true")
		} else {
			o.Values.Del(key)
		}
		return nil
	}
}

func WithAny(key string, value any) Opt {
	return func(o *opts) error {
		o.values[key] = value
		return nil
	}
}

// WithSystemPrompt sets the system prompt for a single generation
func WithSystemPrompt(value string) Opt {
	return func(o *opts) error {
		if value = strings.TrimSpace(value); value != "" {
			o.Values.Set(SystemPromptKey, value)
		}
		return nil
	}
}

// WithTemperature sets the sampling temperature, which must be between
// zero and two
func WithTemperature(value float64) Opt {
	return func(o *opts) error {
		if value < 0 || value > 2 {
			return fmt.Errorf("temperature out of range: %v", value)
		}
		return WithFloat64(TemperatureKey, value)(o)
	}
}

// WithMaxTokens limits the number of generated tokens
func WithMaxTokens(value uint) Opt {
	return func(o *opts) error {
		if value > 0 {
			o.Values.Set(MaxTokensKey, strconv.FormatUint(uint64(value), 10))
		}
		return nil
	}
}

// WithLimit limits the number of items returned by a list operation
func WithLimit(value uint) Opt {
	return func(o *opts) error {
		o.Values.Set(LimitKey, strconv.FormatUint(uint64(value), 10))
		return nil
	}
}
