package opt_test

import (
	"errors"
	"testing"

	// Packages
	opt "github.com/atagle123/AgentFace/pkg/opt"
	assert "github.com/stretchr/testify/assert"
)

func TestApplyEmpty(t *testing.T) {
	assert := assert.New(t)
	opts, err := opt.Apply()
	assert.NoError(err)
	assert.NotNil(opts)
	assert.False(opts.Has("missing"))
}

func TestStringOptions(t *testing.T) {
	assert := assert.New(t)
	opts, err := opt.Apply(opt.WithString("key", "value1", " value2 "))
	assert.NoError(err)
	assert.Equal([]string{"value1", "value2"}, opts.GetStringArray("key"))
	assert.Equal("value1", opts.GetString("key"))
}

func TestGenerationOptions(t *testing.T) {
	assert := assert.New(t)
	opts, err := opt.Apply(
		opt.WithSystemPrompt("  be brief "),
		opt.WithTemperature(0.1),
		opt.WithMaxTokens(256),
	)
	assert.NoError(err)
	assert.Equal("be brief", opts.GetString(opt.SystemPromptKey))
	assert.InDelta(0.1, opts.GetFloat64(opt.TemperatureKey), 1e-9)
	assert.Equal(uint(256), opts.GetUint(opt.MaxTokensKey))
}

func TestTemperatureOutOfRange(t *testing.T) {
	assert := assert.New(t)
	_, err := opt.Apply(opt.WithTemperature(3))
	assert.Error(err)
}

func TestOptionsAreIndependent(t *testing.T) {
	assert := assert.New(t)
	base := []opt.Opt{opt.WithSystemPrompt("first")}
	a, err := opt.Apply(base...)
	assert.NoError(err)
	b, err := opt.Apply(append(base, opt.WithLimit(3))...)
	assert.NoError(err)
	assert.False(a.Has(opt.LimitKey))
	assert.Equal(uint(3), b.GetUint(opt.LimitKey))
}

func TestAnyAndError(t *testing.T) {
	assert := assert.New(t)
	opts, err := opt.Apply(opt.WithAny("obj", []int{1, 2}), opt.WithBool("flag", true))
	assert.NoError(err)
	assert.Equal([]int{1, 2}, opts.Get("obj"))
	assert.True(opts.GetBool("flag"))
	assert.Empty(opts.Query("obj").Get("obj"))

	_, err = opt.Apply(opt.Error(errors.New("boom")))
	assert.EqualError(err, "boom")
}
