package video

import (
	"bytes"
	"errors"
	"io"
	"os"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	types "github.com/mutablelogic/go-server/pkg/types"
	yaml "gopkg.in/yaml.v3"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Defaults configures the external video generator
type Defaults struct {
	Executable          string `yaml:"executable"`
	Script              string `yaml:"script,omitempty"`
	Workdir             string `yaml:"workdir,omitempty"`
	Model               string `yaml:"model"`
	HelperModel         string `yaml:"helper_model,omitempty"`
	OutputDir           string `yaml:"output_dir"`
	Verbose             bool   `yaml:"verbose"`
	UseRAG              bool   `yaml:"use_rag"`
	UseContextLearning  bool   `yaml:"use_context_learning"`
	ContextLearningPath string `yaml:"context_learning_path,omitempty"`
	ChromaDBPath        string `yaml:"chroma_db_path,omitempty"`
	ManimDocsPath       string `yaml:"manim_docs_path,omitempty"`
	EmbeddingModel      string `yaml:"embedding_model,omitempty"`
	UseVisualFixCode    bool   `yaml:"use_visual_fix_code"`
	MaxSceneConcurrency uint   `yaml:"max_scene_concurrency"`
	MaxRetries          uint   `yaml:"max_retries"`
	OnlyPlan            bool   `yaml:"only_plan"`
	OnlyRender          bool   `yaml:"only_render"`
	OnlyGenVid          bool   `yaml:"only_gen_vid"`
	OnlyCombine         bool   `yaml:"only_combine"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultModel = "devstral:24b"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewDefaults returns the built-in generator configuration
func NewDefaults() Defaults {
	return Defaults{
		Executable:          "python",
		Script:              "generate_video.py",
		Model:               DefaultModel,
		OutputDir:           "output",
		MaxSceneConcurrency: 1,
		MaxRetries:          5,
	}
}

// LoadDefaults reads a YAML configuration over the built-in one. Unknown
// keys are an error.
func LoadDefaults(path string) (Defaults, error) {
	defaults := NewDefaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, agentface.ErrIOFailure.With(err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&defaults); err != nil && !errors.Is(err, io.EOF) {
		return defaults, agentface.ErrBadParameter.Withf("%s: %v", path, err)
	}
	return defaults, defaults.Validate()
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Validate checks the configuration is usable
func (d Defaults) Validate() error {
	switch {
	case d.Executable == "":
		return agentface.ErrBadParameter.With("missing executable")
	case d.Model == "":
		return agentface.ErrBadParameter.With("missing model")
	case d.OutputDir == "":
		return agentface.ErrBadParameter.With("missing output_dir")
	}
	stops := 0
	for _, only := range []bool{d.OnlyPlan, d.OnlyRender, d.OnlyGenVid, d.OnlyCombine} {
		if only {
			stops++
		}
	}
	if stops > 1 {
		return agentface.ErrBadParameter.With("at most one of only_plan, only_render, only_gen_vid and only_combine may be set")
	}
	return nil
}

// Status returns the status reported when the configuration stops the
// generator early, or the rendered status
func (d Defaults) Status() string {
	switch {
	case d.OnlyGenVid:
		return statusRenderedOnly
	case d.OnlyCombine:
		return statusCombinedOnly
	case d.OnlyPlan:
		return statusPlannedOnly
	case d.OnlyRender:
		return statusRenderedOnly
	}
	return statusRendered
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (d Defaults) String() string {
	return types.Stringify(d)
}
