package schema

import (
	// Packages
	gomultipart "github.com/mutablelogic/go-client/pkg/multipart"
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ContentTypePDF = "application/pdf"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Summary is the output of the summarization stage
type Summary struct {
	Topic   string `json:"topic"`
	Context string `json:"context"`
}

// SummarizeRequest is a PDF upload with an optional prompt. It is accepted
// as multipart/form-data.
type SummarizeRequest struct {
	Prompt string           `json:"prompt,omitempty" help:"Extra instructions for the summary" optional:""`
	File   gomultipart.File `json:"file" help:"PDF document"`
}

// VideoRequest asks the video stage to explain a topic
type VideoRequest struct {
	Session string `json:"session,omitempty" help:"Session identifier" optional:""`
	Topic   string `json:"topic" help:"Main topic"`
	Context string `json:"context" help:"Detailed summary used as narration context"`
}

// VideoResponse carries the real location of the generated video
type VideoResponse struct {
	Session string `json:"session,omitempty"`
	Path    string `json:"path,omitempty"`
	Status  string `json:"status"`
}

// UploadRequest is the web form PDF upload
type UploadRequest struct {
	Session string           `json:"session,omitempty"`
	File    gomultipart.File `json:"file"`
}

// UploadResponse returns the session and an embeddable preview
type UploadResponse struct {
	Session string `json:"session"`
	Name    string `json:"name"`
	Size    int    `json:"size"`
	Preview string `json:"preview"`
}

// GenerateRequest is submitted by the web form. All submit buttons map onto
// this single request.
type GenerateRequest struct {
	Session string `json:"session"`
	Prompt  string `json:"prompt,omitempty"`
	Action  string `json:"action,omitempty"`
}

// GenerateResponse is the result of the full PDF to video flow
type GenerateResponse struct {
	Session     string  `json:"session"`
	Summary     Summary `json:"summary"`
	SummaryHTML string  `json:"summary_html,omitempty"`
	Video       string  `json:"video,omitempty"`
	Status      string  `json:"status"`
}

// Video stage statuses
const (
	VideoStatusRendered = "rendered"
	VideoStatusPlanned  = "planned only"
	VideoStatusRender   = "rendered only"
	VideoStatusCombined = "combined only"
)

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (s Summary) String() string {
	return types.Stringify(s)
}

func (r VideoRequest) String() string {
	return types.Stringify(r)
}

func (r VideoResponse) String() string {
	return types.Stringify(r)
}
