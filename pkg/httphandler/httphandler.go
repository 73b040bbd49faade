package httphandler

import (
	"context"
	"errors"
	"net/http"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	chi "github.com/go-chi/chi/v5"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Summarizer turns a PDF document into a topic and a summary
type Summarizer interface {
	Summarize(ctx context.Context, document []byte, prompt string) (*schema.Summary, error)
}

// Paths records the operations registered on a router
type Paths map[string]*openapi.PathItem

// openAPI is the document served at /openapi.json
type openAPI struct {
	Version string `json:"openapi"`
	Info    struct {
		Title   string `json:"title"`
		Version string `json:"version"`
	} `json:"info"`
	Paths Paths `json:"paths"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	openAPIVersion = "3.1.0"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Register adds a handler to the router and records its operations
func (p Paths) Register(router chi.Router) func(string, http.HandlerFunc, *openapi.PathItem) {
	return func(path string, handler http.HandlerFunc, spec *openapi.PathItem) {
		router.HandleFunc(path, handler)
		if spec != nil {
			p[path] = spec
		}
	}
}

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: /openapi.json
func OpenAPIHandler(title, version string, paths Paths) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/openapi.json", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				var doc openAPI
				doc.Version = openAPIVersion
				doc.Info.Title = title
				doc.Info.Version = version
				doc.Paths = paths
				_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), doc)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "Describe the operations of the server",
			},
		})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// httpErr converts an agentface.Err to an httpresponse.Err, preserving the
// original error message. Unknown error codes map to 500.
func httpErr(err error) error {
	var code agentface.Err
	switch {
	case errors.Is(err, context.Canceled):
		return httpresponse.Err(http.StatusServiceUnavailable).With(err)
	case errors.Is(err, context.DeadlineExceeded):
		return httpresponse.Err(http.StatusGatewayTimeout).With(err)
	case !errors.As(err, &code):
		return httpresponse.ErrInternalError.With(err)
	}
	switch code {
	case agentface.ErrNotFound:
		return httpresponse.ErrNotFound.With(err)
	case agentface.ErrBadParameter:
		return httpresponse.ErrBadRequest.With(err)
	case agentface.ErrConflict:
		return httpresponse.ErrConflict.With(err)
	case agentface.ErrNotImplemented:
		return httpresponse.ErrNotImplemented.With(err)
	case agentface.ErrRenderEngineMissing:
		return httpresponse.Err(http.StatusServiceUnavailable).With(err)
	case agentface.ErrIOFailure:
		return httpresponse.Err(http.StatusBadGateway).With(err)
	default:
		return httpresponse.ErrInternalError.With(err)
	}
}
