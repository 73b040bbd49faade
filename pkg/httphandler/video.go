package httphandler

import (
	"context"
	"net/http"
	"strings"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	artifact "github.com/atagle123/AgentFace/pkg/artifact"
	logger "github.com/atagle123/AgentFace/pkg/logger"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	shim "github.com/atagle123/AgentFace/pkg/shim"
	video "github.com/atagle123/AgentFace/pkg/video"
	chi "github.com/go-chi/chi/v5"
	uuid "github.com/google/uuid"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: /video
func VideoHandler(stage *shim.Shim, generator video.Generator, store artifact.Store) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/video", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				var req schema.VideoRequest
				if err := httprequest.Read(r, &req); err != nil {
					_ = httpresponse.Error(w, err)
					return
				} else if strings.TrimSpace(req.Topic) == "" {
					_ = httpresponse.Error(w, httpresponse.ErrBadRequest.With("missing topic"))
					return
				}
				if req.Session == "" {
					req.Session = uuid.New().String()
				} else if err := validSession(req.Session); err != nil {
					_ = httpresponse.Error(w, httpErr(err))
					return
				}

				// Run one generation at a time
				var response *schema.VideoResponse
				if err := stage.Do(r.Context(), func(ctx context.Context) (err error) {
					response, err = generator.Generate(ctx, req)
					return err
				}); err != nil {
					_ = httpresponse.Error(w, httpErr(err))
					return
				}

				// Keep the video with the session
				if store != nil && response.Path != "" {
					if _, err := artifact.PutFile(r.Context(), store, req.Session, response.Path); err != nil {
						logger.FromContext(r.Context()).WarnContext(r.Context(), "video not stored", "session", req.Session, "path", response.Path, "error", err)
					}
				}
				_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), response)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Post: &openapi.Operation{
				Description: "Generate an explanatory video for a topic and return its location",
			},
		})
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// RegisterVideo adds the video stage to a router. The store may be nil.
func RegisterVideo(router chi.Router, stage *shim.Shim, generator video.Generator, store artifact.Store, version string) Paths {
	paths := make(Paths)
	register := paths.Register(router)
	register(VideoHandler(stage, generator, store))
	register(OpenAPIHandler("Video", version, paths))
	return paths
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// validSession reports whether a session identifier can name a directory
func validSession(session string) error {
	if session == "" || session == "." || session == ".." || strings.ContainsAny(session, `/\`) {
		return agentface.ErrBadParameter.Withf("invalid session: %q", session)
	}
	return nil
}
