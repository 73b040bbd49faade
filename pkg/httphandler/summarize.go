package httphandler

import (
	"context"
	"net/http"

	// Packages
	pdf "github.com/atagle123/AgentFace/pkg/pdf"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	shim "github.com/atagle123/AgentFace/pkg/shim"
	chi "github.com/go-chi/chi/v5"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: /summarize
func SummarizeHandler(stage *shim.Shim, summarizer Summarizer) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/summarize", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				var req schema.SummarizeRequest
				if err := httprequest.Read(r, &req); err != nil {
					_ = httpresponse.Error(w, err)
					return
				}
				document, err := pdf.Read(req.File, pdf.DefaultMaxSize)
				if err != nil {
					_ = httpresponse.Error(w, httpErr(err))
					return
				}

				// Run one summary at a time
				var summary *schema.Summary
				if err := stage.Do(r.Context(), func(ctx context.Context) (err error) {
					summary, err = summarizer.Summarize(ctx, document, req.Prompt)
					return err
				}); err != nil {
					_ = httpresponse.Error(w, httpErr(err))
					return
				}
				_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), summary)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Post: &openapi.Operation{
				Description: "Summarize a PDF document into a topic and a detailed context",
			},
		})
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// RegisterSummarizer adds the summarization stage to a router
func RegisterSummarizer(router chi.Router, stage *shim.Shim, summarizer Summarizer, version string) Paths {
	paths := make(Paths)
	register := paths.Register(router)
	register(SummarizeHandler(stage, summarizer))
	register(OpenAPIHandler("Summarizer", version, paths))
	return paths
}
