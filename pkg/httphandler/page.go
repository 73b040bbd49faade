package httphandler

import (
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	logger "github.com/atagle123/AgentFace/pkg/logger"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	chi "github.com/go-chi/chi/v5"
	gomultipart "github.com/mutablelogic/go-client/pkg/multipart"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// formRequest is submitted by the page. Every submit button posts the same
// form.
type formRequest struct {
	Session string           `json:"session,omitempty"`
	Prompt  string           `json:"prompt,omitempty"`
	Action  string           `json:"action,omitempty"`
	File    gomultipart.File `json:"file"`
}

type pageData struct {
	Session string
	Prompt  string
	Name    string
	Preview template.URL
	Summary *schema.Summary
	HTML    template.HTML
	Video   string
	Status  string
	Error   string
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>AgentFace</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: 2em auto; }
embed, video { width: 100%; }
embed { height: 30em; }
.error { color: #b00; }
</style>
</head>
<body>
<h1>PDF to video</h1>
{{ if .Error }}<p class="error">{{ .Error }}</p>{{ end }}
<form method="post" action="/" enctype="multipart/form-data">
<input type="hidden" name="session" value="{{ .Session }}">
<p><input type="file" name="file" accept="application/pdf"></p>
<p><textarea name="prompt" rows="3" cols="80" placeholder="What should the video focus on?">{{ .Prompt }}</textarea></p>
<p>
<button type="submit" name="action" value="summarize">Summarize</button>
<button type="submit" name="action" value="video">Generate video</button>
</p>
</form>
{{ if .Preview }}<h2>{{ .Name }}</h2>
<embed src="{{ .Preview }}" type="application/pdf">{{ end }}
{{ if .Summary }}<h2>Summary</h2>
<div>{{ .HTML }}</div>{{ end }}
{{ if .Status }}<p>Video status: {{ .Status }}</p>{{ end }}
{{ if .Video }}<video controls src="{{ .Video }}"></video>{{ end }}
</body>
</html>
`

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: /
func FormHandler(web *Web) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/", func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			switch r.Method {
			case http.MethodGet:
				data := pageData{Session: r.URL.Query().Get("session")}
				if data.Session != "" && validSession(data.Session) == nil {
					if document, err := web.document(ctx, data.Session); err == nil {
						data.Name = DocumentName
						data.Preview = template.URL(preview(document))
					}
					data.Video = web.latestVideo(ctx, data.Session)
				}
				web.render(w, r, http.StatusOK, data)
			case http.MethodPost:
				var req formRequest
				if err := httprequest.Read(r, &req); err != nil {
					web.render(w, r, http.StatusBadRequest, pageData{Error: err.Error()})
					return
				}
				data := pageData{Session: req.Session, Prompt: req.Prompt}

				// Upload a new document. An empty file field keeps the document
				// of the session.
				uploaded := false
				if req.File.Body != nil {
					upload, err := web.Upload(ctx, req.Session, req.File)
					if err == nil {
						uploaded = true
						data.Session = upload.Session
						data.Name = upload.Name
						data.Preview = template.URL(upload.Preview)
					} else if req.File.Path != "" || req.Session == "" {
						data.Error = err.Error()
						web.render(w, r, statusOf(err), data)
						return
					}
				}
				if !uploaded {
					if data.Session == "" {
						data.Error = "Upload a PDF document"
						web.render(w, r, http.StatusBadRequest, data)
						return
					} else if document, err := web.document(ctx, data.Session); err == nil {
						data.Name = DocumentName
						data.Preview = template.URL(preview(document))
					}
				}

				// Summarize and generate
				logger.FromContext(ctx).InfoContext(ctx, "generate", "session", data.Session, "action", req.Action)
				response, err := web.Generate(ctx, schema.GenerateRequest{Session: data.Session, Prompt: req.Prompt, Action: req.Action})
				if err != nil {
					data.Error = err.Error()
					web.render(w, r, statusOf(err), data)
					return
				}
				data.Summary = &response.Summary
				data.HTML = template.HTML(response.SummaryHTML)
				data.Video = response.Video
				data.Status = response.Status
				web.render(w, r, http.StatusOK, data)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "Show the upload form",
			},
			Post: &openapi.Operation{
				Description: "Upload a document and generate its summary and video",
			},
		})
}

// Path: /upload
func UploadHandler(web *Web) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/upload", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				var req schema.UploadRequest
				if err := httprequest.Read(r, &req); err != nil {
					_ = httpresponse.Error(w, err)
					return
				}
				response, err := web.Upload(r.Context(), req.Session, req.File)
				if err != nil {
					_ = httpresponse.Error(w, httpErr(err))
					return
				}
				_ = httpresponse.JSON(w, http.StatusCreated, httprequest.Indent(r), response)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Post: &openapi.Operation{
				Description: "Upload a PDF document to a new or existing session",
			},
		})
}

// Path: /generate
func GenerateHandler(web *Web) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/generate", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				var req schema.GenerateRequest
				if err := httprequest.Read(r, &req); err != nil {
					_ = httpresponse.Error(w, err)
					return
				}
				response, err := web.Generate(r.Context(), req)
				if err != nil {
					_ = httpresponse.Error(w, httpErr(err))
					return
				}
				_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), response)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Post: &openapi.Operation{
				Description: "Summarize the document of a session and generate a video",
			},
		})
}

// Path: /video/{session}/{name}
func VideoFileHandler(web *Web) (string, http.HandlerFunc, *openapi.PathItem) {
	return videoPath + "{session}/{name}", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead:
				session, name := chi.URLParam(r, "session"), chi.URLParam(r, "name")
				reader, object, err := web.store.Open(r.Context(), session, name)
				if err != nil {
					_ = httpresponse.Error(w, httpErr(err))
					return
				}
				defer reader.Close()

				w.Header().Set("Content-Type", object.ContentType)
				if seeker, ok := reader.(io.ReadSeeker); ok {
					http.ServeContent(w, r, object.Name, object.Modified, seeker)
					return
				}
				w.Header().Set("Content-Length", strconv.FormatInt(object.Size, 10))
				w.WriteHeader(http.StatusOK)
				if r.Method == http.MethodGet {
					_, _ = io.Copy(w, reader)
				}
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "Stream a stored video of a session",
			},
		})
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// RegisterWeb adds the web application to a router
func RegisterWeb(router chi.Router, web *Web, version string) Paths {
	paths := make(Paths)
	register := paths.Register(router)
	register(FormHandler(web))
	register(UploadHandler(web))
	register(GenerateHandler(web))
	register(VideoFileHandler(web))
	register(OpenAPIHandler("AgentFace", version, paths))
	return paths
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (web *Web) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := web.page.Execute(w, data); err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "render page", "error", err)
	}
}

// statusOf returns the status code for an error shown on the page
func statusOf(err error) int {
	var code agentface.Err
	if !errors.As(err, &code) {
		return http.StatusInternalServerError
	}
	switch code {
	case agentface.ErrBadParameter:
		return http.StatusBadRequest
	case agentface.ErrNotFound:
		return http.StatusNotFound
	case agentface.ErrRenderEngineMissing:
		return http.StatusServiceUnavailable
	case agentface.ErrIOFailure:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
