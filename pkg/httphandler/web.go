package httphandler

import (
	"bytes"
	"context"
	"encoding/base64"
	"html/template"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	artifact "github.com/atagle123/AgentFace/pkg/artifact"
	logger "github.com/atagle123/AgentFace/pkg/logger"
	pdf "github.com/atagle123/AgentFace/pkg/pdf"
	schema "github.com/atagle123/AgentFace/pkg/schema"
	video "github.com/atagle123/AgentFace/pkg/video"
	uuid "github.com/google/uuid"
	gomultipart "github.com/mutablelogic/go-client/pkg/multipart"
	goldmark "github.com/yuin/goldmark"
	extension "github.com/yuin/goldmark/extension"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Web is the PDF to video web application. Documents and videos are kept
// in the store under the session which uploaded them.
type Web struct {
	store      artifact.Store
	summarizer Summarizer
	generator  video.Generator
	markdown   goldmark.Markdown
	page       *template.Template
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// DocumentName is the name of the uploaded document in a session
	DocumentName = "document.pdf"

	videoPath = "/video/"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewWeb returns the web application
func NewWeb(store artifact.Store, summarizer Summarizer, generator video.Generator) (*Web, error) {
	switch {
	case store == nil:
		return nil, agentface.ErrBadParameter.With("missing store")
	case summarizer == nil:
		return nil, agentface.ErrBadParameter.With("missing summarizer")
	case generator == nil:
		return nil, agentface.ErrBadParameter.With("missing video generator")
	}
	page, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, agentface.ErrInternalServerError.With(err)
	}
	return &Web{
		store:      store,
		summarizer: summarizer,
		generator:  generator,
		markdown:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
		page:       page,
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Upload stores a PDF document for a session. A new session is created
// when none is given.
func (web *Web) Upload(ctx context.Context, session string, file gomultipart.File) (*schema.UploadResponse, error) {
	if session == "" {
		session = uuid.New().String()
	} else if err := validSession(session); err != nil {
		return nil, err
	}
	data, err := pdf.Read(file, pdf.DefaultMaxSize)
	if err != nil {
		return nil, err
	}
	if _, err := web.store.Put(ctx, session, DocumentName, schema.ContentTypePDF, bytes.NewReader(data)); err != nil {
		return nil, err
	}

	name := DocumentName
	if file.Path != "" {
		name = filepath.Base(file.Path)
	}
	logger.FromContext(ctx).InfoContext(ctx, "document uploaded", "session", session, "name", name, "size", len(data))
	return &schema.UploadResponse{
		Session: session,
		Name:    name,
		Size:    len(data),
		Preview: preview(data),
	}, nil
}

// Generate summarizes the document of a session and then generates a video
// from the summary
func (web *Web) Generate(ctx context.Context, req schema.GenerateRequest) (*schema.GenerateResponse, error) {
	if err := validSession(req.Session); err != nil {
		return nil, err
	}
	document, err := web.document(ctx, req.Session)
	if err != nil {
		return nil, err
	}

	// Summarize
	summary, err := web.summarizer.Summarize(ctx, document, req.Prompt)
	if err != nil {
		return nil, err
	}
	response := &schema.GenerateResponse{
		Session:     req.Session,
		Summary:     *summary,
		SummaryHTML: web.html(summary),
	}

	// Generate the video
	result, err := web.generator.Generate(ctx, schema.VideoRequest{
		Session: req.Session,
		Topic:   summary.Topic,
		Context: summary.Context,
	})
	if err != nil {
		return nil, err
	}
	response.Status = result.Status
	response.Video = web.videoURL(ctx, req.Session, result.Path)
	return response, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// document returns the uploaded document of a session
func (web *Web) document(ctx context.Context, session string) ([]byte, error) {
	r, _, err := web.store.Open(ctx, session, DocumentName)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	}
	return data, nil
}

// latestVideo returns the URL of the newest video of a session, or empty
// string
func (web *Web) latestVideo(ctx context.Context, session string) string {
	objects, err := web.store.List(ctx, session)
	if err != nil {
		return ""
	}
	for _, object := range objects {
		if path.Ext(object.Name) == ".mp4" {
			return videoURL(session, object.Name)
		}
	}
	return ""
}

// videoURL returns the URL which serves a generated video. A video which
// can be read locally is copied into the store; otherwise it must already
// be stored by the video stage, or the location is returned unchanged.
func (web *Web) videoURL(ctx context.Context, session, location string) string {
	if location == "" {
		return ""
	}
	name := filepath.Base(location)
	if _, err := artifact.PutFile(ctx, web.store, session, location); err == nil {
		return videoURL(session, name)
	}
	if r, _, err := web.store.Open(ctx, session, name); err == nil {
		r.Close()
		return videoURL(session, name)
	}
	logger.FromContext(ctx).WarnContext(ctx, "video not in store", "session", session, "path", location)
	return location
}

// html renders the summary as HTML
func (web *Web) html(summary *schema.Summary) string {
	var source strings.Builder
	if summary.Topic != "" {
		source.WriteString("### " + summary.Topic + "\n\n")
	}
	source.WriteString(summary.Context)

	var buf bytes.Buffer
	if err := web.markdown.Convert([]byte(source.String()), &buf); err != nil {
		return template.HTMLEscapeString(source.String())
	}
	return buf.String()
}

func videoURL(session, name string) string {
	return videoPath + url.PathEscape(session) + "/" + url.PathEscape(name)
}

// preview returns a data URI which embeds the document
func preview(data []byte) string {
	return "data:" + schema.ContentTypePDF + ";base64," + base64.StdEncoding.EncodeToString(data)
}
