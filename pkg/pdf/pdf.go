// Package pdf extracts plain text from PDF documents and checks uploads
// by content sniffing.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	// Packages
	agentface "github.com/atagle123/AgentFace"
	pdf "github.com/ledongthuc/pdf"
	gomultipart "github.com/mutablelogic/go-client/pkg/multipart"
	norm "golang.org/x/text/unicode/norm"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ContentType = "application/pdf"

	// DefaultMaxSize is the largest upload accepted by Read
	DefaultMaxSize = 32 << 20
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// IsPDF returns true when the data sniffs as a PDF document
func IsPDF(data []byte) bool {
	return http.DetectContentType(data) == ContentType
}

// Read returns the contents of an uploaded file, which must be a PDF no
// larger than maxSize bytes. A zero maxSize uses DefaultMaxSize.
func Read(file gomultipart.File, maxSize int64) ([]byte, error) {
	if file.Body == nil {
		return nil, agentface.ErrBadParameter.With("missing file")
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	data, err := io.ReadAll(io.LimitReader(file.Body, maxSize+1))
	if err != nil {
		return nil, agentface.ErrIOFailure.With(err)
	} else if int64(len(data)) > maxSize {
		return nil, agentface.ErrBadParameter.Withf("%q is larger than %d bytes", file.Path, maxSize)
	} else if !IsPDF(data) {
		return nil, agentface.ErrBadParameter.Withf("%q is not a PDF document", file.Path)
	}
	return data, nil
}

// ExtractText returns the text of every page, each page followed by a
// newline. Ligatures and compatibility characters are folded (NFKC), so
// "\ufb01" becomes "fi". A document without any text returns an empty string.
func ExtractText(data []byte) (_ string, err error) {
	if !IsPDF(data) {
		return "", agentface.ErrBadParameter.With("not a PDF document")
	}

	// The parser panics on some malformed documents
	defer func() {
		if r := recover(); r != nil {
			err = agentface.ErrBadParameter.Withf("malformed PDF document: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", agentface.ErrBadParameter.Withf("malformed PDF document: %v", err)
	}

	// Cache fonts across pages
	var text strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, exists := fonts[name]; !exists {
				font := page.Font(name)
				fonts[name] = &font
			}
		}
		content, err := page.GetPlainText(fonts)
		if err != nil {
			return "", agentface.ErrBadParameter.Withf("page %d: %v", i, err)
		}
		text.WriteString(strings.TrimSpace(norm.NFKC.String(content)))
		text.WriteString("\n")
	}

	// Return empty when there is no text at all
	if strings.TrimSpace(text.String()) == "" {
		return "", nil
	}
	return text.String(), nil
}

// Summary returns the first n characters of text, for logging
func Summary(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= n {
		return text
	}
	return fmt.Sprint(text[:n], "...")
}
