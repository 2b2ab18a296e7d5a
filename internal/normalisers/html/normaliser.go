// Package html extracts readable text from HTML documents using goquery.
package html

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Elements whose content is never study material.
const droppedElements = "script, style, noscript, nav, header, footer, svg, iframe, form"

// Elements that end a line of text.
const blockElements = "p, div, br, hr, h1, h2, h3, h4, h5, h6, li, tr, blockquote, pre, table, section, article, dd, dt"

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise strips markup and boilerplate, keeping one line per block element.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	title, text, err := Extract(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = titleFromURI(raw.URI)
	}

	return &driven.NormaliseResult{
		Title:  title,
		Text:   text,
		Format: "html",
	}, nil
}

// Extract parses HTML and returns the page title and its readable text.
// Scripts, styles and page chrome (nav, header, footer) are dropped.
func Extract(r io.Reader) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", "", fmt.Errorf("%w: parse html: %v", domain.ErrInvalidInput, err)
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	body.Find(droppedElements).Remove()
	body.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return title, collapseLines(body.Text()), nil
}

// collapseLines trims each line and drops empty ones.
func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func titleFromURI(uri string) string {
	if uri == "" {
		return ""
	}
	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}
