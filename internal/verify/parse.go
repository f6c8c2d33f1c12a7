package verify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gen2brain/go-fitz"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Document is the parseable representation of one receipt. Exactly one
// of the format-specific handles is populated; Text is the flattened
// text for pattern rules and is available for pdf and html documents.
type Document struct {
	Format Format
	Text   string
	HTML   *goquery.Document
	JSON   map[string]any
}

// Parse converts a raw document into its queryable form. The html
// format is sniffed for structured bodies first: one institution's
// relay answers with either markup or JSON on the same endpoint, and
// its content-type header is not trustworthy.
func Parse(raw *RawDocument) (*Document, error) {
	switch raw.Format {
	case FormatPDF:
		return parsePDF(raw.Body)
	case FormatJSON:
		return parseJSON(raw.Body)
	case FormatHTML:
		if looksLikeJSON(raw.Body) {
			return parseJSON(raw.Body)
		}
		return parseHTML(raw.Body)
	}
	return nil, &ParseError{Format: raw.Format, Err: fmt.Errorf("unsupported format")}
}

// parsePDF extracts the text of every page and collapses whitespace
// runs to single spaces, so field patterns survive line wrapping.
func parsePDF(body []byte) (*Document, error) {
	doc, err := fitz.NewFromMemory(body)
	if err != nil {
		return nil, &ParseError{Format: FormatPDF, Err: err}
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return nil, &ParseError{Format: FormatPDF, Err: fmt.Errorf("page %d: %w", i, err)}
		}
		sb.WriteString(text)
		sb.WriteString(" ")
	}

	flat := collapseWhitespace(sb.String())
	if flat == "" {
		return nil, &ParseError{Format: FormatPDF, Err: fmt.Errorf("document contains no text")}
	}
	return &Document{Format: FormatPDF, Text: flat}, nil
}

func parseHTML(body []byte) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Format: FormatHTML, Err: err}
	}
	return &Document{
		Format: FormatHTML,
		Text:   collapseWhitespace(doc.Text()),
		HTML:   doc,
	}, nil
}

func parseJSON(body []byte) (*Document, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ParseError{Format: FormatJSON, Err: err}
	}
	if len(payload) == 0 {
		return nil, &ParseError{Format: FormatJSON, Err: fmt.Errorf("empty object")}
	}
	return &Document{Format: FormatJSON, JSON: payload}, nil
}

func looksLikeJSON(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
