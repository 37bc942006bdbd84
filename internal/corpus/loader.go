package corpus

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

var (
	spaceRunRe    = regexp.MustCompile(`[ \t]+`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
	pageNumberRe  = regexp.MustCompile(`(?m)^\s*\d+\s*$`)
	nonASCIIRunRe = regexp.MustCompile(`[^\x00-\x7F]+`)
)

// ExtractText converts a raw corpus document into plain text based on its file
// extension. Supported: .pdf, .md, .markdown, .txt.
func ExtractText(key string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".pdf":
		return extractPDF(data)
	case ".md", ".markdown":
		return extractMarkdown(data), nil
	case ".txt":
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported document type: %s", key)
	}
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var buf bytes.Buffer
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// a broken page should not sink the whole document
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(pageText)
	}
	return buf.String(), nil
}

func extractMarkdown(data []byte) string {
	md := goldmark.New()
	reader := gmtext.NewReader(data)
	doc := md.Parser().Parse(reader)

	var parts []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		txt := collectText(node, data)
		if txt == "" {
			continue
		}
		parts = append(parts, txt)
	}
	return strings.Join(parts, "\n\n")
}

func collectText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				sb.WriteString(" ")
			}
		case *ast.FencedCodeBlock:
			for i := 0; i < v.Lines().Len(); i++ {
				line := v.Lines().At(i)
				sb.Write(line.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// CleanText normalizes extracted text: page-number lines and encoding
// artifacts go away, horizontal whitespace collapses, paragraph breaks stay.
func CleanText(text string) string {
	text = pageNumberRe.ReplaceAllString(text, "")
	text = nonASCIIRunRe.ReplaceAllString(text, " ")
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
