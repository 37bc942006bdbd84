package corpus

import (
	"strings"
)

// DefaultSeparators is the split hierarchy tuned for research papers: larger
// structural units first, then sentence and clause boundaries, then plain
// whitespace.
var DefaultSeparators = []string{
	"\n\n",
	"\n",
	". ",
	"! ",
	"? ",
	"; ",
	", ",
	" ",
}

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunk splits text into segments of at most targetSize characters, cutting at
// the highest-priority separator found inside the current window. Adjacent
// chunks share exactly overlap characters: each chunk after the first starts
// overlap characters before the previous cut, so re-joining chunks minus their
// overlap reproduces the input.
//
// A run longer than targetSize with no separator inside the window is emitted
// whole rather than broken mid-token.
func Chunk(text string, targetSize, overlap int, separators []string) []string {
	if text == "" {
		return nil
	}
	if targetSize <= 0 {
		targetSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= targetSize {
		overlap = 0
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	var chunks []string
	pos := 0
	for {
		if len(text)-pos <= targetSize {
			chunks = append(chunks, text[pos:])
			return chunks
		}
		cut := findCut(text, pos, targetSize, separators)
		chunks = append(chunks, text[pos:cut])
		if cut >= len(text) {
			return chunks
		}
		next := cut - overlap
		if next <= pos {
			// overlap would stall the scan, drop it for this boundary
			next = cut
		}
		pos = next
	}
}

func findCut(text string, pos, targetSize int, separators []string) int {
	window := text[pos : pos+targetSize]
	for _, sep := range separators {
		if sep == "" {
			continue
		}
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := pos + idx + len(sep)
		if cut <= pos {
			continue
		}
		return cut
	}
	// Degenerate: no separator anywhere in the window. Emit the run whole, up
	// to the nearest separator past the window or the end of the text.
	cut := len(text)
	for _, sep := range separators {
		if sep == "" {
			continue
		}
		if idx := strings.Index(text[pos+targetSize:], sep); idx >= 0 {
			if cand := pos + targetSize + idx + len(sep); cand < cut {
				cut = cand
			}
		}
	}
	return cut
}
