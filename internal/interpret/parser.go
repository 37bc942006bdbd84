package interpret

import (
	"regexp"
	"strconv"
	"strings"
)

var percentRe = regexp.MustCompile(`(\d+)%`)

// ParsedResponse is the structured view of a free-form model response. The
// parser is heuristic and never fails: a response with no recognizable
// section markers yields the defaults with the raw text as the
// interpretation.
type ParsedResponse struct {
	Interpretation     string
	ConfidenceScore    float64
	ScientificEvidence string
	Reasoning          string
	Alternatives       []string
	SourcesCited       string
}

// ParseRAGResponse extracts the sections of a single-shot interpretation
// response. Section headers match case-insensitively; alternatives follow
// the numbered-list convention.
func ParseRAGResponse(text string) *ParsedResponse {
	parsed := &ParsedResponse{}
	var interpretation, confidence, evidence, reasoning, sources strings.Builder

	section := ""
	for _, line := range strings.Split(text, "\n") {
		upper := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.Contains(upper, "PRIMARY INTERPRETATION:"):
			section = "interpretation"
			continue
		case strings.Contains(upper, "CONFIDENCE LEVEL:") || strings.Contains(upper, "CONFIDENCE:"):
			section = "confidence"
			continue
		case strings.Contains(upper, "SCIENTIFIC EVIDENCE:"):
			section = "evidence"
			continue
		case strings.Contains(upper, "REASONING:"):
			section = "reasoning"
			continue
		case strings.Contains(upper, "ALTERNATIVE INTERPRETATION"):
			section = "alternatives"
			continue
		case strings.Contains(upper, "SOURCES CITED:") || strings.Contains(upper, "SOURCES:"):
			section = "sources"
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch section {
		case "interpretation":
			appendLine(&interpretation, trimmed)
		case "confidence":
			appendLine(&confidence, trimmed)
		case "evidence":
			appendLine(&evidence, trimmed)
		case "reasoning":
			appendLine(&reasoning, trimmed)
		case "alternatives":
			if item, ok := numberedItem(trimmed); ok {
				parsed.Alternatives = append(parsed.Alternatives, item)
			}
		case "sources":
			appendLine(&sources, trimmed)
		}
	}

	parsed.Interpretation = strings.TrimSpace(interpretation.String())
	parsed.ScientificEvidence = strings.TrimSpace(evidence.String())
	parsed.Reasoning = strings.TrimSpace(reasoning.String())
	parsed.SourcesCited = strings.TrimSpace(sources.String())
	parsed.ConfidenceScore = parseConfidence(confidence.String(), 0.85, 0.35, 0.5)
	if parsed.Interpretation == "" {
		parsed.Interpretation = strings.TrimSpace(text)
	}
	return parsed
}

// ParseSynthesis extracts confidence, reasoning and alternatives from the
// final synthesis stage. The full synthesis text is kept as the
// interpretation rather than a single section.
func ParseSynthesis(text string) *ParsedResponse {
	parsed := &ParsedResponse{
		Interpretation: strings.TrimSpace(text),
		Reasoning:      "Synthesized from multiple analytical perspectives",
	}

	parsed.ConfidenceScore = 0.7
	if strings.Contains(text, "%") {
		switch {
		case strings.Contains(text, "High"):
			parsed.ConfidenceScore = 0.85
		case strings.Contains(text, "Low"):
			parsed.ConfidenceScore = 0.4
		}
		if match := percentRe.FindStringSubmatch(text); match != nil {
			if pct, err := strconv.Atoi(match[1]); err == nil && pct >= 0 && pct <= 100 {
				parsed.ConfidenceScore = float64(pct) / 100
			}
		}
	}

	inAlternatives := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(strings.ToUpper(trimmed), "ALTERNATIVE INTERPRETATION") {
			inAlternatives = true
			continue
		}
		if !inAlternatives || trimmed == "" {
			continue
		}
		item, ok := numberedItem(trimmed)
		if !ok {
			inAlternatives = false
			continue
		}
		parsed.Alternatives = append(parsed.Alternatives, item)
		if len(parsed.Alternatives) == 3 {
			break
		}
	}

	if start := strings.Index(text, "REASONING:"); start != -1 {
		end := strings.Index(text, "ALTERNATIVE INTERPRETATIONS:")
		if end > start {
			parsed.Reasoning = strings.TrimSpace(strings.TrimPrefix(text[start:end], "REASONING:"))
		}
	}
	return parsed
}

func parseConfidence(text string, high, low, fallback float64) float64 {
	if match := percentRe.FindStringSubmatch(text); match != nil {
		if pct, err := strconv.Atoi(match[1]); err == nil && pct >= 0 && pct <= 100 {
			return float64(pct) / 100
		}
	}
	switch {
	case strings.Contains(text, "High"):
		return high
	case strings.Contains(text, "Low"):
		return low
	}
	return fallback
}

// numberedItem recognizes "N. content" list entries for single-digit N.
func numberedItem(line string) (string, bool) {
	if len(line) < 3 || line[0] < '1' || line[0] > '9' || line[1] != '.' {
		return "", false
	}
	return strings.TrimSpace(line[2:]), true
}

func appendLine(sb *strings.Builder, line string) {
	if sb.Len() > 0 {
		sb.WriteString(" ")
	}
	sb.WriteString(line)
}
