package interpret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRAGResponseFullSections(t *testing.T) {
	resp := `PRIMARY INTERPRETATION:
The dream reflects performance anxiety tied to an upcoming evaluation.
Loss of teeth commonly maps to perceived loss of control.

CONFIDENCE LEVEL:
High - 82%

SCIENTIFIC EVIDENCE:
Content analysis studies report teeth dreams in high-stress cohorts.

REASONING:
The user context and symbol pattern both point to anticipatory stress.

ALTERNATIVE INTERPRETATIONS:
1. Concern over physical appearance
2. Transition anxiety
3. Communication difficulties

SOURCES CITED:
The Content Analysis of Dreams
`
	parsed := ParseRAGResponse(resp)
	assert.Contains(t, parsed.Interpretation, "performance anxiety")
	assert.Contains(t, parsed.Interpretation, "Loss of teeth")
	assert.InDelta(t, 0.82, parsed.ConfidenceScore, 1e-9)
	assert.Contains(t, parsed.ScientificEvidence, "high-stress cohorts")
	assert.Contains(t, parsed.Reasoning, "anticipatory stress")
	require.Len(t, parsed.Alternatives, 3)
	assert.Equal(t, "Concern over physical appearance", parsed.Alternatives[0])
	assert.Equal(t, "Communication difficulties", parsed.Alternatives[2])
	assert.Contains(t, parsed.SourcesCited, "Content Analysis")
}

func TestParseRAGResponseCaseInsensitiveHeaders(t *testing.T) {
	resp := `primary interpretation:
A stress response.

confidence level:
Medium - 60%
`
	parsed := ParseRAGResponse(resp)
	assert.Equal(t, "A stress response.", parsed.Interpretation)
	assert.InDelta(t, 0.60, parsed.ConfidenceScore, 1e-9)
}

func TestParseRAGResponsePercentWinsOverKeyword(t *testing.T) {
	resp := `PRIMARY INTERPRETATION:
x

CONFIDENCE LEVEL:
High - 67%
`
	parsed := ParseRAGResponse(resp)
	assert.InDelta(t, 0.67, parsed.ConfidenceScore, 1e-9)
}

func TestParseRAGResponseKeywordFallback(t *testing.T) {
	for _, tc := range []struct {
		text string
		want float64
	}{
		{"CONFIDENCE LEVEL:\nHigh", 0.85},
		{"CONFIDENCE LEVEL:\nLow", 0.35},
		{"CONFIDENCE LEVEL:\nMedium", 0.5},
	} {
		parsed := ParseRAGResponse("PRIMARY INTERPRETATION:\nx\n\n" + tc.text)
		assert.InDelta(t, tc.want, parsed.ConfidenceScore, 1e-9, tc.text)
	}
}

func TestParseRAGResponseNoMarkers(t *testing.T) {
	resp := "The dream suggests unresolved tension without any structured sections."
	parsed := ParseRAGResponse(resp)
	assert.Equal(t, resp, parsed.Interpretation)
	assert.InDelta(t, 0.5, parsed.ConfidenceScore, 1e-9)
	assert.Empty(t, parsed.Alternatives)
}

func TestParseRAGResponseIgnoresUnnumberedAlternatives(t *testing.T) {
	resp := `ALTERNATIVE INTERPRETATIONS:
1. First alternative
- A bulleted line that is not numbered
2. Second alternative
`
	parsed := ParseRAGResponse(resp)
	require.Len(t, parsed.Alternatives, 2)
	assert.Equal(t, "First alternative", parsed.Alternatives[0])
	assert.Equal(t, "Second alternative", parsed.Alternatives[1])
}

func TestParseSynthesis(t *testing.T) {
	resp := `FINAL INTERPRETATION:
The dream integrates a transition theme with mild threat simulation.

CONFIDENCE:
High - 80%

REASONING:
All three analyses converge on anticipatory processing.

ALTERNATIVE INTERPRETATIONS:
1. Pure memory consolidation
2. Wish fulfilment

KEY INSIGHTS:
Track recurrence around the job start.
`
	parsed := ParseSynthesis(resp)
	assert.Equal(t, resp, parsed.Interpretation+"\n")
	assert.InDelta(t, 0.80, parsed.ConfidenceScore, 1e-9)
	assert.Equal(t, "All three analyses converge on anticipatory processing.", parsed.Reasoning)
	require.Len(t, parsed.Alternatives, 2)
	assert.Equal(t, "Pure memory consolidation", parsed.Alternatives[0])
}

func TestParseSynthesisDefaults(t *testing.T) {
	parsed := ParseSynthesis("A free-form synthesis with no markers at all.")
	assert.InDelta(t, 0.7, parsed.ConfidenceScore, 1e-9)
	assert.Equal(t, "Synthesized from multiple analytical perspectives", parsed.Reasoning)
	assert.Empty(t, parsed.Alternatives)
}

func TestParseSynthesisKeywordConfidence(t *testing.T) {
	parsed := ParseSynthesis("CONFIDENCE:\nLow - some%\n")
	assert.InDelta(t, 0.4, parsed.ConfidenceScore, 1e-9)
}

func TestParseSynthesisCapsAlternatives(t *testing.T) {
	resp := `ALTERNATIVE INTERPRETATIONS:
1. one
2. two
3. three
4. four
`
	parsed := ParseSynthesis(resp)
	assert.Len(t, parsed.Alternatives, 3)
}
