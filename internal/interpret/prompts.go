package interpret

import (
	"fmt"
	"strings"

	"github.com/xxxsen/oneiro/internal/model"
)

func userContextBlock(uc model.UserContext) string {
	if len(uc) == 0 {
		return ""
	}
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(uc[key]); v != "" {
			return v
		}
		return fallback
	}
	return fmt.Sprintf(`
USER CONTEXT:
- Stress Level: %s
- Emotional State: %s
- Recent Events: %s
`,
		get("stress_level", "unknown"),
		get("emotional_state", "unknown"),
		get("recent_events", "none provided"),
	)
}

func symbolExtractionPrompt(dreamText string) string {
	return fmt.Sprintf(`Analyze this dream and extract the key symbols, themes, and elements.

Dream: %s

List the most important symbols (5-10) that should be researched. Output as a comma-separated list.
Focus on: objects, actions, emotions, people, places, colors, animals.

Example output: "teeth falling out, workplace, panic, embarrassment, falling"
`, dreamText)
}

func symbolAnalysisPrompt(dreamText string, symbols []string, researchContext string) string {
	return fmt.Sprintf(`You are a dream symbol analyst. Analyze the following symbols from a dream using the research context provided.

Dream: %s
Symbols: %s

Research Context:
%s

For each major symbol, explain:
1. What it represents based on research
2. Scientific evidence supporting this interpretation
3. Common patterns in dream research

Be specific and cite sources from the research context.`,
		dreamText, strings.Join(symbols, ", "), researchContext)
}

func psychologicalAnalysisPrompt(dreamText string, uc model.UserContext, symbolAnalysis, researchContext string) string {
	return fmt.Sprintf(`You are a psychological dream analyst. Analyze this dream from psychological perspectives.

Dream: %s
%s
Previous Symbol Analysis:
%s

Research Context (focus on psychological studies):
%s

Analyze from these perspectives:
1. Emotional processing and mood regulation
2. Memory consolidation and personal experiences
3. Threat simulation and evolutionary psychology
4. Personal psychological state and stress response

Connect the dream to the user's current context if provided.`,
		dreamText, userContextBlock(uc), symbolAnalysis, researchContext)
}

func culturalAnalysisPrompt(dreamText string, symbols []string, researchContext string) string {
	return fmt.Sprintf(`You are a cultural dream analyst. Provide cultural and archetypal context for this dream.

Dream: %s
Symbols: %s

Research Context (focus on cultural studies):
%s

Analyze:
1. Cross-cultural patterns and universal themes
2. Archetypal meanings (if supported by research)
3. Cultural variations in interpretation
4. Traditional vs modern perspectives

Stay grounded in the research provided.`,
		dreamText, strings.Join(symbols, ", "), researchContext)
}

func synthesisPrompt(dreamText, symbolAnalysis, psychologicalAnalysis, culturalAnalysis string) string {
	return fmt.Sprintf(`You are the synthesis agent. Combine all previous analyses into a comprehensive, coherent dream interpretation.

Dream: %s

SYMBOL ANALYSIS:
%s

PSYCHOLOGICAL ANALYSIS:
%s

CULTURAL ANALYSIS:
%s

Create a final interpretation that:
1. Integrates insights from all analyses
2. Prioritizes scientific evidence over speculation
3. Provides actionable insights for the dreamer
4. Includes confidence assessment (High/Medium/Low with %%)
5. Offers 2-3 alternative interpretations
6. Explains reasoning clearly

OUTPUT FORMAT:

FINAL INTERPRETATION:
[2-3 paragraphs integrating all perspectives]

CONFIDENCE:
[High/Medium/Low] - [XX]%%

REASONING:
[Explain why this interpretation is most supported]

ALTERNATIVE INTERPRETATIONS:
1. [Alternative 1]
2. [Alternative 2]
3. [Alternative 3]

KEY INSIGHTS:
[Practical takeaways for the dreamer]
`,
		dreamText, symbolAnalysis, psychologicalAnalysis, culturalAnalysis)
}

func ragInterpretationPrompt(dreamText, researchContext string, uc model.UserContext) string {
	return fmt.Sprintf(`You are an expert dream analyst using evidence-based research to interpret dreams. You have access to scientific literature on dream analysis, including neuroscience studies, content analysis research, and psychological frameworks.

Your task is to interpret the following dream using ONLY the research context provided. Base your interpretation on scientific evidence and cite sources explicitly.

%s

DREAM DESCRIPTION:
%s

RESEARCH CONTEXT:
%s

INSTRUCTIONS:
1. Analyze the dream symbols and themes present in the dream
2. Reference specific research findings from the context
3. Provide an evidence-based interpretation citing sources
4. Assess confidence level (High: 80-100%%, Medium: 50-79%%, Low: 20-49%%)
5. Offer 2-3 alternative interpretations if applicable
6. Explain your reasoning process

REQUIRED OUTPUT FORMAT:

PRIMARY INTERPRETATION:
[Provide main interpretation in 2-3 sentences]

CONFIDENCE LEVEL:
[High/Medium/Low] - [Percentage]%%

SCIENTIFIC EVIDENCE:
[Cite specific research and findings from the provided context]

REASONING:
[Explain why this interpretation is most likely based on the research]

ALTERNATIVE INTERPRETATIONS:
1. [Alternative interpretation 1]
2. [Alternative interpretation 2]
3. [Alternative interpretation 3]

SOURCES CITED:
[List sources from context that supported your interpretation]

Remember: Only use information from the research context provided. Do not make up sources or cite research not present in the context.`,
		userContextBlock(uc), dreamText, researchContext)
}

func followupPrompt(dreamText, previousContext, question, researchContext string) string {
	return fmt.Sprintf(`You previously analyzed this dream:

DREAM: %s

PREVIOUS INTERPRETATION CONTEXT:
%s

The user has a follow-up question:
QUESTION: %s

ADDITIONAL RESEARCH CONTEXT:
%s

Please answer the follow-up question based on the research context provided. Be specific and cite sources.`,
		dreamText, previousContext, question, researchContext)
}
