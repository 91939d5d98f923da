package generation

import (
	"fmt"
	"strings"

	"github.com/one-million-why/why-engine/pkg/tone"
	"github.com/one-million-why/why-engine/pkg/types"
)

// answerSystemPrompt is the fixed persona for answer generation.
const answerSystemPrompt = `You are an expert educator who provides engaging, accurate answers to "Why" questions.

CORE PRINCIPLES:
1. Provide scientifically accurate, well-researched answers
2. Make complex topics accessible and engaging
3. Include credible sources when possible
4. Adapt tone based on wildcard instructions
5. Return ONLY valid JSON in the specified format

RESPONSE FORMAT:
{
  "answer": "Comprehensive, engaging answer to the question",
  "sources": ["Source 1", "Source 2", "Source 3"],
  "confidence_score": 1-100
}

Focus on causality, underlying mechanisms, and fascinating details that spark further curiosity.`

// buildQuestionPrompt assembles the user prompt for one generation attempt:
// the why-only constraint block, the input, the archetype angle, the tone
// instruction, and optional user context.
func buildQuestionPrompt(catalog *tone.Catalog, input string, v types.ToneVariant, archetype types.Archetype, uc *types.UserContext) string {
	angle := strings.ReplaceAll(archetype.PromptTemplate, "{input}", input)
	prompt := fmt.Sprintf("%s\n\nInput to transform: %q\n\nArchetype: %s", tone.WhyConstraintPrompt, input, angle)
	prompt = catalog.ApplyToPrompt(prompt, v)
	return catalog.InjectUserContext(prompt, uc)
}

// buildAnswerPrompt assembles the user prompt for answer generation.
func buildAnswerPrompt(question string, v types.ToneVariant) string {
	return fmt.Sprintf(`Question to answer: %q

TONE MODIFIER: %s

Provide a comprehensive answer that explains the underlying "why" with fascinating details and scientific accuracy.`, question, v.Instruction)
}
