package tone

import "github.com/one-million-why/why-engine/pkg/types"

// SystemPrompt is the fixed persona for question generation.
const SystemPrompt = `You are a Socratic Polymath, an expert at transforming any input into profound "Why" questions that spark curiosity and learning.

CORE CONSTRAINTS:
1. ONLY generate "Why" questions - never "How", "What", "When", or "Where"
2. Focus on underlying causality and deeper meaning
3. Avoid obvious or trivial questions
4. Questions must be scientifically grounded but accessible
5. Return ONLY valid JSON in the specified format

RESPONSE FORMAT:
{
  "question": "Why does [phenomenon] occur?",
  "complexity_score": 1-10,
  "category": "biological|physical|psychological|social|philosophical",
  "hook_line": "A compelling one-liner that makes the question irresistible"
}

If the input cannot generate a meaningful "Why" question, pivot to explore the deeper principles behind the concept.`

// WhyConstraintPrompt is appended to every question generation prompt.
const WhyConstraintPrompt = `
CRITICAL: The question MUST start with "Why" and focus on causality.
Reject inputs that cannot lead to meaningful causal questions.
If input is inappropriate, respond with a pivot to related causal principles.
`

// variants is the closed set of tone variants. Never mutated at runtime.
var variants = []types.ToneVariant{
	{
		Name:        "funny",
		Instruction: "Use humor similar to Douglas Adams - witty, absurd, but scientifically accurate",
		Description: "Entertaining and humorous approach with clever wordplay",
	},
	{
		Name:        "scientific",
		Instruction: "Focus on quantum mechanics, biology, or physics with academic rigor",
		Description: "Technical and precise with scientific terminology",
	},
	{
		Name:        "poetic",
		Instruction: "Frame causality in terms of human emotion and cosmic scale",
		Description: "Lyrical and metaphorical with emotional resonance",
	},
	{
		Name:        "childlike",
		Instruction: "Use simple language with boundless curiosity and wonder",
		Description: "Simple, wonder-filled questions that spark imagination",
	},
	{
		Name:        "philosophical",
		Instruction: "Deep existential questioning about meaning and purpose",
		Description: "Profound questions about existence and meaning",
	},
}

// archetypes bias which kind of "why" is asked. The {input} placeholder is
// substituted with the caller's input.
var archetypes = []types.Archetype{
	{
		Name:            "The Biological Why",
		PromptTemplate:  "Focus on evolutionary, biological, or physiological causality behind {input}",
		Category:        types.CategoryBiological,
		ComplexityRange: [2]int{3, 8},
	},
	{
		Name:            "The Physical Why",
		PromptTemplate:  "Explore the physics, chemistry, or mechanical principles that cause {input}",
		Category:        types.CategoryPhysical,
		ComplexityRange: [2]int{4, 9},
	},
	{
		Name:            "The Psychological Why",
		PromptTemplate:  "Investigate the cognitive, emotional, or behavioral reasons behind {input}",
		Category:        types.CategoryPsychological,
		ComplexityRange: [2]int{2, 7},
	},
	{
		Name:            "The Social Why",
		PromptTemplate:  "Examine the cultural, societal, or interpersonal forces that create {input}",
		Category:        types.CategorySocial,
		ComplexityRange: [2]int{3, 8},
	},
	{
		Name:            "The Philosophical Why",
		PromptTemplate:  "Question the fundamental nature, purpose, or meaning of {input}",
		Category:        types.CategoryPhilosophical,
		ComplexityRange: [2]int{5, 10},
	},
}

// complexityBands maps each tone to the complexity range it works best in.
var complexityBands = map[string][2]int{
	"childlike":     {1, 5},
	"funny":         {2, 7},
	"scientific":    {5, 10},
	"poetic":        {3, 8},
	"philosophical": {6, 10},
}

// incompatiblePairs lists tone/category combinations flagged as a poor fit.
// Advisory only: the generation pipeline never enforces it.
var incompatiblePairs = map[string]string{
	"childlike": string(types.CategoryPhilosophical),
	"funny":     string(types.CategoryPhilosophical),
}
