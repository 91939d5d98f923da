// Package types holds the wire-level data model shared by the generation
// pipelines, the offline cache, and the API surface.
package types

import "time"

// Category is the causal angle a question explores.
type Category string

const (
	CategoryBiological    Category = "biological"
	CategoryPhysical      Category = "physical"
	CategoryPsychological Category = "psychological"
	CategorySocial        Category = "social"
	CategoryPhilosophical Category = "philosophical"
)

// Categories lists every valid question category.
var Categories = []Category{
	CategoryBiological,
	CategoryPhysical,
	CategoryPsychological,
	CategorySocial,
	CategoryPhilosophical,
}

// IsValidCategory reports whether s names one of the five question categories.
func IsValidCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// ToneVariant is a named stylistic modifier ("wildcard") applied to
// generation prompts. The catalog of variants is fixed and immutable.
type ToneVariant struct {
	Name        string `json:"name" yaml:"name"`
	Instruction string `json:"tone" yaml:"tone"`
	Description string `json:"description" yaml:"description"`
}

// Archetype is a causal-angle template used to bias prompt phrasing.
// The template contains an {input} placeholder.
type Archetype struct {
	Name            string   `json:"name"`
	PromptTemplate  string   `json:"prompt_template"`
	Category        Category `json:"category"`
	ComplexityRange [2]int   `json:"complexity_range"`
}

// QuestionResult is a fully validated generated question.
type QuestionResult struct {
	Question        string      `json:"question"`
	ComplexityScore int         `json:"complexity_score"`
	Category        string      `json:"category"`
	HookLine        string      `json:"hook_line"`
	ToneApplied     ToneVariant `json:"wildcard_applied"`
	GeneratedAt     time.Time   `json:"generated_at"`
	UserID          string      `json:"user_id,omitempty"`
}

// AnswerResult is a generated answer to a "why" question.
type AnswerResult struct {
	Answer          string      `json:"answer"`
	Sources         []string    `json:"sources"`
	ConfidenceScore int         `json:"confidence_score"`
	ToneApplied     ToneVariant `json:"wildcard_applied"`
	GeneratedAt     time.Time   `json:"generated_at"`
	QuestionID      string      `json:"question_id,omitempty"`
}

// CachedQuestion is a QuestionResult held by the offline cache.
type CachedQuestion struct {
	ID              string      `json:"id"`
	Question        string      `json:"question"`
	Category        string      `json:"category"`
	ComplexityScore int         `json:"complexity_score"`
	ToneApplied     ToneVariant `json:"wildcard_applied"`
	CachedAt        time.Time   `json:"cached_at"`
}

// CachedAnswer is an AnswerResult held by the offline cache. QuestionID is a
// non-owning back-reference to the CachedQuestion it answers.
type CachedAnswer struct {
	ID          string      `json:"id"`
	QuestionID  string      `json:"question_id"`
	Answer      string      `json:"answer"`
	Sources     []string    `json:"sources"`
	ToneApplied ToneVariant `json:"wildcard_applied"`
	CachedAt    time.Time   `json:"cached_at"`
}

// UserContext carries optional caller hints used to adapt prompt phrasing.
type UserContext struct {
	Age       int      `json:"age,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

// ValidationOutcome is the result of one validation phase.
type ValidationOutcome struct {
	Valid           bool     `json:"is_valid"`
	ConfidenceScore int      `json:"confidence_score"`
	Issues          []string `json:"issues"`
}

// ImageMethod identifies how an image was turned into text.
type ImageMethod string

const (
	ImageMethodTextExtraction ImageMethod = "text_extraction"
	ImageMethodDescription    ImageMethod = "image_description"
)

// ImageResult is what the image processor produces for one image payload.
type ImageResult struct {
	ExtractedText   string      `json:"extracted_text,omitempty"`
	Description     string      `json:"description"`
	ConfidenceScore int         `json:"confidence_score"`
	Method          ImageMethod `json:"processing_method"`
	ProcessedAt     time.Time   `json:"processed_at"`
}

// InputType declares how the raw input of a generation request should be
// interpreted.
type InputType string

const (
	InputTypeText     InputType = "text"
	InputTypeImage    InputType = "image"
	InputTypeSentence InputType = "sentence"
)

// ClampScore clamps v into [lo, hi]. Complexity and confidence scores are
// always clamped before being surfaced.
func ClampScore(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
