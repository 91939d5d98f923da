package cache

import (
	"time"

	"github.com/one-million-why/why-engine/pkg/tone"
	"github.com/one-million-why/why-engine/pkg/types"
)

type seedPair struct {
	question types.CachedQuestion
	answer   *types.CachedAnswer
}

// popularSeeds are pre-authored Q&A pairs loaded at construction so the
// offline path always has something to serve.
var popularSeeds = buildPopularSeeds()

func buildPopularSeeds() []seedPair {
	tones := tone.NewCatalog().All()
	now := time.Now()

	questions := []types.CachedQuestion{
		{
			ID:              "offline-1",
			Question:        "Why do cats purr when they're content?",
			Category:        string(types.CategoryBiological),
			ComplexityScore: 6,
			ToneApplied:     tones[0],
			CachedAt:        now,
		},
		{
			ID:              "offline-2",
			Question:        "Why do humans find certain sounds soothing?",
			Category:        string(types.CategoryPsychological),
			ComplexityScore: 7,
			ToneApplied:     tones[1],
			CachedAt:        now,
		},
		{
			ID:              "offline-3",
			Question:        "Why do plants grow towards light?",
			Category:        string(types.CategoryBiological),
			ComplexityScore: 5,
			ToneApplied:     tones[2],
			CachedAt:        now,
		},
		{
			ID:              "offline-4",
			Question:        "Why do stars shine in the night sky?",
			Category:        string(types.CategoryPhysical),
			ComplexityScore: 8,
			ToneApplied:     tones[3],
			CachedAt:        now,
		},
		{
			ID:              "offline-5",
			Question:        "Why do people laugh when they're happy?",
			Category:        string(types.CategoryPsychological),
			ComplexityScore: 6,
			ToneApplied:     tones[4],
			CachedAt:        now,
		},
	}

	answers := map[string]types.CachedAnswer{
		"offline-1": {
			ID:         "answer-1",
			QuestionID: "offline-1",
			Answer: "Cats purr through a fascinating mechanism involving their laryngeal muscles and neural oscillators. " +
				"When content, their brain sends rapid signals to throat muscles, creating vibrations at 20-50 Hz. " +
				"These vibrations don't just communicate happiness - they actually promote bone healing and reduce pain, " +
				"which is why cats purr when injured too!",
			Sources:     []string{"Feline Biology Research", "Veterinary Science Journal"},
			ToneApplied: tones[0],
			CachedAt:    now,
		},
		"offline-2": {
			ID:         "answer-2",
			QuestionID: "offline-2",
			Answer: "Humans find certain sounds soothing due to evolutionary wiring and neurochemistry. " +
				"Our brains respond positively to sounds that historically indicated safety - gentle water, soft wind, " +
				"rhythmic patterns like a heartbeat. The auditory cortex processes these sounds and triggers serotonin " +
				"and dopamine release while reducing cortisol, creating physiological relaxation.",
			Sources:     []string{"Neuroscience Research", "Evolutionary Psychology"},
			ToneApplied: tones[1],
			CachedAt:    now,
		},
		"offline-3": {
			ID:         "answer-3",
			QuestionID: "offline-3",
			Answer: "Plants grow towards light through phototropism, a response controlled by auxin hormones. " +
				"When light hits one side of a plant, auxin concentrates on the shadowed side, causing those cells to " +
				"elongate faster. This creates the bending motion toward light. It's nature's way of ensuring plants " +
				"maximize their energy capture for survival!",
			Sources:     []string{"Plant Biology Textbook", "Botanical Research"},
			ToneApplied: tones[2],
			CachedAt:    now,
		},
	}

	pairs := make([]seedPair, 0, len(questions))
	for _, q := range questions {
		p := seedPair{question: q}
		if a, ok := answers[q.ID]; ok {
			answer := a
			p.answer = &answer
		}
		pairs = append(pairs, p)
	}
	return pairs
}
