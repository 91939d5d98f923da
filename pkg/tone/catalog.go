// Package tone holds the fixed catalog of tone variants ("wildcards") and
// question archetypes and applies them to generation prompts.
package tone

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/one-million-why/why-engine/pkg/observability/logging"
	"github.com/one-million-why/why-engine/pkg/types"
)

// Catalog selects and applies tone variants and archetypes.
type Catalog struct {
	rng *rand.Rand
}

// NewCatalog returns a catalog backed by the shared math/rand source.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// NewCatalogWithRand returns a catalog using a caller-supplied source, so
// selection can be made deterministic in tests.
func NewCatalogWithRand(rng *rand.Rand) *Catalog {
	return &Catalog{rng: rng}
}

func (c *Catalog) intn(n int) int {
	if c.rng != nil {
		return c.rng.Intn(n)
	}
	return rand.Intn(n)
}

// All returns a copy of the tone catalog in its fixed order.
func (c *Catalog) All() []types.ToneVariant {
	out := make([]types.ToneVariant, len(variants))
	copy(out, variants)
	return out
}

// Len reports the number of tone variants in the catalog.
func (c *Catalog) Len() int { return len(variants) }

// Random returns a uniformly selected tone variant.
func (c *Catalog) Random() types.ToneVariant {
	return variants[c.intn(len(variants))]
}

// ByName returns the named tone variant. Unknown names fall back to a random
// variant with a warning; ByName never fails.
func (c *Catalog) ByName(name string) types.ToneVariant {
	for _, v := range variants {
		if strings.EqualFold(v.Name, name) {
			return v
		}
	}
	logging.Warnf("tone %q not found, using random tone", name)
	return c.Random()
}

// IsKnown reports whether name matches a catalog tone.
func (c *Catalog) IsKnown(name string) bool {
	for _, v := range variants {
		if strings.EqualFold(v.Name, name) {
			return true
		}
	}
	return false
}

// RandomArchetype returns a uniformly selected question archetype.
func (c *Catalog) RandomArchetype() types.Archetype {
	return archetypes[c.intn(len(archetypes))]
}

// Archetypes returns a copy of the archetype list.
func (c *Catalog) Archetypes() []types.Archetype {
	out := make([]types.Archetype, len(archetypes))
	copy(out, archetypes)
	return out
}

// ApplyToPrompt appends the tone instruction block to a base prompt.
func (c *Catalog) ApplyToPrompt(basePrompt string, v types.ToneVariant) string {
	return basePrompt + fmt.Sprintf("\n\nTONE MODIFIER: %s\n\nMaintain the \"Why\" constraint while applying this tone.", v.Instruction)
}

// InjectUserContext appends age-banded phrasing guidance and interests.
// A nil context returns the prompt unchanged.
func (c *Catalog) InjectUserContext(prompt string, uc *types.UserContext) string {
	if uc == nil {
		return prompt
	}

	var b strings.Builder
	b.WriteString("\n\nUSER CONTEXT:\n")

	if uc.Age > 0 {
		switch {
		case uc.Age < 12:
			b.WriteString("- Use simple language appropriate for children\n")
		case uc.Age > 65:
			b.WriteString("- Use clear, respectful language with life experience context\n")
		default:
			fmt.Fprintf(&b, "- User is %d years old\n", uc.Age)
		}
	}

	if len(uc.Interests) > 0 {
		fmt.Fprintf(&b, "- User interests: %s\n", strings.Join(uc.Interests, ", "))
	}

	return prompt + b.String()
}

// Compatible reports whether a tone works well with a question category.
// Advisory only; the generation pipeline does not enforce it.
func (c *Catalog) Compatible(v types.ToneVariant, category string) bool {
	bad, ok := incompatiblePairs[v.Name]
	return !ok || bad != category
}

// ByComplexityRange returns the tones whose static complexity band overlaps
// [minComplexity, maxComplexity].
func (c *Catalog) ByComplexityRange(minComplexity, maxComplexity int) []types.ToneVariant {
	var out []types.ToneVariant
	for _, v := range variants {
		band, ok := complexityBands[v.Name]
		if !ok {
			band = [2]int{1, 10}
		}
		if band[0] <= maxComplexity && band[1] >= minComplexity {
			out = append(out, v)
		}
	}
	return out
}
