package tone

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/one-million-why/why-engine/pkg/types"
)

func TestCatalogHasFiveVariants(t *testing.T) {
	c := NewCatalog()
	assert.Equal(t, 5, c.Len())

	names := make(map[string]bool)
	for _, v := range c.All() {
		names[v.Name] = true
		assert.NotEmpty(t, v.Instruction)
		assert.NotEmpty(t, v.Description)
	}
	for _, want := range []string{"funny", "scientific", "poetic", "childlike", "philosophical"} {
		assert.True(t, names[want], "missing variant %q", want)
	}
}

func TestByNameIsIdempotent(t *testing.T) {
	c := NewCatalog()

	first := c.ByName("scientific")
	second := c.ByName("scientific")
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.Instruction, second.Instruction)
}

func TestByNameIsCaseInsensitive(t *testing.T) {
	c := NewCatalog()
	assert.Equal(t, "funny", c.ByName("FUNNY").Name)
	assert.Equal(t, "poetic", c.ByName("Poetic").Name)
}

func TestByNameUnknownFallsBackToRandom(t *testing.T) {
	c := NewCatalogWithRand(rand.New(rand.NewSource(7)))

	v := c.ByName("sarcastic")
	require.NotEmpty(t, v.Name)
	assert.True(t, c.IsKnown(v.Name), "fallback must be a catalog tone")
}

func TestRandomIsDeterministicWithSeededSource(t *testing.T) {
	a := NewCatalogWithRand(rand.New(rand.NewSource(1)))
	b := NewCatalogWithRand(rand.New(rand.NewSource(1)))

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Random().Name, b.Random().Name)
	}
}

func TestRandomArchetypeHasPlaceholder(t *testing.T) {
	c := NewCatalogWithRand(rand.New(rand.NewSource(3)))
	for i := 0; i < 20; i++ {
		a := c.RandomArchetype()
		assert.Contains(t, a.PromptTemplate, "{input}")
		assert.True(t, types.IsValidCategory(string(a.Category)))
		assert.LessOrEqual(t, a.ComplexityRange[0], a.ComplexityRange[1])
	}
}

func TestApplyToPromptAppendsToneBlock(t *testing.T) {
	c := NewCatalog()
	v := c.ByName("funny")

	got := c.ApplyToPrompt("base prompt", v)
	assert.True(t, strings.HasPrefix(got, "base prompt"))
	assert.Contains(t, got, "TONE MODIFIER: "+v.Instruction)
	assert.Contains(t, got, `Maintain the "Why" constraint`)
}

func TestInjectUserContext(t *testing.T) {
	c := NewCatalog()

	t.Run("nil context leaves prompt unchanged", func(t *testing.T) {
		assert.Equal(t, "p", c.InjectUserContext("p", nil))
	})

	t.Run("child age band", func(t *testing.T) {
		got := c.InjectUserContext("p", &types.UserContext{Age: 8})
		assert.Contains(t, got, "simple language appropriate for children")
	})

	t.Run("senior age band", func(t *testing.T) {
		got := c.InjectUserContext("p", &types.UserContext{Age: 70})
		assert.Contains(t, got, "life experience context")
	})

	t.Run("adult age verbatim", func(t *testing.T) {
		got := c.InjectUserContext("p", &types.UserContext{Age: 34})
		assert.Contains(t, got, "User is 34 years old")
	})

	t.Run("interests", func(t *testing.T) {
		got := c.InjectUserContext("p", &types.UserContext{Interests: []string{"space", "music"}})
		assert.Contains(t, got, "User interests: space, music")
	})
}

func TestCompatible(t *testing.T) {
	c := NewCatalog()

	childlike := c.ByName("childlike")
	funny := c.ByName("funny")
	scientific := c.ByName("scientific")

	assert.False(t, c.Compatible(childlike, string(types.CategoryPhilosophical)))
	assert.False(t, c.Compatible(funny, string(types.CategoryPhilosophical)))
	assert.True(t, c.Compatible(childlike, string(types.CategoryBiological)))
	assert.True(t, c.Compatible(scientific, string(types.CategoryPhilosophical)))
}

func TestByComplexityRange(t *testing.T) {
	c := NewCatalog()

	all := c.ByComplexityRange(1, 10)
	assert.Len(t, all, c.Len())

	for _, v := range c.ByComplexityRange(9, 10) {
		band, ok := complexityBands[v.Name]
		if ok {
			assert.GreaterOrEqual(t, band[1], 9)
		}
	}
}
