package imageproc

import (
	"context"
	"math/rand"
)

// StubExtractor is the built-in vision backend. It returns canned content
// and exists so the engine runs end to end without a vision service; wire a
// real Extractor for production deployments.
type StubExtractor struct {
	rng *rand.Rand
}

// NewStubExtractor returns a stub using the shared math/rand source.
func NewStubExtractor() *StubExtractor {
	return &StubExtractor{}
}

// NewStubExtractorWithRand returns a deterministic stub for tests.
func NewStubExtractorWithRand(rng *rand.Rand) *StubExtractor {
	return &StubExtractor{rng: rng}
}

func (s *StubExtractor) intn(n int) int {
	if s.rng != nil {
		return s.rng.Intn(n)
	}
	return rand.Intn(n)
}

var stubTexts = []string{
	"The quick brown fox jumps over the lazy dog",
	"Welcome to our restaurant - Today's special: Fish and Chips",
	"Speed limit 25 mph",
	"No parking between 8am-6pm",
	"Fresh organic vegetables for sale",
	"Meeting room A - Conference at 2pm",
}

var stubDescriptions = []string{
	"A beautiful sunset over a mountain landscape with orange and pink clouds",
	"A busy city street with cars, pedestrians, and tall buildings",
	"A close-up photo of a cat sitting on a windowsill looking outside",
	"A plate of delicious food with colorful vegetables and garnishes",
	"A group of friends laughing and having fun at a party",
	"A peaceful forest scene with tall trees and dappled sunlight",
	"A modern office space with computers, desks, and office supplies",
	"A child playing with toys in a bright, colorful playroom",
}

func (s *StubExtractor) ExtractText(_ context.Context, _ string) (string, error) {
	return stubTexts[s.intn(len(stubTexts))], nil
}

func (s *StubExtractor) Describe(_ context.Context, _ string) (string, error) {
	return stubDescriptions[s.intn(len(stubDescriptions))], nil
}
