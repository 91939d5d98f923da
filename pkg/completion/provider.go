package completion

import "context"

// Provider issues a single chat completion against a model endpoint.
// Implementations return the raw assistant text; failed calls return a
// *ProviderError so the client can classify them for retry.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

func (f ProviderFunc) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}
