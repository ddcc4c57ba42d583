// internal/knowledge/models.go
// Package knowledge retrieves grounding facts for prompt assembly from the
// configured static knowledge stores.
package knowledge

import "context"

// Snippet is one retrieved fact. Snippets are consumed once by prompt
// assembly and discarded after the turn.
type Snippet struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// Retriever performs a fresh lookup per call. Implementations must degrade
// to an empty result rather than fail the calling flow.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]Snippet, error)
}
