// Package tokenizer provides client-side token counting for prompt
// budget accounting. Counts are estimates; providers bill on their own
// tokenization.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/webtrailhq/webtrail/pkg/types"
)

// defaultEncoding covers the GPT-4 family and is a close approximation
// for other chat models.
const defaultEncoding = "cl100k_base"

// Tokenizer counts tokens using a tiktoken encoding.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// New creates a tokenizer with the default encoding. Initialization
// downloads or loads the BPE ranks; callers may treat failure as
// non-fatal and skip token accounting.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(defaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %s: %w", defaultEncoding, err)
	}
	return &Tokenizer{encoding: enc}, nil
}

// CountTokens returns the token count for a single text.
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

// CountMessages returns the total token count across a message list,
// with a small per-message overhead for role framing.
func (t *Tokenizer) CountMessages(messages []*types.Message) int {
	const perMessageOverhead = 4

	total := 0
	for _, msg := range messages {
		total += t.CountTokens(msg.Content) + perMessageOverhead
	}
	return total
}
