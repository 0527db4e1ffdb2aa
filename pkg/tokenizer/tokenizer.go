package tokenizer

import "strings"

// CountTokens gives a rough token estimate used for context budgeting.
// Good enough for bounding prompt size; not for billing.
func CountTokens(text string) int {
	words := strings.Fields(text)
	return max(len(words)*4/3, 1)
}
