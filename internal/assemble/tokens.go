// Package assemble builds token-budgeted context bundles: given a
// query, it scores memory items for relevance, packs the best ones
// greedily under the budget, and writes an audit manifest saying
// exactly what went in and what was left out, and why.
package assemble

// EstimateTokens approximates the token cost of rendered text at four
// characters per token, never less than one. Deliberately crude; the
// budget contract only needs the estimate to be monotone and cheap.
func EstimateTokens(s string) int {
	n := len(s) / 4
	if n < 1 {
		n = 1
	}
	return n
}
