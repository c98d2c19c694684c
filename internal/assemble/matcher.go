package assemble

import (
	"strings"
	"unicode"
)

// Match tiers. Exact identity outranks containment, containment
// outranks word overlap, and fuzzy edit distance is the last resort.
const (
	scoreExact       = 1.0
	scoreQueryInName = 0.9
	scoreNameInQuery = 0.85
	scoreAllWords    = 0.8
	scoreInitials    = 0.75
	scoreFuzzy       = 0.6
)

// MatchScore rates how well a candidate name answers a query, in
// [0, 1]. Zero means no layer matched at all.
func MatchScore(query, name string) float64 {
	q := foldMatch(query)
	n := foldMatch(name)
	if q == "" || n == "" {
		return 0
	}
	if q == n {
		return scoreExact
	}
	if strings.Contains(n, q) {
		return scoreQueryInName
	}
	if strings.Contains(q, n) {
		return scoreNameInQuery
	}

	qWords := strings.Fields(q)
	nWords := strings.Fields(n)
	if overlap := wordOverlap(qWords, nWords); overlap > 0 {
		if overlap == len(qWords) {
			return scoreAllWords
		}
		if float64(overlap)/float64(len(qWords)) >= 0.5 {
			return scoreAllWords * float64(overlap) / float64(len(qWords))
		}
	}

	if initials(nWords) == strings.ReplaceAll(q, " ", "") && len(nWords) > 1 {
		return scoreInitials
	}

	// Typo tolerance: small edits relative to the name's length.
	if d := levenshtein(q, n); d <= 2 && d*3 <= len(n) {
		return scoreFuzzy * (1.0 - float64(d)/float64(len(n)+1))
	}
	return 0
}

// BestScore is MatchScore over a name and its aliases.
func BestScore(query, name string, aliases []string) float64 {
	best := MatchScore(query, name)
	for _, alias := range aliases {
		if s := MatchScore(query, alias); s > best {
			best = s
		}
	}
	return best
}

// foldMatch lowercases and strips punctuation so "openclaw/openclaw"
// and "OpenClaw" can meet in the middle.
func foldMatch(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// wordOverlap counts query words present in the name, counting a
// prefix of length >= 3 as a hit.
func wordOverlap(qWords, nWords []string) int {
	hits := 0
	for _, qw := range qWords {
		for _, nw := range nWords {
			if qw == nw ||
				(len(qw) >= 3 && strings.HasPrefix(nw, qw)) ||
				(len(nw) >= 3 && strings.HasPrefix(qw, nw)) {
				hits++
				break
			}
		}
	}
	return hits
}

func initials(words []string) string {
	var b strings.Builder
	for _, w := range words {
		if w != "" {
			b.WriteByte(w[0])
		}
	}
	return b.String()
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
