package services

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMatchThreshold is the minimum token-sort score for a match.
const DefaultMatchThreshold = 80.0

var ErrNoMatch = errors.New("no name matched")

var (
	nonWordPattern    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// NormalizeName lowercases, strips accents, turns punctuation into spaces
// and collapses whitespace: "Ja'Marr  Chase" -> "ja marr chase".
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	stripped = strings.ToLower(stripped)
	stripped = nonWordPattern.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(stripped, " "))
}

// TokenSortRatio sorts the whitespace tokens of both strings and returns
// their normalized Indel similarity on a 0..100 scale.
func TokenSortRatio(a, b string) float64 {
	return indelRatio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// indelRatio is 100 * (1 - indel distance / total length), where the indel
// distance counts insertions and deletions only.
func indelRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	return 100 * float64(2*lcsLength(ra, rb)) / float64(total)
}

func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// FuzzyNameSearcher resolves free-text queries against canonical names.
type FuzzyNameSearcher struct {
	normalized []string
	original   map[string]string
}

// NewFuzzyNameSearcher indexes names. Names that normalize identically keep
// the last spelling.
func NewFuzzyNameSearcher(names []string) *FuzzyNameSearcher {
	s := &FuzzyNameSearcher{original: make(map[string]string, len(names))}
	for _, name := range names {
		n := NormalizeName(name)
		if _, seen := s.original[n]; !seen {
			s.normalized = append(s.normalized, n)
		}
		s.original[n] = name
	}
	return s
}

// Len returns the number of distinct normalized names.
func (s *FuzzyNameSearcher) Len() int { return len(s.normalized) }

// BestMatch returns the best-scoring canonical name and its score. When the
// score is below threshold the name is empty; the earliest name wins ties.
func (s *FuzzyNameSearcher) BestMatch(query string, threshold float64) (string, float64) {
	if len(s.normalized) == 0 {
		return "", 0
	}
	q := NormalizeName(query)
	best, bestScore := "", -1.0
	for _, n := range s.normalized {
		if score := TokenSortRatio(q, n); score > bestScore {
			best, bestScore = n, score
			if score == 100 {
				break
			}
		}
	}
	if bestScore >= threshold {
		return s.original[best], bestScore
	}
	return "", bestScore
}
