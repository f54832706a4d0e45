package textfilter

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize lowercases s and collapses runs of whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Title formats a phrase in English title case, e.g. "convenience store"
// becomes "Convenience Store".
func Title(s string) string {
	return cases.Title(language.English).String(Normalize(s))
}

// Match finds the candidate that input most likely names. An exact
// case-insensitive match wins, then a unique prefix, then the closest
// candidate within a typo limit scaled by its length. Ambiguous prefixes
// do not match.
func Match(input string, candidates []string) (string, bool) {
	in := Normalize(input)
	if in == "" {
		return "", false
	}

	for _, c := range candidates {
		if Normalize(c) == in {
			return c, true
		}
	}

	var prefixed []string
	for _, c := range candidates {
		if strings.HasPrefix(Normalize(c), in) {
			prefixed = append(prefixed, c)
		}
	}
	switch len(prefixed) {
	case 1:
		return prefixed[0], true
	case 0:
	default:
		return "", false
	}

	if len(in) < 3 {
		return "", false
	}
	best, bestDist := "", -1
	for _, c := range candidates {
		norm := Normalize(c)
		dist := levenshtein.ComputeDistance(in, norm)
		if dist > typoLimit(len(norm)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best, bestDist >= 0
}

func typoLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
