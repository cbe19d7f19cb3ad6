package reconcile

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// defaultMinScore is the minimum similarity, in percent, of an edit-distance suggestion
const defaultMinScore = 60

// closestTitle returns the server title most likely meaning title, or "" when
// nothing is close. Titles containing each other's characters in order win
// over plain edit distance.
func closestTitle(title string, candidates []string, minScore int) string {
	title = strings.TrimSpace(title)
	if title == "" || len(candidates) == 0 {
		return ""
	}

	// server title spelled out inside the external one, or the reverse
	var ranks fuzzy.Ranks
	for i, c := range candidates {
		if c == "" {
			continue
		}
		if fuzzy.MatchNormalizedFold(title, c) || fuzzy.MatchNormalizedFold(c, title) {
			ranks = append(ranks, fuzzy.Rank{
				Source:        title,
				Target:        c,
				Distance:      fuzzy.LevenshteinDistance(strings.ToLower(title), strings.ToLower(c)),
				OriginalIndex: i,
			})
		}
	}
	if len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target
	}

	best, bestScore := "", -1
	for _, c := range candidates {
		if score := similarity(title, c); score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore < minScore {
		return ""
	}
	return best
}

// similarity is 100 minus the edit distance as a percentage of the longer title
func similarity(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 0
	}
	return 100 - fuzzy.LevenshteinDistance(a, b)*100/longest
}
