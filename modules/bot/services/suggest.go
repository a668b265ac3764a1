package services

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/iota-uz/payroll-bot/modules/bot/presentation"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
)

// didYouMean suggests the closest menu label or reachable employee for t.text.
func (c *Controller) didYouMean(ctx context.Context, t *turn) string {
	candidates := presentation.Flatten(c.mainMenu(ctx, t.who))
	employees, err := c.scopedEmployees(ctx, t.who)
	if err != nil {
		c.logger.WithError(err).Warn("list employees for suggestions")
	}
	for _, e := range employees {
		candidates = append(candidates, e.Label())
	}
	best := closest(employee.NormalizeName(t.text), candidates)
	if best == "" {
		return ""
	}
	return c.texts.TD("Errors.DidYouMean", map[string]any{"Suggestion": best})
}

// closest prefers targets that contain the query as a subsequence and falls back to
// the smallest edit distance within a third of the query length.
func closest(query string, targets []string) string {
	if utf8.RuneCountInString(query) < 2 || len(targets) == 0 {
		return ""
	}
	if ranks := fuzzy.RankFindNormalizedFold(query, targets); len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	lowered := strings.ToLower(query)
	maxDistance := max(2, utf8.RuneCountInString(query)/3)
	best, bestDistance := "", maxDistance+1
	for _, target := range targets {
		d := fuzzy.LevenshteinDistance(lowered, strings.ToLower(employee.NormalizeName(target)))
		if d < bestDistance {
			best, bestDistance = target, d
		}
	}
	return best
}
