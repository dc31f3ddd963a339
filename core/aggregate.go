package core

import (
	"io"
	"sort"
	"time"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
)

// Aggregate drains a correlation into per-author defect statistics. The
// result is deterministic for identical inputs: authors, kinds and
// analyzers come out name-sorted and shares are rounded to the run
// precision.
func Aggregate(correlation *Correlation, cfg *contract.Config) (*schema.Summary, error) {
	authorKinds := map[string]map[string]int{}
	analyzerCounts := map[string]int{}
	kindCounts := map[string]int{}
	total := 0

	for {
		rec, err := correlation.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		total++
		kinds, ok := authorKinds[rec.Author]
		if !ok {
			kinds = map[string]int{}
			authorKinds[rec.Author] = kinds
		}
		kinds[rec.Kind]++
		analyzerCounts[rec.Analyzer]++
		kindCounts[rec.Kind]++
	}

	unattributed := 0
	for _, count := range authorKinds[schema.Unattributed] {
		unattributed += count
	}

	return &schema.Summary{
		Version:      cfg.Version,
		Timestamp:    time.Now().Truncate(time.Second).Format(contract.DateTimeFormat),
		Args:         cfg.Args,
		Total:        total,
		Attributed:   total - unattributed,
		Unattributed: unattributed,
		Authors:      buildAuthorStats(authorKinds, total, cfg.Precision),
		Analyzers:    sortedNameCounts(analyzerCounts),
		Kinds:        sortedNameCounts(kindCounts),
	}, nil
}

// buildAuthorStats flattens per-author kind counts into name-sorted
// author entries with rounded shares of the total.
func buildAuthorStats(authorKinds map[string]map[string]int, total, precision int) []schema.AuthorStats {
	stats := make([]schema.AuthorStats, 0, len(authorKinds))
	for author, kinds := range authorKinds {
		entry := schema.AuthorStats{Author: author, Kinds: sortedNameCounts(kinds)}
		for _, kind := range entry.Kinds {
			entry.Total += kind.Count
		}
		entry.Share = schema.RoundTo(schema.Percent(entry.Total, total), precision)
		stats = append(stats, entry)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Author < stats[j].Author })
	return stats
}

// sortedNameCounts converts a count map into a name-sorted slice.
func sortedNameCounts(counts map[string]int) []schema.NameCount {
	out := make([]schema.NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, schema.NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
