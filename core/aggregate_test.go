package core

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aggregateConfig() *contract.Config {
	return &contract.Config{
		Precision: 1,
		Version:   "1.2.3",
		Args:      []string{"attribute", "--pylint", "report.txt"},
	}
}

func TestAggregateCounts(t *testing.T) {
	defects := []DefectInput{
		{Source: &fakeDefectSource{name: "pylint:d.txt", recs: []schema.DefectRecord{
			defectRec("pylint", "src/a.py", 1, "unused-variable"),
			defectRec("pylint", "src/a.py", 2, "unused-variable"),
			defectRec("pylint", "src/a.py", 3, "no-member"),
			defectRec("flake8", "src/b.py", 9, "E501"),
		}}},
	}
	index := gitIndex(t,
		blameRec("git", "src/a.py", 1, "alice", "r1"),
		blameRec("git", "src/a.py", 2, "alice", "r2"),
		blameRec("git", "src/a.py", 3, "bob", "r3"),
	)

	summary, err := Aggregate(Correlate(defects, []*BlameIndex{index}), aggregateConfig())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 3, summary.Attributed)
	assert.Equal(t, 1, summary.Unattributed)
	assert.Equal(t, "1.2.3", summary.Version)
	assert.Equal(t, []string{"attribute", "--pylint", "report.txt"}, summary.Args)

	require.Len(t, summary.Authors, 3)
	assert.Equal(t, "alice", summary.Authors[0].Author)
	assert.Equal(t, "bob", summary.Authors[1].Author)
	assert.Equal(t, schema.Unattributed, summary.Authors[2].Author)

	alice := summary.Authors[0]
	assert.Equal(t, 2, alice.Total)
	assert.InDelta(t, 50.0, alice.Share, 0.001)
	require.Len(t, alice.Kinds, 1)
	assert.Equal(t, schema.NameCount{Name: "unused-variable", Count: 2}, alice.Kinds[0])

	assert.Equal(t, []schema.NameCount{
		{Name: "flake8", Count: 1},
		{Name: "pylint", Count: 3},
	}, summary.Analyzers)
	assert.Equal(t, []schema.NameCount{
		{Name: "E501", Count: 1},
		{Name: "no-member", Count: 1},
		{Name: "unused-variable", Count: 2},
	}, summary.Kinds)
}

func TestAggregateInvariants(t *testing.T) {
	defects := []DefectInput{
		{Source: &fakeDefectSource{name: "pylint:d.txt", recs: []schema.DefectRecord{
			defectRec("pylint", "a.py", 1, "k1"),
			defectRec("pylint", "a.py", 2, "k2"),
			defectRec("pylint", "b.py", 3, "k1"),
			defectRec("pylint", "c.py", 4, "k3"),
			defectRec("pylint", "c.py", 5, "k3"),
		}}},
	}
	index := gitIndex(t,
		blameRec("git", "a.py", 1, "alice", "r1"),
		blameRec("git", "a.py", 2, "bob", "r2"),
		blameRec("git", "b.py", 3, "alice", "r3"),
	)

	summary, err := Aggregate(Correlate(defects, []*BlameIndex{index}), aggregateConfig())
	require.NoError(t, err)

	// author totals equal the sum of their kind counts
	authorSum := 0
	for _, author := range summary.Authors {
		kindSum := 0
		for _, kind := range author.Kinds {
			kindSum += kind.Count
		}
		assert.Equal(t, author.Total, kindSum, "author %s", author.Author)
		authorSum += author.Total
	}

	// author totals sum to the record count
	assert.Equal(t, summary.Total, authorSum)
	assert.Equal(t, summary.Total, summary.Attributed+summary.Unattributed)

	// output ordering is deterministic by name
	assert.True(t, sort.SliceIsSorted(summary.Authors, func(i, j int) bool {
		return summary.Authors[i].Author < summary.Authors[j].Author
	}))
}

func TestAggregateShareRounding(t *testing.T) {
	// 1 of 3 records is 33.333..%
	defects := []DefectInput{
		{Source: &fakeDefectSource{name: "pylint:d.txt", recs: []schema.DefectRecord{
			defectRec("pylint", "a.py", 1, "k1"),
			defectRec("pylint", "a.py", 2, "k1"),
			defectRec("pylint", "b.py", 1, "k1"),
		}}},
	}
	index := gitIndex(t,
		blameRec("git", "a.py", 1, "alice", "r1"),
		blameRec("git", "a.py", 2, "alice", "r2"),
		blameRec("git", "b.py", 1, "bob", "r3"),
	)

	cfg := aggregateConfig()
	cfg.Precision = 2
	summary, err := Aggregate(Correlate(defects, []*BlameIndex{index}), cfg)
	require.NoError(t, err)

	require.Len(t, summary.Authors, 2)
	assert.InDelta(t, 66.67, summary.Authors[0].Share, 0.0001)
	assert.InDelta(t, 33.33, summary.Authors[1].Share, 0.0001)
}

func TestAggregateEmptyStream(t *testing.T) {
	summary, err := Aggregate(Correlate(nil, nil), aggregateConfig())
	require.NoError(t, err)

	assert.Zero(t, summary.Total)
	assert.Zero(t, summary.Attributed)
	assert.Zero(t, summary.Unattributed)
	assert.Empty(t, summary.Authors)
	assert.Empty(t, summary.Analyzers)
	assert.Empty(t, summary.Kinds)
}

func TestAggregateTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	summary, err := Aggregate(Correlate(nil, nil), aggregateConfig())
	require.NoError(t, err)

	ts, err := time.Parse(contract.DateTimeFormat, summary.Timestamp)
	require.NoError(t, err)
	assert.False(t, ts.Before(before.Truncate(time.Second)))
	assert.Zero(t, ts.Nanosecond())
}

func TestAggregateForwardsErrors(t *testing.T) {
	readErr := errors.New("boom")
	defects := []DefectInput{
		{Source: &fakeDefectSource{name: "pylint:d.txt", err: readErr}},
	}
	_, err := Aggregate(Correlate(defects, nil), aggregateConfig())
	assert.ErrorIs(t, err, readErr)
}
