package adapters

import (
	"fmt"
	"strings"
)

// blameLineScenario describes one blamed line for test data generation.
type blameLineScenario struct {
	revision string
	lineno   int
	author   string
	file     string
	content  string
}

// generateTestPorcelain builds git blame --line-porcelain output from
// blame line scenarios.
func generateTestPorcelain(scenarios []blameLineScenario) string {
	var lines []string
	for _, scenario := range scenarios {
		lines = append(lines, fmt.Sprintf("%s %d %d 1", scenario.revision, scenario.lineno, scenario.lineno))
		lines = append(lines, "author "+scenario.author)
		lines = append(lines, fmt.Sprintf("author-mail <%s@example.com>", strings.ToLower(strings.ReplaceAll(scenario.author, " ", "."))))
		lines = append(lines, "author-time 1700000000")
		lines = append(lines, "author-tz +0000")
		lines = append(lines, "committer "+scenario.author)
		lines = append(lines, "committer-time 1700000000")
		lines = append(lines, "committer-tz +0000")
		lines = append(lines, "summary test commit")
		lines = append(lines, "filename "+scenario.file)
		lines = append(lines, "\t"+scenario.content)
	}
	return strings.Join(lines, "\n") + "\n"
}
