package schema

// NameCount pairs a name with the number of defects it covers.
type NameCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// AuthorStats aggregates one author's defects across kinds. Kinds are
// sorted by name and the sum of their counts equals Total.
type AuthorStats struct {
	Author string      `json:"author" yaml:"author"`
	Total  int         `json:"total" yaml:"total"`
	Share  float64     `json:"share" yaml:"share"` // Percent of all records, rounded to run precision
	Kinds  []NameCount `json:"kinds" yaml:"kinds"`
}

// Summary is the aggregate report for one attribution run. Authors, Analyzers
// and Kinds are sorted by name so serialized reports are reproducible.
type Summary struct {
	Version      string        `json:"version" yaml:"version"`
	Timestamp    string        `json:"timestamp" yaml:"timestamp"` // ISO-8601, truncated to seconds
	Args         []string      `json:"args" yaml:"args"`
	Total        int           `json:"total" yaml:"total"`
	Attributed   int           `json:"attributed" yaml:"attributed"`
	Unattributed int           `json:"unattributed" yaml:"unattributed"`
	Authors      []AuthorStats `json:"authors" yaml:"authors"`
	Analyzers    []NameCount   `json:"analyzers" yaml:"analyzers"`
	Kinds        []NameCount   `json:"kinds" yaml:"kinds"`
}
