package schema

// GetPlainLabel returns a plain text label indicating how heavily an author
// is loaded with defects, based on their share of all records.
func GetPlainLabel(share float64) string {
	switch {
	case share >= 50:
		return "Critical"
	case share >= 25:
		return "High"
	case share >= 10:
		return "Moderate"
	default:
		return "Low"
	}
}
