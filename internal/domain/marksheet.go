package domain

// MarksheetTypeDescriptor is the static display metadata for a marksheet type.
type MarksheetTypeDescriptor struct {
	ID          MarksheetType
	Name        string
	Description string
	Color       string
	Icon        string
}

var catalog = []MarksheetTypeDescriptor{
	{
		ID:          MarksheetTenth,
		Name:        "10th Grade",
		Description: "Secondary school (SSLC) marksheet",
		Color:       "#83a598",
		Icon:        "📘",
	},
	{
		ID:          MarksheetTwelfth,
		Name:        "12th Grade",
		Description: "Higher secondary (HSC) marksheet",
		Color:       "#8ec07c",
		Icon:        "📗",
	},
	{
		ID:          MarksheetSemester,
		Name:        "Semester",
		Description: "University semester grade sheet",
		Color:       "#d3869b",
		Icon:        "🎓",
	},
}

// Catalog returns the marksheet type descriptors in display order.
// The returned slice is a copy; callers may not mutate the catalog.
func Catalog() []MarksheetTypeDescriptor {
	out := make([]MarksheetTypeDescriptor, len(catalog))
	copy(out, catalog)
	return out
}

// Describe returns the descriptor for t.
func Describe(t MarksheetType) (MarksheetTypeDescriptor, bool) {
	for _, d := range catalog {
		if d.ID == t {
			return d, true
		}
	}
	return MarksheetTypeDescriptor{}, false
}
