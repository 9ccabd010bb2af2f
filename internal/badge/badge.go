// Package badge maps idea status values to display styles.
package badge

// Kind selects which lookup table a status belongs to.
type Kind string

const (
	Creative   Kind = "creative"
	Production Kind = "production"
)

// DefaultClass is used for any status the tables do not know.
const DefaultClass = "bg-gray-100 text-gray-800"

// Style is how a status badge is rendered.
type Style struct {
	Label string
	Class string
}

var classes = map[Kind]map[string]string{
	Creative: {
		"ideation":  "bg-gray-200 text-gray-800",
		"scripting": "bg-gray-300 text-gray-800",
		"editing":   "bg-gray-400 text-gray-800",
		"published": "bg-gray-700 text-white",
	},
	Production: {
		"not started":   "bg-gray-200 text-gray-800",
		"shoot pending": "bg-gray-300 text-gray-800",
		"shoot done":    "bg-gray-400 text-gray-800",
		"editing":       "bg-gray-500 text-gray-100",
		"posted":        "bg-gray-700 text-white",
	},
}

// For returns the style of status under kind. Unknown kinds and values fall
// back to DefaultClass.
func For(kind Kind, status string) Style {
	class, ok := classes[kind][status]
	if !ok {
		class = DefaultClass
	}
	return Style{Label: status, Class: class}
}
