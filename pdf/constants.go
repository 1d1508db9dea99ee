package pdf

const (
	// DefaultSpec is the page selection applied when a file has no explicit
	// spec and no mapping entry: every page
	DefaultSpec = "all"

	// DefaultOutputName names the merged document when the caller leaves the
	// output name blank
	DefaultOutputName = "merged.pdf"

	// FormatYAML exports selections as a YAML mapping
	FormatYAML = "yaml"

	// FormatJSON exports selections as a JSON object
	FormatJSON = "json"

	// FormatText exports selections as "name: pages" lines in given order
	FormatText = "text"
)
