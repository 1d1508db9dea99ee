package api

const (
	// MaxMappingSize caps the size of an uploaded selections mapping
	MaxMappingSize = 1 << 20

	// MaxParsePages caps the max_pages accepted by a spec parse request
	MaxParsePages = 1_000_000

	// SkippedFilesHeader lists uploads dropped from a merge because they
	// could not be read
	SkippedFilesHeader = "X-Skipped-Files"

	// OrderGiven keeps files in upload order
	OrderGiven = "given"

	// OrderAlphabetical sorts files by case-insensitive base name
	OrderAlphabetical = "alphabetical"
)
