package pdf

import (
	"path/filepath"
	"sort"
	"strings"
)

// OrderPolicy controls the order in which source files enter the merged
// document.
type OrderPolicy int

const (
	// OrderAsGiven keeps the upload/scan order.
	OrderAsGiven OrderPolicy = iota

	// OrderAlphabetical sorts by the basename of the display name,
	// case-insensitive, ties keeping their given order.
	OrderAlphabetical
)

// SourceFile is one loaded PDF together with its resolved page selection.
type SourceFile struct {
	// Name is the display name or path the user knows the file by.
	Name string

	// Data is the raw file content.
	Data []byte

	// Pages is the parsed 1-based page selection, in selection order.
	Pages []int

	// PageCount is the page count reported when the file was opened.
	PageCount int
}

// PlanStep draws one page: the 0-based page Page of source Source is
// appended to the output document.
type PlanStep struct {
	Source string
	Page   int
}

// Bookmark marks the output position that holds the first page contributed
// by a source file. Page is 0-based in output coordinates.
type Bookmark struct {
	Title string
	Page  int
}

// MergePlan is the complete draw order for the output document plus the
// bookmark insertion points. It is plain data; executing it is the PDF
// writer's job.
type MergePlan struct {
	Steps     []PlanStep
	Bookmarks []Bookmark
}

// BuildMergePlan computes the page draw order for merging the given sources.
// Sources with an empty selection contribute nothing, not even a bookmark.
// A selected page that is out of range for its source (the file changed since
// the selection was made) is skipped silently; the merge must not fail over a
// stale selection. Bookmarks are recorded before a source's pages are
// appended, so positions are non-decreasing across sources and strictly
// increasing for sources that contribute at least one page.
func BuildMergePlan(entries []SourceFile, order OrderPolicy, addBookmarks bool) MergePlan {
	if order == OrderAlphabetical {
		sorted := make([]SourceFile, len(entries))
		copy(sorted, entries)
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(filepath.Base(sorted[i].Name)) < strings.ToLower(filepath.Base(sorted[j].Name))
		})
		entries = sorted
	}

	var plan MergePlan
	for _, entry := range entries {
		if len(entry.Pages) == 0 {
			continue
		}
		if addBookmarks {
			plan.Bookmarks = append(plan.Bookmarks, Bookmark{
				Title: filepath.Base(entry.Name),
				Page:  len(plan.Steps),
			})
		}
		for _, p := range entry.Pages {
			if p < 1 || p > entry.PageCount {
				continue
			}
			plan.Steps = append(plan.Steps, PlanStep{Source: entry.Name, Page: p - 1})
		}
	}
	return plan
}
