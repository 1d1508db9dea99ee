package pdf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SpecError reports a structurally invalid page-spec token. The offending
// token is kept so callers can show the user exactly what was rejected.
type SpecError struct {
	Token  string
	Reason string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("invalid page spec %q: %s", e.Token, e.Reason)
}

// ParsePageSpec parses a page specification string and returns the selected
// page numbers in first-mentioned order, duplicates removed.
// Supported formats (1-based): "7", "3-9", "-5" (pages 1..5), "4-" (pages
// 4..last), "all", and comma lists such as "1-3,5,10-12".
// Endpoints beyond maxPages are clamped, not rejected, so a spec written for
// a longer document stays usable on a shorter one. An empty spec yields an
// empty selection, which is valid and means "no pages".
func ParsePageSpec(spec string, maxPages int) ([]int, error) {
	var tokens []string
	for _, part := range strings.Split(spec, ",") {
		if strings.TrimSpace(part) != "" {
			tokens = append(tokens, part)
		}
	}
	return ParsePageTokens(tokens, maxPages)
}

// ParsePageTokens is ParsePageSpec for input that is already split into
// tokens, such as a list value from a selections mapping file.
// The first invalid token fails the whole spec; there is no partial result.
func ParsePageTokens(tokens []string, maxPages int) ([]int, error) {
	var pages []int
	for _, token := range tokens {
		expanded, err := parsePageToken(token, maxPages)
		if err != nil {
			return nil, err
		}
		pages = append(pages, expanded...)
	}

	// Drop repeats, keeping each page at its first position.
	seen := make(map[int]bool, len(pages))
	var uniq []int
	for _, p := range pages {
		if !seen[p] {
			seen[p] = true
			uniq = append(uniq, p)
		}
	}
	return uniq, nil
}

// parsePageToken expands one comma-separated token. Tokens are
// case-insensitive and tolerate surrounding whitespace; an empty token
// selects nothing.
func parsePageToken(token string, maxPages int) ([]int, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return nil, nil
	}
	if t == "all" {
		return pageRange(1, maxPages), nil
	}

	if strings.Contains(t, "-") {
		if strings.Count(t, "-") > 1 {
			return nil, &SpecError{Token: t, Reason: "invalid range"}
		}
		dash := strings.Index(t, "-")
		start, end := t[:dash], t[dash+1:]
		switch {
		case start == "" && end == "":
			return nil, &SpecError{Token: t, Reason: "open range"}
		case start == "":
			e, err := parsePageNumber(end, t, "invalid end in range")
			if err != nil {
				return nil, err
			}
			return pageRange(1, min(e, maxPages)), nil
		case end == "":
			s, err := parsePageNumber(start, t, "invalid start in range")
			if err != nil {
				return nil, err
			}
			return pageRange(min(s, maxPages), maxPages), nil
		default:
			s, err := parsePageNumber(start, t, "invalid start in range")
			if err != nil {
				return nil, err
			}
			e, err := parsePageNumber(end, t, "invalid end in range")
			if err != nil {
				return nil, err
			}
			// Ordering is checked before clamping: "5-2" is inverted even
			// when both ends exceed the document.
			if s > e {
				return nil, &SpecError{Token: t, Reason: "inverted range"}
			}
			return pageRange(min(s, maxPages), min(e, maxPages)), nil
		}
	}

	n, err := parsePageNumber(t, t, "invalid page number")
	if err != nil {
		return nil, err
	}
	n = min(n, maxPages)
	return pageRange(n, n), nil
}

// parsePageNumber parses a 1-based page number endpoint. A number too large
// for int saturates in Atoi and is then clamped by the caller like any other
// endpoint past the last page.
func parsePageNumber(s, token, reason string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil && n > 0 && errors.Is(err, strconv.ErrRange) {
		return n, nil
	}
	if err != nil || n < 1 {
		return 0, &SpecError{Token: token, Reason: reason}
	}
	return n, nil
}

// pageRange returns lo..hi inclusive. lo is raised to 1 so that a zero-page
// document yields an empty selection instead of a page 0.
func pageRange(lo, hi int) []int {
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		return nil
	}
	pages := make([]int, 0, hi-lo+1)
	for p := lo; p <= hi; p++ {
		pages = append(pages, p)
	}
	return pages
}
