package pdf

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageSpec(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		maxPages int
		want     []int
	}{
		{"all", "all", 5, []int{1, 2, 3, 4, 5}},
		{"all uppercase", "ALL", 3, []int{1, 2, 3}},
		{"all on empty document", "all", 0, nil},
		{"single page", "7", 10, []int{7}},
		{"single page clamped", "100", 5, []int{5}},
		{"closed range", "3-6", 10, []int{3, 4, 5, 6}},
		{"closed range clamped", "5-100", 7, []int{5, 6, 7}},
		{"open start", "-5", 10, []int{1, 2, 3, 4, 5}},
		{"open start clamped", "-20", 4, []int{1, 2, 3, 4}},
		{"open end", "4-", 10, []int{4, 5, 6, 7, 8, 9, 10}},
		{"open end degenerates past last page", "4-", 3, []int{3}},
		{"comma list", "1-3,5,10-12", 12, []int{1, 2, 3, 5, 10, 11, 12}},
		{"first occurrence wins", "3,1-3", 5, []int{3, 1, 2}},
		{"repeat inside later range dropped", "2-4,3", 9, []int{2, 3, 4}},
		{"whitespace around tokens", " 2 , 4 ", 9, []int{2, 4}},
		{"whitespace inside range", "3 - 5", 9, []int{3, 4, 5}},
		{"page beyond int clamps", "99999999999999999999", 4, []int{4}},
		{"range end beyond int clamps", "2-99999999999999999999", 4, []int{2, 3, 4}},
		{"open start beyond int clamps", "-99999999999999999999", 3, []int{1, 2, 3}},
		{"empty spec", "", 9, nil},
		{"only separators", ",,", 9, nil},
		{"single page on empty document", "3", 0, nil},
		{"range on empty document", "1-4", 0, nil},
		{"open end on empty document", "4-", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePageSpec(tt.spec, tt.maxPages)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePageSpec(%q, %d) mismatch (-want +got):\n%s", tt.spec, tt.maxPages, diff)
			}
		})
	}
}

func TestParsePageSpecInvalid(t *testing.T) {
	tests := []struct {
		name   string
		spec   string
		reason string
	}{
		{"bare dash", "-", "open range"},
		{"double dash", "1-2-3", "invalid range"},
		{"inverted", "5-2", "inverted range"},
		{"inverted beyond length", "90-70", "inverted range"},
		{"inverted with start beyond int", "99999999999999999999-3", "inverted range"},
		{"zero page", "0", "invalid page number"},
		{"zero range start", "0-3", "invalid start in range"},
		{"zero open end", "-0", "invalid end in range"},
		{"letters", "abc", "invalid page number"},
		{"letters in range end", "1-x", "invalid end in range"},
		{"letters in range start", "x-4", "invalid start in range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePageSpec(tt.spec, 10)
			require.Error(t, err)
			var specErr *SpecError
			require.True(t, errors.As(err, &specErr), "want a SpecError, got %T", err)
			assert.Equal(t, tt.reason, specErr.Reason)
		})
	}
}

func TestParsePageSpecEmptyDocumentStillValidates(t *testing.T) {
	// Syntax errors fire even when clamping would discard the result anyway.
	for _, spec := range []string{"0", "-", "1-2-3", "5-2", "abc"} {
		_, err := ParsePageSpec(spec, 0)
		require.Errorf(t, err, "spec %q on an empty document", spec)
	}
}

func TestParsePageSpecFailsFast(t *testing.T) {
	// One bad token invalidates the whole spec; no partial result.
	pages, err := ParsePageSpec("1,2,oops,4", 9)
	require.Error(t, err)
	assert.Nil(t, pages)

	var specErr *SpecError
	require.True(t, errors.As(err, &specErr))
	assert.Equal(t, "oops", specErr.Token)
}

func TestParsePageSpecPure(t *testing.T) {
	first, err := ParsePageSpec("3,1-3", 5)
	require.NoError(t, err)
	second, err := ParsePageSpec("3,1-3", 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParsePageTokens(t *testing.T) {
	got, err := ParsePageTokens([]string{"3", "1-3"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, got)

	got, err = ParsePageTokens([]string{" ", "", "2"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, got)

	got, err = ParsePageTokens(nil, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSpecErrorMessage(t *testing.T) {
	_, err := ParsePageSpec("5-2", 9)
	require.EqualError(t, err, `invalid page spec "5-2": inverted range`)
}
