package pdf

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// SelectionMapping maps a file identifier (basename or full path) to a page
// spec string.
type SelectionMapping map[string]string

// LoadSelectionMapping parses a selections mapping file. YAML for .yaml and
// .yml suffixes, JSON otherwise. Values may be written as a spec string, a
// bare number, or a list of tokens; all are normalized to a single spec
// string.
func LoadSelectionMapping(data []byte, filename string) (SelectionMapping, error) {
	var raw map[string]interface{}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		var doc map[interface{}]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("cannot parse mapping %s: %v", filename, err)
		}
		raw = make(map[string]interface{}, len(doc))
		for k, v := range doc {
			raw[fmt.Sprint(k)] = v
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("cannot parse mapping %s: %v", filename, err)
		}
	}

	mapping := make(SelectionMapping, len(raw))
	for key, value := range raw {
		mapping[key] = specString(value)
	}
	return mapping, nil
}

// specString renders a mapping value as a page spec string. List values are
// token lists; joining them with commas is lossless because tokens never
// contain commas.
func specString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []interface{}:
		tokens := make([]string, len(v))
		for i, item := range v {
			tokens[i] = specString(item)
		}
		return strings.Join(tokens, ",")
	default:
		return fmt.Sprint(v)
	}
}

// SpecFor resolves the spec for a file identifier: exact match first, then
// the identifier's basename, so a mapping keyed by plain file names also
// applies to files addressed by full path.
func (m SelectionMapping) SpecFor(id string) (string, bool) {
	if spec, ok := m[id]; ok {
		return spec, true
	}
	if spec, ok := m[filepath.Base(id)]; ok {
		return spec, true
	}
	return "", false
}

// Selection pairs a file identifier with its selected pages for export.
type Selection struct {
	Name  string `json:"name"`
	Pages []int  `json:"pages"`
}

// ExportSelections serializes selections as a mapping from file identifier
// to comma-joined page numbers, suitable for re-import as a selections
// mapping. Format is FormatYAML, FormatJSON or FormatText; the text format
// keeps the given order as "name: pages" lines.
func ExportSelections(sels []Selection, format string) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(selectionMap(sels))
	case FormatJSON:
		return json.MarshalIndent(selectionMap(sels), "", "  ")
	case FormatText:
		var b strings.Builder
		for _, sel := range sels {
			fmt.Fprintf(&b, "%s: %s\n", sel.Name, joinPages(sel.Pages))
		}
		return []byte(b.String()), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

func selectionMap(sels []Selection) map[string]string {
	doc := make(map[string]string, len(sels))
	for _, sel := range sels {
		doc[sel.Name] = joinPages(sel.Pages)
	}
	return doc
}

// joinPages renders a page list the way specs are written: "3,1,2".
func joinPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}
