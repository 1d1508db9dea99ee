package pdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ExecuteMergePlan renders a merge plan into a single PDF document.
// Sources are matched to plan steps by name; when display names repeat, the
// last entry wins, as in the selection forms that produced the plan.
func ExecuteMergePlan(sources []SourceFile, plan MergePlan, password string) ([]byte, error) {
	if len(plan.Steps) == 0 {
		return nil, fmt.Errorf("merge plan selects no pages")
	}

	data := make(map[string][]byte, len(sources))
	for _, src := range sources {
		data[src.Name] = src.Data
	}

	conf := ReadConfig(password)

	// Each source is parsed once, on first use.
	ctxs := make(map[string]*model.Context, len(sources))
	sourceCtx := func(name string) (*model.Context, error) {
		if ctx, ok := ctxs[name]; ok {
			return ctx, nil
		}
		raw, ok := data[name]
		if !ok {
			return nil, fmt.Errorf("merge plan references unknown source %q", name)
		}
		ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(raw), conf)
		if err != nil {
			return nil, fmt.Errorf("cannot open PDF %s: %v", name, err)
		}
		ctxs[name] = ctx
		return ctx, nil
	}

	// One single-page part per step keeps the output page order exactly the
	// draw order, whatever order the sources store their pages in.
	parts := make([]*bytes.Buffer, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		ctx, err := sourceCtx(step.Source)
		if err != nil {
			return nil, err
		}
		extracted, err := pdfcpu.ExtractPages(ctx, []int{step.Page + 1}, false)
		if err != nil {
			return nil, fmt.Errorf("cannot extract page %d of %s: %v", step.Page+1, step.Source, err)
		}
		var buf bytes.Buffer
		if err := api.WriteContext(extracted, &buf); err != nil {
			return nil, fmt.Errorf("cannot write page %d of %s: %v", step.Page+1, step.Source, err)
		}
		parts = append(parts, &buf)
	}

	merged := parts[0]
	if len(parts) > 1 {
		readers := make([]io.ReadSeeker, len(parts))
		for i, part := range parts {
			readers[i] = bytes.NewReader(part.Bytes())
		}
		var out bytes.Buffer
		if err := api.MergeRaw(readers, &out, false, conf); err != nil {
			return nil, fmt.Errorf("merge failed: %v", err)
		}
		merged = &out
	}

	return insertBookmarks(merged.Bytes(), plan, len(plan.Steps), conf)
}

// insertBookmarks writes the plan's bookmarks into the merged document as its
// outline. A bookmark whose position fell beyond the final document (every
// page of its source was stale-skipped and no later source contributed) is
// dropped: plan data never fails a merge.
func insertBookmarks(merged []byte, plan MergePlan, totalPages int, conf *model.Configuration) ([]byte, error) {
	if len(plan.Bookmarks) == 0 {
		return merged, nil
	}

	bms := make([]pdfcpu.Bookmark, 0, len(plan.Bookmarks))
	for i, bm := range plan.Bookmarks {
		if bm.Page >= totalPages {
			continue
		}
		// A bookmark reaches up to the first later bookmark at a strictly
		// greater position, or the end of the document.
		thru := totalPages
		for j := i + 1; j < len(plan.Bookmarks); j++ {
			if plan.Bookmarks[j].Page > bm.Page {
				thru = plan.Bookmarks[j].Page
				break
			}
		}
		bms = append(bms, pdfcpu.Bookmark{
			Title:    bm.Title,
			PageFrom: bm.Page + 1,
			PageThru: thru,
		})
	}
	if len(bms) == 0 {
		return merged, nil
	}

	var out bytes.Buffer
	if err := api.AddBookmarks(bytes.NewReader(merged), &out, bms, false, conf); err != nil {
		return nil, fmt.Errorf("cannot add bookmarks: %v", err)
	}
	return out.Bytes(), nil
}
