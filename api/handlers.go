package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/baliant/pdfTool/pdf"

	"github.com/gin-gonic/gin"
)

// fileReport is the per-file result of an inspect request. Error is set when
// the file or its spec could not be used; the request itself still succeeds
// so the client can fix one file without resubmitting the rest.
type fileReport struct {
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint,omitempty"`
	PageCount   int    `json:"page_count"`
	Spec        string `json:"spec,omitempty"`
	Pages       []int  `json:"pages"`
	Error       string `json:"error,omitempty"`
}

func HandleInspect(c *gin.Context, config *Config) {
	files, ok := pdfUploads(c)
	if !ok {
		return
	}

	mapping, err := loadMappingUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	overrides, err := parseSpecOverrides(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	password := c.PostForm("password")

	reports := make([]fileReport, 0, len(files))
	for _, header := range files {
		reports = append(reports, inspectFile(header, config, mapping, overrides, password))
	}

	c.JSON(http.StatusOK, gin.H{"files": reports})
}

func inspectFile(header *multipart.FileHeader, config *Config, mapping, overrides pdf.SelectionMapping, password string) fileReport {
	report := fileReport{Name: header.Filename, Pages: []int{}}

	data, err := readPDFUpload(header, config.MaxFileSize)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	doc, err := pdf.OpenDocument(header.Filename, data, password)
	if err != nil {
		config.Logger.WithField("file", header.Filename).Warnf("cannot open PDF: %v", err)
		report.Error = err.Error()
		return report
	}
	report.Fingerprint = doc.Fingerprint
	report.PageCount = doc.PageCount

	report.Spec = resolveSpec(doc.Name, overrides, mapping)
	pages, err := pdf.ParsePageSpec(report.Spec, doc.PageCount)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	if pages != nil {
		report.Pages = pages
	}
	return report
}

func HandleParseSpec(c *gin.Context, config *Config) {
	maxPages, err := strconv.Atoi(c.PostForm("max_pages"))
	if err != nil || maxPages < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_pages must be a non-negative integer"})
		return
	}
	// Page counts for real documents come from the documents themselves;
	// this endpoint takes the count from the caller, so bound it before
	// expanding "all" or open ranges into a page list.
	if maxPages > MaxParsePages {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("max_pages %d exceeds maximum allowed %d", maxPages, MaxParsePages)})
		return
	}

	spec := c.PostForm("spec")
	pages, err := pdf.ParsePageSpec(spec, maxPages)
	if err != nil {
		config.Logger.WithField("spec", spec).Debugf("parse failed: %v", err)
		c.JSON(http.StatusBadRequest, specErrorBody(err, ""))
		return
	}
	if pages == nil {
		pages = []int{}
	}

	c.JSON(http.StatusOK, gin.H{"pages": pages, "count": len(pages)})
}

func HandleMerge(c *gin.Context, config *Config) {
	files, ok := pdfUploads(c)
	if !ok {
		return
	}

	order, err := orderPolicy(c.PostForm("order"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	withBookmarks, err := parseBookmarksFlag(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mapping, err := loadMappingUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	overrides, err := parseSpecOverrides(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	password := c.PostForm("password")

	var entries []pdf.SourceFile
	var skipped []string
	for _, header := range files {
		data, err := readPDFUpload(header, config.MaxFileSize)
		if err != nil {
			config.Logger.WithField("file", header.Filename).Warnf("skipping upload: %v", err)
			skipped = append(skipped, header.Filename)
			continue
		}
		doc, err := pdf.OpenDocument(header.Filename, data, password)
		if err != nil {
			config.Logger.WithField("file", header.Filename).Warnf("skipping unreadable PDF: %v", err)
			skipped = append(skipped, header.Filename)
			continue
		}

		spec := resolveSpec(doc.Name, overrides, mapping)
		pages, err := pdf.ParsePageSpec(spec, doc.PageCount)
		if err != nil {
			// A bad spec is a caller mistake, not a bad file: fail the
			// whole merge so nothing silently goes missing.
			c.JSON(http.StatusBadRequest, specErrorBody(err, doc.Name))
			return
		}

		entries = append(entries, pdf.SourceFile{
			Name:      doc.Name,
			Data:      data,
			Pages:     pages,
			PageCount: doc.PageCount,
		})
	}
	if len(skipped) > 0 {
		c.Header(SkippedFilesHeader, strings.Join(skipped, ", "))
	}

	plan := pdf.BuildMergePlan(entries, order, withBookmarks)
	if len(plan.Steps) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "selected pages add up to an empty document"})
		return
	}

	merged, err := pdf.ExecuteMergePlan(entries, plan, password)
	if err != nil {
		config.Logger.Errorf("merge failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outputName(c)))
	c.Data(http.StatusOK, "application/pdf", merged)
}

func HandleExportSelections(c *gin.Context, config *Config) {
	var req struct {
		Selections []pdf.Selection `json:"selections"`
		Format     string          `json:"format"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Selections) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no selections given"})
		return
	}
	if req.Format == "" {
		req.Format = pdf.FormatYAML
	}

	out, err := pdf.ExportSelections(req.Selections, req.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contentType, filename := exportDownload(req.Format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, out)
}

func HandleSpecSyntax(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"forms": []gin.H{
			{"token": "all", "meaning": "every page"},
			{"token": "7", "meaning": "page 7"},
			{"token": "2-5", "meaning": "pages 2 through 5"},
			{"token": "-5", "meaning": "pages 1 through 5"},
			{"token": "3-", "meaning": "page 3 through the last page"},
		},
		"notes": []string{
			"Tokens are separated by commas and may be padded with spaces.",
			"Page numbers start at 1; pages past the end are clamped, not rejected.",
			"Each page appears once, at the position of its first mention.",
		},
		"example": "3,1-3 on a 5-page file selects pages 3, 1, 2",
	})
}

// pdfUploads returns the uploaded PDF files, or writes a 400 response and
// returns ok=false when the form carries none.
func pdfUploads(c *gin.Context) ([]*multipart.FileHeader, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return nil, false
	}
	files := form.File["pdf"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no PDF files uploaded"})
		return nil, false
	}
	return files, true
}

// readPDFUpload enforces the size cap and the %PDF magic before handing the
// bytes on.
func readPDFUpload(header *multipart.FileHeader, maxSize int64) ([]byte, error) {
	if header.Size > maxSize {
		return nil, fmt.Errorf("file size %d exceeds maximum allowed %d bytes", header.Size, maxSize)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("cannot open upload: %v", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read upload: %v", err)
	}
	if len(data) < 4 || string(data[:4]) != "%PDF" {
		return nil, fmt.Errorf("invalid PDF file: header does not match")
	}
	return data, nil
}

// loadMappingUpload parses the optional "mapping" form file. A missing field
// is not an error; nil mapping means no mapping.
func loadMappingUpload(c *gin.Context) (pdf.SelectionMapping, error) {
	file, header, err := c.Request.FormFile("mapping")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read mapping upload: %v", err)
	}
	defer file.Close()

	if header.Size > MaxMappingSize {
		return nil, fmt.Errorf("mapping size %d exceeds maximum allowed %d bytes", header.Size, MaxMappingSize)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read mapping upload: %v", err)
	}
	return pdf.LoadSelectionMapping(data, header.Filename)
}

// parseSpecOverrides decodes the optional "specs" form value, a JSON object
// mapping file names to page specs.
func parseSpecOverrides(c *gin.Context) (pdf.SelectionMapping, error) {
	raw := c.PostForm("specs")
	if raw == "" {
		return nil, nil
	}
	var overrides pdf.SelectionMapping
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		return nil, fmt.Errorf("cannot parse specs overrides: %v", err)
	}
	return overrides, nil
}

// resolveSpec picks the spec for a file: explicit override first, then the
// uploaded mapping, then the default.
func resolveSpec(name string, overrides, mapping pdf.SelectionMapping) string {
	if spec, ok := overrides.SpecFor(name); ok {
		return spec
	}
	if spec, ok := mapping.SpecFor(name); ok {
		return spec
	}
	return pdf.DefaultSpec
}

// specErrorBody shapes a page spec parse failure for the client, exposing
// the offending token when known.
func specErrorBody(err error, file string) gin.H {
	body := gin.H{"error": err.Error()}
	if file != "" {
		body["file"] = file
	}
	var specErr *pdf.SpecError
	if errors.As(err, &specErr) {
		body["token"] = specErr.Token
		body["reason"] = specErr.Reason
	}
	return body
}

func orderPolicy(value string) (pdf.OrderPolicy, error) {
	switch value {
	case "", OrderGiven:
		return pdf.OrderAsGiven, nil
	case OrderAlphabetical:
		return pdf.OrderAlphabetical, nil
	default:
		return 0, fmt.Errorf("unknown order %q", value)
	}
}

func parseBookmarksFlag(c *gin.Context) (bool, error) {
	raw := c.DefaultPostForm("bookmarks", "true")
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid bookmarks value %q", raw)
	}
	return enabled, nil
}

func outputName(c *gin.Context) string {
	name := sanitizeFilename(c.DefaultPostForm("output", pdf.DefaultOutputName))
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

func exportDownload(format string) (contentType, filename string) {
	switch format {
	case pdf.FormatJSON:
		return "application/json", "selections.json"
	case pdf.FormatText:
		return "text/plain; charset=utf-8", "selections.txt"
	default:
		return "application/x-yaml", "selections.yaml"
	}
}

// sanitizeFilename removes path traversal attempts and dangerous characters
func sanitizeFilename(filename string) string {
	// Remove directory separators and path traversal attempts
	filename = strings.ReplaceAll(filename, "..", "")
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")

	// Get just the base filename to prevent path issues
	filename = filepath.Base(filename)

	// Remove any remaining dangerous characters
	filename = strings.TrimSpace(filename)

	// If empty after sanitization, use default
	if filename == "" {
		filename = "document.pdf"
	}

	return filename
}
