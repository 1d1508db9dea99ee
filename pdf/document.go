package pdf

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Document is a loaded PDF ready for page selection.
type Document struct {
	Name        string
	Data        []byte
	PageCount   int
	Fingerprint string
}

// pageCountCache memoizes page counts for repeated inspection of identical
// uploads. Keyed on content fingerprint plus the password the open was tried
// with: two uploads may share a display name but never a fingerprint, and a
// cached count must never vouch for a password that was not checked against
// the file.
var pageCountCache sync.Map // fingerprint+password -> page count

// Fingerprint returns the content fingerprint of raw PDF bytes.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ReadConfig returns the pdfcpu configuration used for all reads and writes.
// Validation is relaxed since real-world PDFs are rarely pristine. The
// password is tried as both user and owner password; the empty default
// covers encrypted files with a blank user password. Automatic per-file
// merge bookmarks are disabled because bookmark titles and positions come
// from the merge plan instead.
func ReadConfig(password string) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.UserPW = password
	conf.OwnerPW = password
	conf.CreateBookmarks = false
	return conf
}

// OpenDocument reads enough of a PDF to know its page count. Corrupt data,
// or encryption the supplied password cannot open, is an error; callers are
// expected to skip such files and keep going.
func OpenDocument(name string, data []byte, password string) (*Document, error) {
	doc := &Document{
		Name:        name,
		Data:        data,
		Fingerprint: Fingerprint(data),
	}

	// The fingerprint is fixed width, so appending the password cannot
	// collide with another fingerprint's key.
	cacheKey := doc.Fingerprint + password
	if count, ok := pageCountCache.Load(cacheKey); ok {
		doc.PageCount = count.(int)
		return doc, nil
	}

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), ReadConfig(password))
	if err != nil {
		return nil, fmt.Errorf("cannot open PDF %s: %v", name, err)
	}
	doc.PageCount = ctx.PageCount
	pageCountCache.Store(cacheKey, doc.PageCount)
	return doc, nil
}
