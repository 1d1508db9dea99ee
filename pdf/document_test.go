package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTestPDF builds a minimal pageCount-page PDF with a well-formed xref
// table so pdfcpu can read it without repair.
func makeTestPDF(t *testing.T, pageCount int) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	// Object 1 is the catalog, 2 the page tree, 3.. the pages.
	objCount := 3 + pageCount
	offsets := make(map[int]int, objCount)
	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, pageCount)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 3+i)
	}
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 595 842] >>",
		strings.Join(kids, " "), pageCount))

	for i := 0; i < pageCount; i++ {
		writeObj(3+i, "<< /Type /Page /Parent 2 0 R /Resources << >> >>")
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", objCount)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num < objCount; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		objCount, xrefOffset)

	return buf.Bytes()
}

// encryptTestPDF encrypts a fixture with the given user and owner password.
func encryptTestPDF(t *testing.T, data []byte, password string) []byte {
	t.Helper()

	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	var buf bytes.Buffer
	require.NoError(t, api.Encrypt(bytes.NewReader(data), &buf, conf))
	return buf.Bytes()
}

func TestOpenDocument(t *testing.T) {
	data := makeTestPDF(t, 4)

	doc, err := OpenDocument("four.pdf", data, "")
	require.NoError(t, err)
	assert.Equal(t, "four.pdf", doc.Name)
	assert.Equal(t, 4, doc.PageCount)
	assert.Equal(t, Fingerprint(data), doc.Fingerprint)
}

func TestOpenDocumentSinglePage(t *testing.T) {
	doc, err := OpenDocument("one.pdf", makeTestPDF(t, 1), "")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount)
}

func TestOpenDocumentRejectsGarbage(t *testing.T) {
	_, err := OpenDocument("note.txt", []byte("not a pdf at all"), "")
	require.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	a := makeTestPDF(t, 2)
	b := makeTestPDF(t, 3)

	assert.Equal(t, Fingerprint(a), Fingerprint(a))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
	assert.Len(t, Fingerprint(a), 64)
}

func TestOpenDocumentCachesByContent(t *testing.T) {
	data := makeTestPDF(t, 5)

	first, err := OpenDocument("one-name.pdf", data, "")
	require.NoError(t, err)

	_, cached := pageCountCache.Load(first.Fingerprint)
	assert.True(t, cached)

	// Same bytes under a different display name reuse the cached count.
	second, err := OpenDocument("other-name.pdf", data, "")
	require.NoError(t, err)
	assert.Equal(t, first.PageCount, second.PageCount)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
}

func TestOpenDocumentDoesNotCacheFailures(t *testing.T) {
	junk := []byte("%PDF-1.7 truncated beyond repair")

	_, err := OpenDocument("junk.pdf", junk, "")
	require.Error(t, err)

	_, cached := pageCountCache.Load(Fingerprint(junk))
	assert.False(t, cached)
}

func TestOpenDocumentEncrypted(t *testing.T) {
	enc := encryptTestPDF(t, makeTestPDF(t, 3), "secret")

	doc, err := OpenDocument("enc.pdf", enc, "secret")
	require.NoError(t, err)
	assert.Equal(t, 3, doc.PageCount)

	// The cached count must not vouch for a password that was never tried
	// against these bytes.
	_, err = OpenDocument("enc.pdf", enc, "")
	require.Error(t, err)
	_, err = OpenDocument("enc.pdf", enc, "wrong")
	require.Error(t, err)

	again, err := OpenDocument("enc.pdf", enc, "secret")
	require.NoError(t, err)
	assert.Equal(t, 3, again.PageCount)
}
