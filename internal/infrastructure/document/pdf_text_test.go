package document

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// buildPDF writes a minimal PDF with one Helvetica text line per page
func buildPDF(pages ...string) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	for i, text := range pages {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestPDFTextExtractor_ExtractText(t *testing.T) {
	e := NewPDFTextExtractor(0, zap.NewNop())

	text, err := e.ExtractText(buildPDF("Python and SQL, 2 years"))
	require.NoError(t, err)
	assert.Contains(t, text, "Python and SQL, 2 years")
}

func TestPDFTextExtractor_StopsAtMaxPages(t *testing.T) {
	e := NewPDFTextExtractor(1, zap.NewNop())

	text, err := e.ExtractText(buildPDF("first page Docker", "second page Kubernetes"))
	require.NoError(t, err)
	assert.Contains(t, text, "Docker")
	assert.NotContains(t, text, "Kubernetes")
}

func TestPDFTextExtractor_RejectsNonPDF(t *testing.T) {
	e := NewPDFTextExtractor(0, zap.NewNop())

	_, err := e.ExtractText([]byte("plain text resume"))
	assert.ErrorIs(t, err, ErrNotPDF)
}
