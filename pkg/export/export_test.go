package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roster = Table{
	Title:   "Class CLS01 - Math",
	Headers: []string{"Student", "RA", "Status"},
	Rows: [][]string{
		{"Ana Lima", "RA001", "Active"},
		{"João, Jr", "RA002", "Suspended"},
	},
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(roster)
	require.NoError(t, err)
	assert.Equal(t, "Student,RA,Status\nAna Lima,RA001,Active\n\"João, Jr\",RA002,Suspended\n", string(out))
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(roster)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderRejectsRaggedRows(t *testing.T) {
	_, err := NewCSVExporter().Render(Table{Headers: []string{"a", "b"}, Rows: [][]string{{"1"}}})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Table{})
	assert.Error(t, err)
}

func TestForFormat(t *testing.T) {
	r, err := ForFormat(FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", r.ContentType())

	r, err = ForFormat("")
	require.NoError(t, err)
	assert.Equal(t, "csv", r.Extension())

	_, err = ForFormat("xlsx")
	assert.Error(t, err)
}
