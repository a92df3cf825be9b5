package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Plan", "Revenue"},
		Rows: []map[string]string{
			{"Plan": "Monthly", "Revenue": "R$ 300.00"},
			{"Plan": "Quarterly", "Revenue": "R$ 150.00"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	payload, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Plan,Revenue", lines[0])
	assert.Contains(t, lines[1], "Monthly")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestCSVExporterRenderSections(t *testing.T) {
	sections := []Section{
		{Title: "Plans", Data: sampleDataset()},
		{Title: "Expirations", Data: Dataset{Headers: []string{"Student"}, Rows: []map[string]string{{"Student": "Ana"}}}},
	}
	payload, err := NewCSVExporter().RenderSections(sections)
	require.NoError(t, err)

	text := string(payload)
	assert.Contains(t, text, "Plans")
	assert.Contains(t, text, "Expirations")
	assert.Contains(t, text, "Ana")
}

func TestPDFExporterRender(t *testing.T) {
	payload, err := NewPDFExporter().Render(sampleDataset(), "Plan revenue")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestPDFExporterRenderDocument(t *testing.T) {
	doc := Document{
		Title:    "GymTech",
		Subtitle: "Management report",
		Stats: []Stat{
			{Label: "Total students", Value: "4"},
			{Label: "Total revenue", Value: "R$ 200.00"},
		},
		Sections: []Section{
			{Title: "Plans and revenue", Data: sampleDataset()},
			{Title: "Expiring within 30 days", EmptyNote: "No plans expiring."},
		},
	}
	payload, err := NewPDFExporter().RenderDocument(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestPDFExporterRenderDocumentEmpty(t *testing.T) {
	_, err := NewPDFExporter().RenderDocument(Document{Title: "empty"})
	assert.Error(t, err)
}
