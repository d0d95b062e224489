package summarizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/digest-flow/internal/models"
)

func modelsSegment(start, end float64, text string) models.Segment {
	return models.Segment{Start: f64(start), End: f64(end), Text: text}
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	summary := "## Overview\n- **Budget** approved\n[00:02 - 00:05] Ana to email client\n1. ship it"

	mdPath, docxPath, err := Export(dir, "weekly-sync", summary)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "weekly-sync.md"), mdPath)
	assert.Equal(t, filepath.Join(dir, "weekly-sync.docx"), docxPath)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# weekly-sync")
	assert.Contains(t, string(md), "- **Budget** approved")

	info, err := os.Stat(docxPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestCleanMarkdownInline(t *testing.T) {
	assert.Equal(t, "bold and code", cleanMarkdownInline("**bold** and `code`"))
}

func TestHeadingSize(t *testing.T) {
	assert.Equal(t, uint64(16), headingSize(1))
	assert.Equal(t, uint64(14), headingSize(3))
	assert.Equal(t, uint64(fontSize), headingSize(5))
}
