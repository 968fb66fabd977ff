package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegistry_RoutesByExtension(t *testing.T) {
	reg := NewRegistry()
	path := writeFile(t, "note.txt", "hello world")

	docs, err := reg.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "hello world", docs[0].Content)
	assert.Equal(t, "text", docs[0].Metadata["format"])
	assert.Equal(t, "note.txt", docs[0].Metadata["source"])
}

func TestRegistry_UnsupportedExtension(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Load(context.Background(), "/tmp/data.xyz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = reg.Load(context.Background(), "/tmp/noextension")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no file extension")
}

func TestRegistry_Supported(t *testing.T) {
	reg := NewRegistry()
	exts := reg.Supported()
	for _, want := range []string{".csv", ".htm", ".html", ".json", ".jsonl", ".md", ".pdf", ".txt"} {
		assert.Contains(t, exts, want)
	}
}

func TestMarkdownLoader_SplitsByHeading(t *testing.T) {
	path := writeFile(t, "doc.md", `preamble text

# First

first body

## Nested

nested body

# Second

second body`)

	docs, err := (&MarkdownLoader{}).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 4)

	assert.Equal(t, "preamble text", docs[0].Content)
	_, hasHeading := docs[0].Metadata["heading"]
	assert.False(t, hasHeading)

	assert.Equal(t, "First", docs[1].Metadata["heading"])
	assert.Equal(t, 1, docs[1].Metadata["heading_level"])
	assert.Equal(t, "first body", docs[1].Content)

	assert.Equal(t, "Nested", docs[2].Metadata["heading"])
	assert.Equal(t, 2, docs[2].Metadata["heading_level"])

	assert.Equal(t, "Second", docs[3].Metadata["heading"])
}

func TestMarkdownLoader_NoHeadings(t *testing.T) {
	path := writeFile(t, "plain.md", "just some text\nsecond line")

	docs, err := (&MarkdownLoader{}).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "just some text\nsecond line", docs[0].Content)
}

func TestJSONLoader_ObjectAndArray(t *testing.T) {
	objPath := writeFile(t, "one.json", `{"content": "the content", "title": "t"}`)
	docs, err := (&JSONLoader{}).Load(context.Background(), objPath)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "the content", docs[0].Content)

	arrPath := writeFile(t, "many.json", `[{"text": "a"}, {"text": "b"}]`)
	docs, err = (&JSONLoader{}).Load(context.Background(), arrPath)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].Content)
	assert.Equal(t, "b", docs[1].Content)
}

func TestJSONLoader_FallbackSerializesObject(t *testing.T) {
	path := writeFile(t, "raw.json", `{"answer": 42}`)
	docs, err := (&JSONLoader{}).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.JSONEq(t, `{"answer": 42}`, docs[0].Content)
}

func TestJSONLoader_JSONL(t *testing.T) {
	path := writeFile(t, "rows.jsonl", `{"content": "line one"}

{"content": "line two"}`)
	docs, err := (&JSONLoader{}).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "line one", docs[0].Content)
	assert.Equal(t, "line two", docs[1].Content)
}

func TestCSVLoader_RowsWithHeaders(t *testing.T) {
	path := writeFile(t, "table.csv", "name,role\nalice,admin\nbob,viewer")

	docs, err := (&CSVLoader{}).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "name: alice\nrole: admin", docs[0].Content)
	assert.Equal(t, 1, docs[0].Metadata["row"])
	assert.Equal(t, "name: bob\nrole: viewer", docs[1].Content)
}

func TestCSVLoader_HeaderOnly(t *testing.T) {
	path := writeFile(t, "empty.csv", "name,role")

	docs, err := (&CSVLoader{}).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestHTMLLoader_StripsMarkup(t *testing.T) {
	path := writeFile(t, "page.html", `<html><body><h1>Title</h1><p>Some paragraph.</p></body></html>`)

	docs, err := (&HTMLLoader{}).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "Title")
	assert.Contains(t, docs[0].Content, "Some paragraph.")
	assert.NotContains(t, docs[0].Content, "<p>")
	assert.Equal(t, "html", docs[0].Metadata["format"])
}

func TestTextLoader_MissingFile(t *testing.T) {
	_, err := (&TextLoader{}).Load(context.Background(), "/nonexistent/file.txt")
	assert.Error(t, err)
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := writeFile(t, "note.txt", "hello")
	_, err := (&TextLoader{}).Load(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
