package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/internal/loader"
	"github.com/goliatone/go-formbuilder/pkg/wire"
)

const definitionJSON = `{
  "id": "3",
  "name": "Feedback",
  "fields": [
    {"id": "comment", "type": "textarea", "label": "Comment", "required": true, "rows": 4},
    {"id": "score", "type": "radio", "label": "Score", "optionSource": "static", "staticOptions": "1,2,3"}
  ]
}`

func testApp(stdin string) (*app, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &app{
		cfg:    config.New(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		loader: loader.New(wire.NewLoaderOptions()),
		stdin:  strings.NewReader(stdin),
		stdout: &stdout,
		stderr: &stderr,
	}, &stdout, &stderr
}

func TestExportImportLint(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "feedback.schema.json")

	a, _, _ := testApp(definitionJSON)
	require.NoError(t, runExport(context.Background(), a, []string{"-in", "-", "-out", schemaPath}))

	schema, err := os.ReadFile(schemaPath)
	require.NoError(t, err)
	require.Contains(t, string(schema), `"FeedbackSchema"`)

	a, stdout, stderr := testApp("")
	require.NoError(t, runLint(context.Background(), a, []string{"-skip-layout", schemaPath}))
	require.Equal(t, schemaPath+": ok\n", stdout.String())
	require.Empty(t, stderr.String())

	a, stdout, _ = testApp("")
	require.NoError(t, runImport(context.Background(), a, []string{"-in", schemaPath}))
	require.Contains(t, stdout.String(), `"name": "Feedback"`)
	require.Contains(t, stdout.String(), `"id": "comment"`)

	a, stdout, _ = testApp("")
	require.NoError(t, runPreview(context.Background(), a, []string{schemaPath}))
	require.Equal(t, schemaPath+": 2 fields (openapi)\n", stdout.String())
}

func TestRootResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "forms"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forms", "feedback.json"), []byte(definitionJSON), 0o600))

	a, stdout, _ := testApp("")
	a.loader = newLoader(a.cfg, dir)
	require.NoError(t, runExport(context.Background(), a, []string{"-in", "forms/feedback.json"}))
	require.Contains(t, stdout.String(), `"FeedbackSchema"`)

	_, err := a.read(context.Background(), "../outside.json")
	require.ErrorContains(t, err, "outside the document root")
}

func TestExportFormats(t *testing.T) {
	a, stdout, _ := testApp(definitionJSON)
	require.NoError(t, runExport(context.Background(), a, []string{"-in", "-", "-format", "yaml"}))
	require.True(t, strings.HasPrefix(stdout.String(), "openapi: 3.0.1\n"))

	a, _, _ = testApp(definitionJSON)
	err := runExport(context.Background(), a, []string{"-in", "-", "-format", "xml"})
	require.ErrorContains(t, err, "unknown format")
}

func TestLintReportsIssues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"openapi":"3.0.1","info":{"title":"x","version":"1"},"paths":{}}`), 0o644))

	a, _, stderr := testApp("")
	err := runLint(context.Background(), a, []string{path})
	require.True(t, errors.Is(err, errIssues), "got %v", err)
	require.Contains(t, stderr.String(), "#/components/schemas -> document has no component schemas")
}

func TestOptionsCommand(t *testing.T) {
	a, stdout, _ := testApp(definitionJSON)
	require.NoError(t, runOptions(context.Background(), a, []string{"-in", "-", "-field", "score"}))
	require.JSONEq(t, `[{"value":"1","label":"1"},{"value":"2","label":"2"},{"value":"3","label":"3"}]`, stdout.String())

	a, _, _ = testApp(definitionJSON)
	require.ErrorContains(t, runOptions(context.Background(), a, []string{"-in", "-", "-field", "missing"}), `field "missing" not found`)
}

func TestSelfURL(t *testing.T) {
	require.Equal(t, "http://127.0.0.1:8080", selfURL(":8080"))
	require.Equal(t, "http://example.test:9000", selfURL("example.test:9000"))
}
