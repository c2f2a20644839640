package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/wire"
)

// LoadDocument reads a fixture into a wire.Document using a file source.
// Testing helpers fail the test on error to keep contract tests concise.
func LoadDocument(t *testing.T, path string) wire.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T.
func LoadDocumentFromPath(path string) (wire.Document, error) {
	if path == "" {
		return wire.Document{}, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return wire.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	doc, err := wire.NewDocument(wire.SourceFromFile(path), data)
	if err != nil {
		return wire.Document{}, fmt.Errorf("testsupport: new document: %w", err)
	}
	return doc, nil
}

// MustLoadDefinition loads a JSON fixture into a form definition.
func MustLoadDefinition(t *testing.T, path string) model.Definition {
	t.Helper()

	def, err := LoadDefinition(path)
	if err != nil {
		t.Fatalf("load definition: %v", err)
	}
	return def
}

// LoadDefinition reads a JSON fixture into a Definition, returning an error
// for callers managing setup outside of *testing.T.
func LoadDefinition(path string) (model.Definition, error) {
	if path == "" {
		return model.Definition{}, errors.New("testsupport: definition path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Definition{}, fmt.Errorf("testsupport: read definition: %w", err)
	}
	var out model.Definition
	if err := json.Unmarshal(data, &out); err != nil {
		return model.Definition{}, fmt.Errorf("testsupport: unmarshal definition: %w", err)
	}
	return out, nil
}

// WriteGolden writes data to a golden file when UPDATE_GOLDENS is set.
// Returns true if the golden was written (test should exit early).
func WriteGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareJSON decodes both payloads and returns a diff of their structure,
// so key order and indentation do not matter.
func CompareJSON(t *testing.T, want, got []byte) string {
	t.Helper()

	var w, g any
	if err := json.Unmarshal(want, &w); err != nil {
		t.Fatalf("decode want: %v", err)
	}
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("decode got: %v", err)
	}
	return cmp.Diff(w, g)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
