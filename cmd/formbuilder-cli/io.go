package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// read loads location, a file path, an http(s) URL or "-" for stdin.
// Relative paths resolve inside -root when it is set.
func (a *app) read(ctx context.Context, location string) ([]byte, error) {
	if strings.TrimSpace(location) == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	src, err := a.loader.SourceFor(location)
	if err != nil {
		return nil, err
	}
	doc, err := a.loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", location, err)
	}
	return doc.Raw(), nil
}

func (a *app) readDefinition(ctx context.Context, location string) (model.Definition, error) {
	data, err := a.read(ctx, location)
	if err != nil {
		return model.Definition{}, err
	}
	var def model.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return model.Definition{}, fmt.Errorf("decode definition %s: %w", location, err)
	}
	return def, nil
}

// write sends data to path, or stdout when path is empty.
func (a *app) write(path string, data []byte) error {
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	if path == "" {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	a.logger.Info("written", "path", path, "bytes", len(data))
	return nil
}

func (a *app) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return a.write(path, data)
}
