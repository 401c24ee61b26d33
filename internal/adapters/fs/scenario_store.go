package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/config"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// ScenarioStoreAdapter keeps scenario files in the project's scenarios directory
type ScenarioStoreAdapter struct {
	dir string
}

// NewScenarioStoreAdapter creates a new ScenarioStoreAdapter
func NewScenarioStoreAdapter(cfg *config.RuntimeConfig) *ScenarioStoreAdapter {
	return &ScenarioStoreAdapter{dir: cfg.ScenariosDir}
}

// Read loads a scenario by file path or by name from the scenarios directory
func (s *ScenarioStoreAdapter) Read(ctx context.Context, path string) (string, error) {
	for _, candidate := range s.candidates(path) {
		data, err := os.ReadFile(candidate)
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read scenario %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrScenarioNotFound, path)
}

func (s *ScenarioStoreAdapter) candidates(path string) []string {
	out := []string{path}
	if filepath.IsAbs(path) || s.dir == "" {
		return out
	}
	base := filepath.Join(s.dir, path)
	out = append(out, base)
	if filepath.Ext(path) == "" {
		out = append(out, base+".yaml", base+".yml")
	}
	return out
}

// Save writes content to <dir>/<name>.yaml and returns the path
func (s *ScenarioStoreAdapter) Save(ctx context.Context, name string, content []byte, overwrite bool) (string, error) {
	fileName := SanitizeScenarioName(name)
	if fileName == "" {
		return "", fmt.Errorf("invalid scenario name %q", name)
	}
	path := filepath.Join(s.dir, fileName+".yaml")

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("scenario file %s already exists", path)
		}
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create scenarios directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write scenario file: %w", err)
	}
	return path, nil
}

// List returns the scenario files in the scenarios directory sorted by name
func (s *ScenarioStoreAdapter) List(ctx context.Context) ([]usecase.ScenarioFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read scenarios directory: %w", err)
	}

	var files []usecase.ScenarioFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		files = append(files, usecase.ScenarioFile{
			Name: strings.TrimSuffix(e.Name(), ext),
			Path: filepath.Join(s.dir, e.Name()),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// SanitizeScenarioName turns a scenario name into a file name
func SanitizeScenarioName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "_-")
}

// Ensure the adapter implements the interface
var _ usecase.ScenarioStore = (*ScenarioStoreAdapter)(nil)
