package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/config"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// Builder compiles the project so that artifacts exist
type Builder interface {
	Available() bool
	Build(ctx context.Context) error
}

// Indexer discovers compiled contracts in the foundry output directory.
// The index is built lazily on first use.
type Indexer struct {
	projectRoot string
	outDir      string
	builder     Builder
	log         *slog.Logger

	mu      sync.RWMutex
	indexed bool
	byKey   map[string]*domain.ContractArtifact   // key: "path:Name"
	byName  map[string][]*domain.ContractArtifact // key: contract name
}

// NewIndexer creates a new artifact indexer
func NewIndexer(cfg *config.RuntimeConfig, builder Builder, log *slog.Logger) *Indexer {
	return &Indexer{
		projectRoot: cfg.ProjectRoot,
		outDir:      filepath.Join(cfg.ProjectRoot, cfg.FoundryConfig.OutDir()),
		builder:     builder,
		log:         log.With("component", "ArtifactIndexer"),
	}
}

var _ usecase.ArtifactRepository = (*Indexer)(nil)

// FindArtifact returns the artifact for a contract name or "path:Name" key
func (i *Indexer) FindArtifact(ctx context.Context, name string) (*domain.ContractArtifact, error) {
	if err := i.ensureIndexed(ctx); err != nil {
		return nil, err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	name = strings.TrimSpace(name)
	if artifact, ok := i.byKey[name]; ok {
		return artifact, nil
	}

	matches := i.byName[name]
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		if hint := i.suggest(name); hint != "" {
			return nil, fmt.Errorf("%w: %s (did you mean %s?)", domain.ErrArtifactNotFound, name, hint)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
	}

	keys := make([]string, len(matches))
	for j, m := range matches {
		keys[j] = m.SourcePath + ":" + m.Name
	}
	sort.Strings(keys)
	return nil, fmt.Errorf("multiple contracts named %s, use one of: %s", name, strings.Join(keys, ", "))
}

// ListArtifacts returns all deployable artifacts sorted by name
func (i *Indexer) ListArtifacts(ctx context.Context) ([]*domain.ContractArtifact, error) {
	if err := i.ensureIndexed(ctx); err != nil {
		return nil, err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	artifacts := make([]*domain.ContractArtifact, 0, len(i.byKey))
	for _, a := range i.byKey {
		artifacts = append(artifacts, a)
	}
	sort.Slice(artifacts, func(a, b int) bool {
		if artifacts[a].Name != artifacts[b].Name {
			return artifacts[a].Name < artifacts[b].Name
		}
		return artifacts[a].SourcePath < artifacts[b].SourcePath
	})
	return artifacts, nil
}

// Refresh drops the index so that the next lookup re-reads the output directory
func (i *Indexer) Refresh() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.indexed = false
}

func (i *Indexer) suggest(name string) string {
	names := make([]string, 0, len(i.byName))
	for n := range i.byName {
		names = append(names, n)
	}
	matches := fuzzy.Find(name, names)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

func (i *Indexer) ensureIndexed(ctx context.Context) error {
	i.mu.RLock()
	indexed := i.indexed
	i.mu.RUnlock()
	if indexed {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.indexed {
		return nil
	}

	if _, err := os.Stat(i.outDir); os.IsNotExist(err) {
		if err := i.build(ctx); err != nil {
			return err
		}
	}
	if err := i.index(); err != nil {
		return err
	}
	i.indexed = true
	return nil
}

// build compiles the project when there is no output directory yet
func (i *Indexer) build(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(i.projectRoot, "foundry.toml")); err != nil {
		i.log.Debug("no foundry project, skipping build", "root", i.projectRoot)
		return nil
	}
	if i.builder == nil || !i.builder.Available() {
		i.log.Warn("artifacts directory missing and forge is not available", "out", i.outDir)
		return nil
	}
	return i.builder.Build(ctx)
}

func (i *Indexer) index() error {
	i.byKey = make(map[string]*domain.ContractArtifact)
	i.byName = make(map[string][]*domain.ContractArtifact)

	if _, err := os.Stat(i.outDir); os.IsNotExist(err) {
		return nil
	}

	err := filepath.WalkDir(i.outDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}
		artifact, err := i.readArtifact(path)
		if err != nil {
			i.log.Debug("skipping artifact", "path", path, "error", err)
			return nil
		}
		if artifact == nil {
			return nil
		}
		key := artifact.SourcePath + ":" + artifact.Name
		if _, exists := i.byKey[key]; exists {
			return nil
		}
		i.byKey[key] = artifact
		i.byName[artifact.Name] = append(i.byName[artifact.Name], artifact)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", i.outDir, err)
	}
	i.log.Debug("indexed artifacts", "count", len(i.byKey), "out", i.outDir)
	return nil
}

// foundryArtifact is the subset of a forge build artifact that is indexed
type foundryArtifact struct {
	ABI      json.RawMessage `json:"abi"`
	Bytecode struct {
		Object string `json:"object"`
	} `json:"bytecode"`
	Metadata struct {
		Settings struct {
			CompilationTarget map[string]string `json:"compilationTarget"`
		} `json:"settings"`
	} `json:"metadata"`
}

// readArtifact parses one artifact file. Files that are not contract
// artifacts return nil without error.
func (i *Indexer) readArtifact(path string) (*domain.ContractArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw foundryArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw.ABI) == 0 {
		return nil, nil
	}

	var name, source string
	for src, contract := range raw.Metadata.Settings.CompilationTarget {
		source, name = src, contract
	}
	if name == "" {
		// Fall back to the out/<File.sol>/<Name>.json layout
		name = strings.TrimSuffix(filepath.Base(path), ".json")
		source = filepath.Base(filepath.Dir(path))
	}

	rel, err := filepath.Rel(i.projectRoot, path)
	if err != nil {
		rel = path
	}
	return &domain.ContractArtifact{
		Name:         name,
		SourcePath:   source,
		ArtifactPath: rel,
		ABI:          raw.ABI,
		Bytecode:     raw.Bytecode.Object,
	}, nil
}
