package forge

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/trebuchet-org/catapult/internal/domain/config"
)

// Builder runs forge build in the project root
type Builder struct {
	log         *slog.Logger
	projectRoot string
}

// NewBuilder creates a new forge builder
func NewBuilder(cfg *config.RuntimeConfig, log *slog.Logger) *Builder {
	return &Builder{
		log:         log.With("component", "ForgeBuilder"),
		projectRoot: cfg.ProjectRoot,
	}
}

// Available reports whether forge is installed
func (b *Builder) Available() bool {
	_, err := exec.LookPath("forge")
	return err == nil
}

// Build runs forge build with proper output handling
func (b *Builder) Build(ctx context.Context) error {
	start := time.Now()
	b.log.Debug("running forge build", "dir", b.projectRoot)

	cmd := exec.CommandContext(ctx, "forge", "build")
	cmd.Dir = b.projectRoot

	output, err := cmd.CombinedOutput()
	duration := time.Since(start)
	if err != nil {
		b.log.Error("forge build failed", "error", err, "duration", duration)
		return fmt.Errorf("forge build failed: %w\nOutput: %s", err, string(output))
	}

	b.log.Debug("forge build completed successfully", "duration", duration)
	return nil
}
