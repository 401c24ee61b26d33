package interactive

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/catapult/internal/domain/config"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// SelectScenario lets the user pick one of the scenario files
func (s *SelectorAdapter) SelectScenario(ctx context.Context, files []usecase.ScenarioFile, prompt string) (*usecase.ScenarioFile, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no scenarios found in %s", s.config.ScenariosDir)
	}

	// If only one match, return it directly
	if len(files) == 1 {
		return &files[0], nil
	}

	// In non-interactive mode, we can't select
	if s.config.NonInteractive {
		return nil, fmt.Errorf("interactive selection not available in non-interactive mode, pass a scenario name")
	}

	options := formatScenarioOptions(s.config.ProjectRoot, files)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             prompt,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return &files[index], nil
}

// formatScenarioOptions creates display strings like "name (scenarios/name.yaml)"
func formatScenarioOptions(projectRoot string, files []usecase.ScenarioFile) []string {
	options := make([]string, len(files))
	for i, f := range files {
		path := f.Path
		if rel, err := filepath.Rel(projectRoot, f.Path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
		name := color.New(color.FgWhite, color.Bold).Sprint(f.Name)
		options[i] = fmt.Sprintf("%s (%s)", name, color.New(color.FgBlue).Sprint(path))
	}
	return options
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		// Empty search shows all items
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		// First try simple substring match
		if strings.Contains(item, input) {
			return true
		}

		// Then try fuzzy match
		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

// Ensure the adapter implements the interface
var _ usecase.ScenarioSelector = (*SelectorAdapter)(nil)
