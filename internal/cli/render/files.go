package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// FilesRenderer renders scenario listings, saved files and templates
type FilesRenderer struct {
	out io.Writer
}

// NewFilesRenderer creates a new files renderer
func NewFilesRenderer(out io.Writer) *FilesRenderer {
	return &FilesRenderer{out: out}
}

// RenderList renders the scenarios found in the scenarios directory
func (r *FilesRenderer) RenderList(result *usecase.ListScenariosResult, dir string) error {
	if len(result.Scenarios) == 0 {
		fmt.Fprintf(r.out, "No scenarios found in %s\n", getRelativePath(dir))
		return nil
	}

	fmt.Fprintln(r.out, headerStyle.Sprint("📚 Scenarios:"))
	t := newTable()
	t.AppendHeader(table.Row{"File", "Name", "Steps", "Description"})
	for _, s := range result.Scenarios {
		if s.Error != "" {
			t.AppendRow(table.Row{s.File, failStyle.Sprint("invalid"), "-", failStyle.Sprint(truncate(s.Error, 60))})
			continue
		}
		t.AppendRow(table.Row{s.File, nameStyle.Sprint(s.Name), s.Steps, truncate(s.Description, 60)})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

// RenderSave renders a saved scenario
func (r *FilesRenderer) RenderSave(result *usecase.SaveScenarioResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Saved scenario '%s' (%d steps)", result.Definition.Name, len(result.Definition.Steps))))
	fmt.Fprintf(r.out, "📁 %s\n", getRelativePath(result.Path))
	return nil
}

// RenderTemplate renders a generated template with its ABI analysis
func (r *FilesRenderer) RenderTemplate(result *usecase.CreateScenarioTemplateResult) error {
	analysis := result.Analysis
	if analysis != nil {
		fmt.Fprintf(r.out, "%s %s\n", headerStyle.Sprint("🔍 Contract:"), nameStyle.Sprint(analysis.Contract))
		if len(analysis.ConstructorInputs) > 0 {
			types := make([]string, len(analysis.ConstructorInputs))
			for i, in := range analysis.ConstructorInputs {
				types[i] = strings.TrimSpace(in.Type + " " + in.Name)
			}
			fmt.Fprintln(r.out, faintStyle.Sprintf("   constructor(%s)", strings.Join(types, ", ")))
		}
		fmt.Fprintln(r.out)

		if len(analysis.Functions) > 0 {
			t := newTable()
			t.AppendHeader(table.Row{"Function", "Mutability", "Example args"})
			for _, fn := range analysis.Functions {
				t.AppendRow(table.Row{fn.Signature, fn.StateMutability, strings.Join(fn.ExampleArgs, ", ")})
			}
			fmt.Fprintln(r.out, t.Render())
			fmt.Fprintln(r.out)
		}

		if len(analysis.Suggestions) > 0 {
			fmt.Fprintln(r.out, headerStyle.Sprint("💡 Suggestions:"))
			for _, s := range analysis.Suggestions {
				fmt.Fprintf(r.out, "  • %s\n", s)
			}
			fmt.Fprintln(r.out)
		}
	}

	fmt.Fprintln(r.out, faintStyle.Sprint("---"))
	fmt.Fprint(r.out, result.YAML)
	fmt.Fprintln(r.out, faintStyle.Sprint("---"))

	if result.Path != "" {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Template saved to %s", getRelativePath(result.Path))))
	}
	return nil
}
