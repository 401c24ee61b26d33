package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// InitRenderer renders init command results
type InitRenderer struct {
	out io.Writer
}

// NewInitRenderer creates a new init renderer
func NewInitRenderer(out io.Writer) *InitRenderer {
	return &InitRenderer{out: out}
}

// Render renders the init project result
func (r *InitRenderer) Render(result *usecase.InitProjectResult) error {
	for _, step := range result.Steps {
		if step.Success {
			if step.Message != "" {
				fmt.Fprintln(r.out, successStyle.Sprintf("✅ %s", step.Message))
			} else {
				fmt.Fprintln(r.out, successStyle.Sprintf("✅ %s", step.Name))
			}
		} else {
			fmt.Fprintln(r.out, failStyle.Sprintf("❌ %s", step.Name))
			if step.Message != "" {
				fmt.Fprintf(r.out, "   %s\n", step.Message)
			}
			if step.Error != nil {
				fmt.Fprintf(r.out, "   %s\n", step.Error.Error())
			}
		}
	}

	if result.DataDirCreated && result.ScenariosCreated {
		r.printNextSteps(result)
	}
	return nil
}

func (r *InitRenderer) printNextSteps(result *usecase.InitProjectResult) {
	fmt.Fprintln(r.out)
	if result.AlreadyInitialized {
		fmt.Fprintln(r.out, warnStyle.Sprint("⚠️  catapult was already initialized in this project"))
	} else {
		fmt.Fprintln(r.out, color.New(color.FgGreen, color.Bold).Sprint("🎉 catapult initialized successfully!"))
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, headerStyle.Sprint("📋 Next steps:"))
	fmt.Fprintln(r.out, "1. Start a local node:")
	fmt.Fprintln(r.out, "   catapult node start")
	fmt.Fprintln(r.out, "2. Run the example scenario:")
	fmt.Fprintf(r.out, "   catapult run %s\n", getRelativePath(result.ExamplePath))
	fmt.Fprintln(r.out, "3. Generate a scenario for one of your contracts:")
	fmt.Fprintln(r.out, "   catapult template <Contract> --save")
}
