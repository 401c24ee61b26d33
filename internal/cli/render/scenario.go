package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// ScenarioRenderer renders scenario runs and parse results
type ScenarioRenderer struct {
	out     io.Writer
	verbose bool
}

// NewScenarioRenderer creates a new scenario renderer
func NewScenarioRenderer(out io.Writer, verbose bool) *ScenarioRenderer {
	return &ScenarioRenderer{
		out:     out,
		verbose: verbose,
	}
}

type stepOutcome struct {
	done          bool
	failed        bool
	lowConfidence bool
	duration      time.Duration
	data          map[string]any
}

func stepOutcomes(trace []domain.TraceEvent) map[int]stepOutcome {
	outcomes := make(map[int]stepOutcome)
	for _, ev := range trace {
		switch ev.Type {
		case domain.TraceStepComplete:
			outcomes[ev.Step] = stepOutcome{done: true, lowConfidence: ev.LowConfidence, duration: ev.Duration, data: ev.Data}
		case domain.TraceStepFail:
			outcomes[ev.Step] = stepOutcome{failed: true, duration: ev.Duration}
		}
	}
	return outcomes
}

// RenderRun renders the outcome of a scenario run
func (r *ScenarioRenderer) RenderRun(result *usecase.RunScenarioResult) error {
	res := result.Result
	fmt.Fprintf(r.out, "%s %s\n", headerStyle.Sprint("🎬 Scenario:"), nameStyle.Sprint(res.ScenarioName))
	fmt.Fprintln(r.out, faintStyle.Sprintf("   run %s on %s", res.RunID, result.RPCURL))
	fmt.Fprintln(r.out)

	r.renderDiagnostics(res.Diagnostics)

	var steps []domain.Step
	if result.Parsed != nil && result.Parsed.Definition != nil {
		steps = result.Parsed.Definition.Steps
	}
	if len(steps) > 0 {
		r.renderStepTable(steps, stepOutcomes(res.Trace))
	}

	for _, w := range res.Warnings {
		fmt.Fprintln(r.out, FormatWarning(w))
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintln(r.out)
	}

	if r.verbose || len(res.Artifacts.Contracts) > 0 || len(res.Artifacts.Vars) > 0 {
		r.renderArtifacts(res.Artifacts)
	}

	if res.Success {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Scenario completed: %d/%d steps in %s, gas used %d",
			res.StepsExecuted, res.TotalSteps, formatDuration(res.ExecutionTime), res.GasUsed)))
	} else {
		fmt.Fprintln(r.out, failStyle.Sprintf("❌ Scenario failed after %d/%d steps", res.StepsExecuted, res.TotalSteps))
		fmt.Fprintln(r.out, failStyle.Sprintf("   %s", res.Error))
	}

	if result.TracePath != "" {
		fmt.Fprintln(r.out, faintStyle.Sprintf("📁 trace: %s", getRelativePath(result.TracePath)))
	}
	return nil
}

func (r *ScenarioRenderer) renderStepTable(steps []domain.Step, outcomes map[int]stepOutcome) {
	t := newTable()
	t.AppendHeader(table.Row{"#", "Kind", "Step", "Status", "Time"})
	for _, step := range steps {
		o, ran := outcomes[step.Index]
		status := faintStyle.Sprint("skipped")
		switch {
		case ran && o.failed:
			status = failStyle.Sprint("✗ failed")
		case ran && o.lowConfidence:
			status = warnStyle.Sprint("~ ok")
		case ran:
			status = successStyle.Sprint("✓ ok")
		}
		t.AppendRow(table.Row{step.Index, kindTitle(string(step.Kind)), truncate(step.Title(), 60), status, formatDuration(o.duration)})

		if r.verbose && len(o.data) > 0 {
			keys := lo.Keys(o.data)
			sort.Strings(keys)
			for _, k := range keys {
				t.AppendRow(table.Row{"", "", faintStyle.Sprintf("  %s: %v", k, o.data[k]), "", ""})
			}
		}
	}
	fmt.Fprintln(r.out, t.Render())
	fmt.Fprintln(r.out)
}

func (r *ScenarioRenderer) renderArtifacts(a domain.ExecutionArtifacts) {
	t := newTable()
	t.AppendHeader(table.Row{"Symbol", "Type", "Value"})
	appendSorted := func(kind string, m map[string]string) {
		keys := lo.Keys(m)
		sort.Strings(keys)
		for _, k := range keys {
			t.AppendRow(table.Row{k, kind, m[k]})
		}
	}
	appendSorted("role", a.Roles)
	appendSorted("contract", a.Contracts)
	appendSorted("var", a.Vars)
	if len(a.Snapshots) > 0 {
		t.AppendRow(table.Row{strings.Join(a.Snapshots, ", "), "snapshots", ""})
	}
	fmt.Fprintln(r.out, t.Render())
	fmt.Fprintln(r.out)
}

func (r *ScenarioRenderer) renderDiagnostics(diagnostics []domain.Diagnostic) {
	if len(diagnostics) == 0 {
		return
	}
	for _, d := range diagnostics {
		prefix := fmt.Sprintf("step %d: ", d.Step)
		if d.Step == 0 {
			prefix = ""
		}
		if d.Level == domain.DiagnosticWarning {
			fmt.Fprintln(r.out, FormatWarning(prefix+d.Message))
		} else {
			fmt.Fprintln(r.out, infoStyle.Sprintf("ℹ️  %s%s", prefix, d.Message))
		}
	}
	fmt.Fprintln(r.out)
}

// RenderParse renders a parsed scenario without running it
func (r *ScenarioRenderer) RenderParse(result *usecase.ParseScenarioResult) error {
	def := result.Parsed.Definition
	fmt.Fprintf(r.out, "%s %s\n", headerStyle.Sprint("📜 Scenario:"), nameStyle.Sprint(def.Name))
	if def.Description != "" {
		fmt.Fprintf(r.out, "   %s\n", def.Description)
	}
	if result.Path != "" {
		fmt.Fprintln(r.out, faintStyle.Sprintf("   %s", getRelativePath(result.Path)))
	}
	fmt.Fprintln(r.out, faintStyle.Sprintf("   timeout %ds, gas limit %d", def.Timeout, def.GasLimit))
	fmt.Fprintln(r.out)

	if len(def.Roles) > 0 {
		t := newTable()
		t.AppendHeader(table.Row{"Role", "Address", "Balance"})
		for _, role := range def.Roles {
			t.AppendRow(table.Row{role.Name, role.Address, role.Balance})
		}
		fmt.Fprintln(r.out, t.Render())
		fmt.Fprintln(r.out)
	}

	t := newTable()
	t.AppendHeader(table.Row{"#", "Kind", "Written as", "Summary"})
	for _, step := range def.Steps {
		token := step.Token
		if token == string(step.Kind) {
			token = ""
		}
		t.AppendRow(table.Row{step.Index, kindTitle(string(step.Kind)), faintStyle.Sprint(token), truncate(step.Title(), 70)})
	}
	fmt.Fprintln(r.out, t.Render())
	fmt.Fprintln(r.out)

	r.renderDiagnostics(result.Parsed.Diagnostics)
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Parsed %d step(s)", len(def.Steps))))
	return nil
}
