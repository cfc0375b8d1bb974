package crew

import (
	"log/slog"
)

// NotInstalledMessage is returned when no orchestrator is compiled in.
const NotInstalledMessage = "crew orchestration not installed. Rebuild with `-tags crew` and redeploy."

// Builder produces the sample crew template.
type Builder struct {
	probe Probe
}

// NewBuilder returns a Builder using probe to detect the orchestrator. A nil
// probe falls back to Detect.
func NewBuilder(probe Probe) *Builder {
	if probe == nil {
		probe = Detect
	}
	return &Builder{probe: probe}
}

// Build returns the template for the sample crew. A missing orchestrator is
// reported in the template, not as an error.
func (b *Builder) Build() Template {
	orch, ok := b.probe()
	if !ok {
		return Template{Installed: false, Message: NotInstalledMessage}
	}

	c, err := SampleCrew(orch)
	if err != nil {
		slog.Error("assemble sample crew failed", "orchestrator", orch.Name(), "error", err)
		return Template{Installed: false, Message: err.Error()}
	}
	return c.Template()
}

// SampleCrew assembles the two-agent launch crew with orch.
func SampleCrew(orch Orchestrator) (*Crew, error) {
	researcher := &Agent{
		Role:      "Topic Researcher",
		Goal:      "Find 3 fresh AI + automation ideas from the web",
		Backstory: "You live on the bleeding edge of AI tools and indie hacking.",
	}
	planner := &Agent{
		Role:      "Launch Planner",
		Goal:      "Turn raw ideas into a concrete mini-launch plan",
		Backstory: "You think in lean experiments and fast validation.",
	}

	research := &Task{
		Description:    "Collect 3 promising AI automation product ideas with 2–3 bullet notes each.",
		ExpectedOutput: "JSON with keys: ideas: [ {title, notes[]} ]",
		Agent:          researcher,
	}
	launch := &Task{
		Description:    "Take the ideas and propose a step-by-step 3‑day launch plan for the best one.",
		ExpectedOutput: "Markdown launch plan with bullets and simple timeline.",
		Agent:          planner,
		Context:        []*Task{research},
	}

	return orch.Assemble(
		[]*Agent{researcher, planner},
		[]*Task{research, launch},
		ProcessSequential,
	)
}
