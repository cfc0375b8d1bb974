package crew

import (
	"fmt"
	"sync"
)

// Orchestrator assembles agents and tasks into a runnable crew.
type Orchestrator interface {
	Name() string
	Assemble(agents []*Agent, tasks []*Task, process Process) (*Crew, error)
}

// Probe reports whether an orchestrator is available in this binary.
type Probe func() (Orchestrator, bool)

// backend is set by the build-tagged registration file when orchestration is
// compiled in.
var backend Orchestrator

var detect = sync.OnceValues(func() (Orchestrator, bool) {
	return backend, backend != nil
})

// Detect is the default Probe. The result is computed once per process.
func Detect() (Orchestrator, bool) {
	return detect()
}

// Local assembles crews in process. It validates the crew graph and attaches
// the execution plan; it never runs tasks.
type Local struct{}

func (Local) Name() string { return "local" }

func (Local) Assemble(agents []*Agent, tasks []*Task, process Process) (*Crew, error) {
	plan, err := BuildPlan(agents, tasks, process)
	if err != nil {
		return nil, fmt.Errorf("build plan: %w", err)
	}
	return &Crew{
		Agents:  agents,
		Tasks:   tasks,
		Process: process,
		Plan:    plan,
	}, nil
}
