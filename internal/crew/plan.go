package crew

import (
	"errors"
	"fmt"
)

// Plan is the execution order of a crew's tasks.
type Plan struct {
	Steps []Step
}

// Step is one task in the plan together with the tasks whose output feeds it.
type Step struct {
	Task   *Task
	Inputs []*Task
}

// Roles returns the agent role of every step, in plan order.
func (p *Plan) Roles() []string {
	out := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.Task.Agent.Role
	}
	return out
}

// BuildPlan validates the crew graph and orders its tasks.
// It returns an error if a task is bound to an agent outside the crew, depends
// on a task outside the crew, or if the dependencies contain a cycle.
func BuildPlan(agents []*Agent, tasks []*Task, process Process) (*Plan, error) {
	if process != ProcessSequential {
		return nil, fmt.Errorf("unsupported process %q", process)
	}
	if len(tasks) == 0 {
		return nil, errors.New("crew has no tasks")
	}

	members := make(map[*Agent]bool, len(agents))
	for _, a := range agents {
		members[a] = true
	}

	index := make(map[*Task]int, len(tasks))
	for i, t := range tasks {
		index[t] = i
	}

	for _, t := range tasks {
		if t.Agent == nil {
			return nil, fmt.Errorf("task %q has no agent", t.Description)
		}
		if !members[t.Agent] {
			return nil, fmt.Errorf("task %q is assigned to %q, which is not a member of the crew", t.Description, t.Agent.Role)
		}
		for _, c := range t.Context {
			if _, ok := index[c]; !ok {
				return nil, fmt.Errorf("task %q depends on a task outside the crew", t.Description)
			}
		}
	}

	// Edges: explicit context, plus each task on its predecessor.
	inputs := make([][]int, len(tasks))
	edges := make([][]int, len(tasks))
	inDegree := make([]int, len(tasks))
	addEdge := func(from, to int) {
		for _, existing := range inputs[to] {
			if existing == from {
				return
			}
		}
		inputs[to] = append(inputs[to], from)
		edges[from] = append(edges[from], to)
		inDegree[to]++
	}
	for i, t := range tasks {
		if i > 0 {
			addEdge(i-1, i)
		}
		for _, c := range t.Context {
			addEdge(index[c], i)
		}
	}

	// Kahn's algorithm; ties go to the lowest listed index.
	order := make([]int, 0, len(tasks))
	done := make([]bool, len(tasks))
	for len(order) < len(tasks) {
		next := -1
		for i := range tasks {
			if !done[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, errors.New("task dependencies contain a cycle")
		}
		done[next] = true
		order = append(order, next)
		for _, to := range edges[next] {
			inDegree[to]--
		}
	}

	steps := make([]Step, 0, len(order))
	for _, i := range order {
		step := Step{Task: tasks[i]}
		for _, from := range inputs[i] {
			step.Inputs = append(step.Inputs, tasks[from])
		}
		steps = append(steps, step)
	}
	return &Plan{Steps: steps}, nil
}
