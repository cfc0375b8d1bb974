package crew

// Process declares how a crew's tasks are meant to run.
type Process string

const (
	// ProcessSequential runs tasks one after another in listed order.
	ProcessSequential Process = "sequential"
)

// Agent is a persona a crew can assign tasks to.
type Agent struct {
	Role      string `json:"role"`
	Goal      string `json:"goal"`
	Backstory string `json:"backstory"`
}

// Task is a unit of work bound to one agent of the same crew. Context lists
// earlier tasks whose output the task consumes.
type Task struct {
	Description    string  `json:"description"`
	ExpectedOutput string  `json:"expected_output"`
	Agent          *Agent  `json:"-"`
	Context        []*Task `json:"-"`
}

// Crew groups agents and tasks under an execution process. Plan is filled in
// by the orchestrator that assembled the crew.
type Crew struct {
	Agents  []*Agent `json:"agents"`
	Tasks   []*Task  `json:"tasks"`
	Process Process  `json:"process"`
	Plan    *Plan    `json:"-"`
}

// Template is the wire view of a crew. When Installed is false only Message
// is populated.
type Template struct {
	Installed        bool     `json:"installed"`
	Message          string   `json:"message,omitempty"`
	AgentRoles       []string `json:"agent_roles,omitempty"`
	TaskDescriptions []string `json:"task_descriptions,omitempty"`
}

// Template projects the crew down to agent roles and task descriptions.
func (c *Crew) Template() Template {
	roles := make([]string, 0, len(c.Agents))
	for _, a := range c.Agents {
		roles = append(roles, a.Role)
	}
	descs := make([]string, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		descs = append(descs, t.Description)
	}
	return Template{
		Installed:        true,
		AgentRoles:       roles,
		TaskDescriptions: descs,
	}
}
