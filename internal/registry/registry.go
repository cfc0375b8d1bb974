package registry

// platforms is the fixed, ordered list of agent platforms the demo knows about.
var platforms = []string{
	"OpenManus",
	"AgentLabUI",
	"CrewAI",
	"Autogen-style",
	"Custom HTTP tools",
}

// Platforms returns the known agent platforms in display order. The returned
// slice is a copy.
func Platforms() []string {
	out := make([]string, len(platforms))
	copy(out, platforms)
	return out
}
