package senate

import (
	"github.com/BaSui01/senate/agent/memory"
	"github.com/BaSui01/senate/llm"
	"github.com/BaSui01/senate/persona"
)

// Agent is a senator: a persona plus the memory it alone writes to.
type Agent struct {
	Persona *persona.Persona
	Memory  *memory.ContextMemory
}

// NewAgent creates an agent with an empty memory of the given capacity.
func NewAgent(p *persona.Persona, capacity int) *Agent {
	return &Agent{
		Persona: p,
		Memory:  memory.NewContextMemory(capacity),
	}
}

// NewAgents creates one agent per persona, preserving order.
func NewAgents(ps []*persona.Persona, capacity int) []*Agent {
	agents := make([]*Agent, 0, len(ps))
	for _, p := range ps {
		agents = append(agents, NewAgent(p, capacity))
	}
	return agents
}

func (a *Agent) Name() string { return a.Persona.Name }

func (a *Agent) Affiliation() string { return a.Persona.Party }

func (a *Agent) Backend() llm.Backend { return a.Persona.Backend }

// Description returns the system prompt for this agent.
func (a *Agent) Description() string { return a.Persona.Description() }
