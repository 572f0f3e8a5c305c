package senate

import (
	"strings"
	"time"
)

// Turn is one utterance in a conversation.
type Turn struct {
	ID          string    `json:"id"`
	Speaker     string    `json:"speaker"`
	Affiliation string    `json:"affiliation"`
	Utterance   string    `json:"utterance"`
	Directed    bool      `json:"directed,omitempty"`
	Question    string    `json:"question,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Line renders the turn as "{speaker} [{affiliation}]: {utterance}".
func (t Turn) Line() string {
	return t.Speaker + " [" + t.Affiliation + "]: " + t.Utterance
}

// Conversation is the append-only transcript of one problem session.
// It is owned by a single orchestrator goroutine and is not safe for
// concurrent writes.
type Conversation struct {
	ID    string
	Topic string
	turns []Turn
}

// Turns returns a copy of the turns so far.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int { return len(c.turns) }

// Render returns the topic followed by every turn line, separated by
// blank lines.
func (c *Conversation) Render() string {
	var b strings.Builder
	b.WriteString(c.Topic)
	for _, t := range c.turns {
		b.WriteString("\n\n")
		b.WriteString(t.Line())
	}
	return b.String()
}

func (c *Conversation) append(t Turn) {
	c.turns = append(c.turns, t)
}
