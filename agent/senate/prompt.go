package senate

import "strings"

// promptSeparator joins the sections of a user prompt.
const promptSeparator = "\n\n"

// BuildPrompt assembles the user prompt from the agent's memory for the
// topic, the rendered conversation and the human input. Empty sections
// are skipped.
func BuildPrompt(memoryContext, conversation, humanInput string) string {
	sections := make([]string, 0, 3)
	for _, s := range []string{memoryContext, conversation, humanInput} {
		if strings.TrimSpace(s) != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, promptSeparator)
}
