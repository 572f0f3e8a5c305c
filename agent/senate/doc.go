// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package senate orchestrates turn-taking between senator agents.

An Agent pairs an immutable persona with a ContextMemory that only that
agent writes. The Orchestrator holds a fixed, ordered list of agents and
drives rounds over a Conversation:

  - RunRound asks every agent in list order. Each agent sees the turns
    appended by the agents before it in the same round.
  - Ask runs a single-agent pass for a directed question. The name lookup
    is a case-insensitive exact match; a miss returns AGENT_NOT_FOUND and
    leaves the conversation and all memories untouched.

Every turn reads the agent's memory for the conversation topic, builds the
prompt, calls the generator for the agent's backend, records the answer in
memory and appends a Turn. Generation errors stop the round immediately.
Nothing is retried or run in parallel.

The Conversation keeps structured Turns and renders text only when asked,
either for a prompt or at an output boundary.
*/
package senate
