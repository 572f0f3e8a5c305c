package types

import "context"

// contextKey is used for storing values in context.Context.
type contextKey string

const (
	keySessionID contextKey = "session_id"
	keyRoundID   contextKey = "round_id"
	keyAgentName contextKey = "agent_name"
)

// WithSessionID adds the debate session ID to context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, keySessionID, sessionID)
}

// SessionID extracts the debate session ID from context.
func SessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keySessionID).(string)
	return v, ok && v != ""
}

// WithRoundID adds the round ID to context.
func WithRoundID(ctx context.Context, roundID string) context.Context {
	return context.WithValue(ctx, keyRoundID, roundID)
}

// RoundID extracts the round ID from context.
func RoundID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRoundID).(string)
	return v, ok && v != ""
}

// WithAgentName adds the speaking agent's name to context.
func WithAgentName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyAgentName, name)
}

// AgentName extracts the speaking agent's name from context.
func AgentName(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyAgentName).(string)
	return v, ok && v != ""
}
