package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/BaSui01/senate/config"
	"github.com/BaSui01/senate/llm"
	"github.com/BaSui01/senate/testutil"
	"github.com/BaSui01/senate/types"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(testutil.TestContext(t))
	return out.String(), err
}

// --- debate ---

func TestDebate_EchoBackendWritesTranscript(t *testing.T) {
	transcriptPath := filepath.Join(t.TempDir(), "debate.txt")

	out, err := execute(t, "C\nmore trains\n",
		"debate",
		"--personas", "testdata/echo.json",
		"--config", "testdata/config.yaml",
		"--transcript", transcriptPath,
	)
	require.NoError(t, err)

	problem := "Should the Senate fund high-speed rail?"
	assert.True(t, strings.HasPrefix(out, "Presenting problem: "+problem+"\n"))
	assert.Contains(t, out, `Senator Ada Park [Democrat]: Senator Ada Park on "`+problem+`"`)
	assert.Contains(t, out, "Senator Ben Ortiz [Republican]: Senator Ben Ortiz on")
	assert.Contains(t, out, "Your response: ")
	assert.Equal(t, 2, strings.Count(out, "Senator Ada Park [Democrat]: "))
	assert.Equal(t, 2, strings.Count(out, "Senator Ben Ortiz [Republican]: "))

	data, err := os.ReadFile(transcriptPath)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, problem+"\n\nAda Park [Democrat]: "))
	assert.Equal(t, 2, strings.Count(text, "\n\nAda Park [Democrat]: "))
	assert.Equal(t, 2, strings.Count(text, "\n\nBen Ortiz [Republican]: "))
}

func TestDebate_WithMetricsServer(t *testing.T) {
	_, err := execute(t, "C\nok\n",
		"debate",
		"--personas", "testdata/echo.json",
		"--config", "testdata/config.yaml",
		"--metrics-addr", "127.0.0.1:0",
	)
	assert.NoError(t, err)
}

func TestDebate_RequiresPersonas(t *testing.T) {
	_, err := execute(t, "", "debate", "--config", "testdata/config.yaml")
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidConfig))
}

func TestDebate_UnsupportedBackendFailsAtLoad(t *testing.T) {
	_, err := execute(t, "", "debate", "--personas", "testdata/bad.json", "--config", "testdata/config.yaml")
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrUnsupportedBackend))
}

func TestDebate_UnregisteredBackendFailsAtStartup(t *testing.T) {
	out, err := execute(t, "", "debate", "--personas", "testdata/compat.json", "--config", "testdata/config.yaml")
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrUnsupportedBackend))
	assert.Contains(t, err.Error(), `"Cal Reyes"`)
	assert.Contains(t, err.Error(), "registered: gpt-4, gpt-4o, echo")
	assert.NotContains(t, out, "Presenting problem")
}

func TestDebate_MissingConfigFile(t *testing.T) {
	_, err := execute(t, "", "debate", "--personas", "testdata/echo.json", "--config", "testdata/nope.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDebate_FlagOverridesConfig(t *testing.T) {
	cmd := newDebateCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--personas", "p.json", "--scenarios", "3", "--seed", "9", "--metrics-addr", ":9999",
	}))

	opts := &debateOptions{personasPath: "p.json", scenarios: 3, seed: 9, metricsAddr: ":9999", configPath: "testdata/config.yaml"}
	cfg, err := loadConfig(cmd, opts)
	require.NoError(t, err)

	assert.Equal(t, "p.json", cfg.Session.PersonasPath)
	assert.Equal(t, 3, cfg.Session.Scenarios)
	assert.Equal(t, int64(9), cfg.Session.Seed)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9999", cfg.Metrics.Addr)
	assert.Equal(t, []string{"Should the Senate fund high-speed rail?"}, cfg.Session.Problems)
}

// --- personas / version ---

func TestPersonas_ListsInFileOrder(t *testing.T) {
	out, err := execute(t, "", "personas", "--personas", "testdata/echo.json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Ada Park [Democrat]")
	assert.Contains(t, lines[1], "Ben Ortiz [Republican]")
	assert.Equal(t, "2 senators loaded", lines[2])
}

func TestPersonas_RequiresPath(t *testing.T) {
	_, err := execute(t, "", "personas")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Senate "+Version)
}

// --- generator wiring ---

func TestBuildGenerator_Backends(t *testing.T) {
	cfg := config.DefaultLLMConfig()
	cfg.RateLimitRPS = 1000

	reg, err := buildRegistry(cfg, zap.NewNop())
	require.NoError(t, err)
	gen := buildGenerator(cfg, reg, nil, noop.NewTracerProvider().Tracer("test"), zap.NewNop())
	assert.Equal(t, "registry", gen.Name())

	resp, err := gen.Generate(context.Background(), &llm.GenerateRequest{
		Backend: llm.BackendEcho,
		System:  "You are Senator X from Ohio.",
		Prompt:  "Topic",
	})
	require.NoError(t, err)
	assert.Equal(t, `Senator X on "Topic": I will weigh this carefully.`, resp.Content)

	_, err = gen.Generate(context.Background(), &llm.GenerateRequest{Backend: llm.BackendOpenAICompatible})
	assert.True(t, types.IsErrorCode(err, types.ErrUnsupportedBackend))
}

func TestBuildRegistry_CompatibleBackendNeedsBaseURL(t *testing.T) {
	cfg := config.DefaultLLMConfig()

	reg, err := buildRegistry(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []llm.Backend{llm.BackendGPT4, llm.BackendGPT4o, llm.BackendEcho}, reg.Backends())

	cfg.BaseURL = "http://localhost:11434/v1"
	cfg.Model = "llama3"
	reg, err = buildRegistry(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, reg.Has(llm.BackendOpenAICompatible))
}

func TestInitLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger := initLogger(config.LogConfig{Level: "debug", Format: format, OutputPaths: []string{"stderr"}})
		require.NotNil(t, logger)
		assert.True(t, logger.Core().Enabled(zap.DebugLevel))
	}

	logger := initLogger(config.LogConfig{Level: "bogus", Format: "json"})
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestTokenizerFor_PerBackendModel(t *testing.T) {
	cfg := config.DefaultLLMConfig()
	resolve := tokenizerFor(cfg, zap.NewNop())

	gpt4 := resolve(llm.BackendGPT4)
	gpt4o := resolve(llm.BackendGPT4o)
	require.NotNil(t, gpt4)
	require.NotNil(t, gpt4o)
	assert.Equal(t, 8192, gpt4.MaxTokens())
	assert.Equal(t, 128000, gpt4o.MaxTokens())
	assert.Same(t, gpt4, resolve(llm.BackendEcho))
	assert.Nil(t, resolve(llm.BackendOpenAICompatible))

	cfg.BaseURL = "http://localhost:11434/v1"
	cfg.Model = "gpt-4o-mini"
	resolve = tokenizerFor(cfg, zap.NewNop())
	assert.Equal(t, 128000, resolve(llm.BackendOpenAICompatible).MaxTokens())
}
