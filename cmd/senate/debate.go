package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/x/term"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/senate/agent/senate"
	"github.com/BaSui01/senate/config"
	"github.com/BaSui01/senate/internal/metrics"
	"github.com/BaSui01/senate/internal/server"
	"github.com/BaSui01/senate/internal/session"
	"github.com/BaSui01/senate/internal/telemetry"
	"github.com/BaSui01/senate/internal/transcript"
	"github.com/BaSui01/senate/persona"
	"github.com/BaSui01/senate/types"
)

// =============================================================================
// 🏛️ debate 命令
// =============================================================================

func runDebate(cmd *cobra.Command, opts *debateOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting Senate",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	personas, err := persona.Load(cfg.Session.PersonasPath)
	if err != nil {
		return err
	}
	logger.Info("personas loaded", zap.String("path", cfg.Session.PersonasPath), zap.Int("count", len(personas)))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry
	otelProviders, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
		otelProviders = &telemetry.Providers{}
	}
	defer func() {
		if err := otelProviders.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollectorWithRegisterer(cfg.Metrics.Namespace, registry, logger)
	tracer := otelProviders.Tracer()

	backends, err := buildRegistry(cfg.LLM, logger)
	if err != nil {
		return err
	}
	if err := checkBackends(backends, personas); err != nil {
		return err
	}
	generator := buildGenerator(cfg.LLM, backends, collector, tracer, logger)

	orch, err := senate.New(
		senate.NewAgents(personas, cfg.Memory.Capacity),
		generator,
		senate.WithLogger(logger),
		senate.WithTemperature(float32(cfg.LLM.Temperature)),
		senate.WithTracer(tracer),
		senate.WithRecorder(collector),
		senate.WithTokenizerFor(tokenizerFor(cfg.LLM, logger)),
	)
	if err != nil {
		return err
	}

	sink, err := openSink(cfg.Session.TranscriptPath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("transcript close failed", zap.Error(err))
		}
	}()

	out := cmd.OutOrStdout()
	sess, err := session.New(orch,
		session.Config{
			Problems:  cfg.Session.Problems,
			Scenarios: cfg.Session.Scenarios,
			Seed:      cfg.Session.Seed,
		},
		cmd.InOrStdin(), out,
		session.WithLogger(logger),
		session.WithSink(sink),
		session.WithRecorder(collector),
		session.WithStyle(isTerminal(out)),
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancelRun := context.WithCancel(gctx)
	defer cancelRun()

	if cfg.Metrics.Enabled {
		srvCfg := server.DefaultConfig()
		srvCfg.Addr = cfg.Metrics.Addr
		handler := server.NewMetricsHandler(registry, collector, func() map[string]any {
			return map[string]any{"senators": len(personas), "version": Version}
		})
		mgr := server.NewManager(handler, srvCfg, logger)
		g.Go(func() error { return mgr.Serve(runCtx) })
	}

	g.Go(func() error {
		// 会话结束后关闭指标服务
		defer cancelRun()
		return sess.Run(runCtx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		logger.Info("interrupted, session stopped")
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("Senate stopped")
	return nil
}

// loadConfig 加载配置文件并应用命令行覆盖
// 优先级: 默认值 → YAML 文件 → 环境变量 → 命令行参数
func loadConfig(cmd *cobra.Command, opts *debateOptions) (*config.Config, error) {
	loader := config.NewLoader()
	if opts.configPath != "" {
		loader = loader.WithConfigPath(opts.configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if opts.personasPath != "" {
		cfg.Session.PersonasPath = opts.personasPath
	}
	if flags.Changed("scenarios") {
		cfg.Session.Scenarios = opts.scenarios
	}
	if flags.Changed("seed") {
		cfg.Session.Seed = opts.seed
	}
	if opts.transcriptPath != "" {
		cfg.Session.TranscriptPath = opts.transcriptPath
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = opts.metricsAddr
	}

	if cfg.Session.PersonasPath == "" {
		return nil, types.NewError(types.ErrInvalidConfig, "a persona file is required (--personas or session.personas_path)")
	}
	if err := cfg.Validate(); err != nil {
		return nil, types.NewError(types.ErrInvalidConfig, "invalid config").WithCause(err)
	}
	return cfg, nil
}

func openSink(path string, logger *zap.Logger) (transcript.Sink, error) {
	if path == "" {
		return transcript.Nop{}, nil
	}
	return transcript.OpenFile(path, logger)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}
