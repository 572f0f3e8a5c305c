package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/BaSui01/senate/agent/senate"
	"github.com/BaSui01/senate/internal/transcript"
	"github.com/BaSui01/senate/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// =============================================================================
// 💬 交互式会话
// =============================================================================

// 终端提示语
const (
	PromptCommand  = "Continue conversation (C) or ask a senator a question (Q)? (C/Q): "
	PromptResponse = "Your response: "
	PromptSenator  = "Which senator would you like to ask? (Enter Senator's name): "
	PromptQuestion = "What is your question for Senator %s? "

	MsgNotFound      = "Senator not found. Please enter the correct name."
	MsgInvalidChoice = "Invalid choice. Please enter 'C' to continue conversation or 'Q' to ask a senator a question."
	HeaderProblem    = "Presenting problem: %s"
)

// 命令名称，同时作为指标标签
const (
	CommandContinue = "continue"
	CommandAsk      = "ask"
	CommandInvalid  = "invalid"
	CommandMiss     = "miss"
)

// Recorder 接收会话事件，metrics.Collector 实现了它
type Recorder interface {
	ObserveCommand(command string)
	ObserveScenario()
}

type nopRecorder struct{}

func (nopRecorder) ObserveCommand(string) {}
func (nopRecorder) ObserveScenario()      {}

// Config 会话参数
type Config struct {
	// 候选议题，每个场景随机选取一个
	Problems []string
	// 场景数量
	Scenarios int
	// 随机种子，0 表示按时间取种
	Seed int64
}

// Option 配置 Session
type Option func(*Session)

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSink 设置文字记录输出
func WithSink(sink transcript.Sink) Option {
	return func(s *Session) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithRecorder 设置事件记录器
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithStyle 为发言人标签启用 lipgloss 样式，输出为终端时使用
func WithStyle(enabled bool) Option {
	return func(s *Session) { s.styled = enabled }
}

// Session 在 io.Reader/io.Writer 上驱动辩论
type Session struct {
	orch      *senate.Orchestrator
	lines     *lineReader
	out       io.Writer
	sink      transcript.Sink
	recorder  Recorder
	logger    *zap.Logger
	rng       *rand.Rand
	problems  []string
	scenarios int
	styled    bool
	speaker   lipgloss.Style
	party     lipgloss.Style
}

// New 创建会话
func New(orch *senate.Orchestrator, cfg Config, in io.Reader, out io.Writer, opts ...Option) (*Session, error) {
	if orch == nil {
		return nil, types.NewError(types.ErrInvalidConfig, "session requires an orchestrator")
	}
	if len(cfg.Problems) == 0 {
		return nil, types.NewError(types.ErrInvalidConfig, "session requires at least one problem")
	}
	if cfg.Scenarios <= 0 {
		return nil, types.Errorf(types.ErrInvalidConfig, "scenarios must be positive, got %d", cfg.Scenarios)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Session{
		orch:      orch,
		lines:     newLineReader(in),
		out:       out,
		sink:      transcript.Nop{},
		recorder:  nopRecorder{},
		logger:    zap.NewNop(),
		rng:       rand.New(rand.NewSource(seed)),
		problems:  append([]string(nil), cfg.Problems...),
		scenarios: cfg.Scenarios,
		speaker:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		party:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("component", "session"))
	return s, nil
}

// Run 依次运行所有场景。输入结束（EOF）时正常返回 nil；
// 生成失败等致命错误直接返回。
func (s *Session) Run(ctx context.Context) error {
	sessionID := uuid.NewString()
	ctx = types.WithSessionID(ctx, sessionID)
	s.logger.Info("session started",
		zap.String("session_id", sessionID),
		zap.Int("scenarios", s.scenarios),
		zap.Int("senators", len(s.orch.Agents())),
	)

	for i := 0; i < s.scenarios; i++ {
		err := s.runScenario(ctx)
		if errors.Is(err, io.EOF) {
			s.logger.Info("input closed, ending session", zap.Int("scenario", i+1))
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// runScenario 运行一个议题：开场轮，随后处理 C/Q 命令直到 C 结束本场景
func (s *Session) runScenario(ctx context.Context) error {
	problem := s.problems[s.rng.Intn(len(s.problems))]
	conv := s.orch.Open(problem)
	s.recorder.ObserveScenario()
	s.logger.Debug("scenario opened", zap.String("conversation_id", conv.ID), zap.String("problem", problem))

	s.println(fmt.Sprintf(HeaderProblem, problem))
	if err := s.sink.Begin(problem); err != nil {
		return err
	}

	_, turns, err := s.orch.RunOpening(ctx, conv)
	if perr := s.emit(turns...); perr != nil && err == nil {
		err = perr
	}
	if err != nil {
		return err
	}

	for {
		choice, err := s.prompt(ctx, PromptCommand)
		if err != nil {
			return err
		}

		switch strings.ToUpper(strings.TrimSpace(choice)) {
		case "C":
			s.recorder.ObserveCommand(CommandContinue)
			return s.continueConversation(ctx, conv)
		case "Q":
			s.recorder.ObserveCommand(CommandAsk)
			if err := s.askSenator(ctx, conv); err != nil {
				return err
			}
		default:
			s.recorder.ObserveCommand(CommandInvalid)
			s.println(MsgInvalidChoice)
		}
	}
}

func (s *Session) continueConversation(ctx context.Context, conv *senate.Conversation) error {
	response, err := s.prompt(ctx, PromptResponse)
	if err != nil {
		return err
	}

	_, turns, err := s.orch.RunRound(ctx, conv, response)
	if perr := s.emit(turns...); perr != nil && err == nil {
		err = perr
	}
	return err
}

// askSenator 查找失败时打印提示并返回 nil，会话继续
func (s *Session) askSenator(ctx context.Context, conv *senate.Conversation) error {
	name, err := s.prompt(ctx, PromptSenator)
	if err != nil {
		return err
	}

	agent, ok := s.orch.Find(name)
	if !ok {
		s.recorder.ObserveCommand(CommandMiss)
		s.println(MsgNotFound)
		return nil
	}

	question, err := s.prompt(ctx, fmt.Sprintf(PromptQuestion, agent.Name()))
	if err != nil {
		return err
	}

	_, turn, err := s.orch.Ask(ctx, conv, agent.Name(), question)
	if types.IsRecoverable(err) {
		s.println(MsgNotFound)
		return nil
	}
	if err != nil {
		return err
	}
	return s.emit(turn)
}

// emit 打印发言并写入文字记录
func (s *Session) emit(turns ...senate.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	for _, t := range turns {
		s.println(s.render(t))
	}
	return s.sink.Append(turns...)
}

// render 终端显示沿用 "Senator {name} [{party}]: {answer}"
func (s *Session) render(t senate.Turn) string {
	label := "Senator " + t.Speaker
	party := "[" + t.Affiliation + "]"
	if s.styled {
		label = s.speaker.Render(label)
		party = s.party.Render(party)
	}
	return label + " " + party + ": " + t.Utterance
}

func (s *Session) prompt(ctx context.Context, text string) (string, error) {
	if _, err := io.WriteString(s.out, text); err != nil {
		return "", err
	}
	return s.lines.next(ctx)
}

func (s *Session) println(text string) {
	if _, err := io.WriteString(s.out, text+"\n"); err != nil {
		s.logger.Warn("write to output failed", zap.Error(err))
	}
}
