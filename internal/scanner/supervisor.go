package scanner

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gamedex/internal/catalog"
	"gamedex/internal/config"
	"gamedex/internal/logging"
)

// Warmer pre-fetches cover art for newly accepted entries. Calls are
// fire-and-forget; readiness is resolved lazily at render time.
type Warmer interface {
	Warm(ctx context.Context, entry catalog.Entry)
}

// Progress is the observability signal emitted per valid protocol unit.
type Progress struct {
	SessionID  string
	Percentage int
	Phase      string
	GamesFound int
	Accepted   int
}

// Option configures the supervisor.
type Option func(*Supervisor)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(s *Supervisor) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// WithCandidates replaces the configured fallback chain.
func WithCandidates(candidates []Candidate) Option {
	return func(s *Supervisor) {
		s.candidates = candidates
	}
}

// WithTimeout overrides the session wall-clock bound.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Supervisor) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithProgressFunc registers a callback invoked per valid progress unit.
func WithProgressFunc(fn func(Progress)) Option {
	return func(s *Supervisor) {
		s.onProgress = fn
	}
}

// WithCompletionFunc registers a callback invoked once per session on
// any terminal transition.
func WithCompletionFunc(fn func(Status)) Option {
	return func(s *Supervisor) {
		s.onComplete = fn
	}
}

// Supervisor owns the child-process lifecycle for scan sessions.
type Supervisor struct {
	merger     *catalog.Merger
	warmer     Warmer
	logger     *slog.Logger
	exec       Executor
	candidates []Candidate
	timeout    time.Duration
	onProgress func(Progress)
	onComplete func(Status)

	mu     sync.Mutex
	status Status
}

// New constructs a supervisor from configuration.
func New(cfg config.Scanner, merger *catalog.Merger, warmer Warmer, logger *slog.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		merger:     merger,
		warmer:     warmer,
		logger:     logging.NewComponentLogger(logger, "scanner"),
		exec:       commandExecutor{},
		candidates: CandidatesFromConfig(cfg),
		timeout:    time.Duration(cfg.Timeout) * time.Second,
		status:     Status{State: StateIdle},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches a new scan session. It rejects the request while a
// session is active; there is no queueing. The catalog is explicitly
// cleared before the first candidate is attempted.
func (s *Supervisor) Start(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.status.State.Active() {
		s.mu.Unlock()
		return "", ErrAlreadyRunning
	}
	sessionID := uuid.NewString()
	s.status = Status{
		State:     StateLaunching,
		SessionID: sessionID,
		StartedAt: time.Now().UTC(),
	}
	s.mu.Unlock()

	s.merger.Reset()
	s.logger.Info("scan session starting", logging.String(logging.FieldSessionID, sessionID))

	go s.run(ctx, sessionID)
	return sessionID, nil
}

// Status returns a point-in-time copy of the session state.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// run walks the candidate chain under one shared deadline.
func (s *Supervisor) run(ctx context.Context, sessionID string) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	attempted := 0
	lastLabel := ""
	lastCode := 0
	for _, candidate := range s.candidates {
		invocation, ok := candidate()
		if !ok {
			continue
		}
		attempted++
		lastLabel = invocation.Label

		s.transition(StateRunning, "")
		s.logger.Info("launching scan candidate",
			logging.String(logging.FieldSessionID, sessionID),
			logging.String("candidate", invocation.Label))

		err := s.exec.Run(runCtx, invocation.Binary, invocation.Args,
			func(line string) { s.handleStdout(sessionID, line) },
			func(line string) { s.handleStderr(line) })
		if err == nil {
			s.logger.Info("scan session succeeded",
				logging.String(logging.FieldSessionID, sessionID),
				logging.Int("games", s.merger.Len()))
			s.transition(StateSucceeded, "")
			return
		}

		if ctxErr := runCtx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				s.logger.Warn("scan session timed out",
					logging.String(logging.FieldSessionID, sessionID),
					logging.Duration("timeout", s.timeout))
				s.transition(StateTimedOut, ErrTimeout.Error())
			} else {
				s.transition(StateFailed, "scan canceled")
			}
			return
		}

		lastCode = exitCode(err)
		s.logger.Warn("scan candidate failed, advancing",
			logging.String(logging.FieldSessionID, sessionID),
			logging.String("candidate", invocation.Label),
			logging.Int("exit_code", lastCode),
			logging.Error(err))
	}

	if attempted == 0 {
		s.logger.Error("no scanner candidate available",
			logging.String(logging.FieldSessionID, sessionID))
		s.transition(StateFailed, ErrNoScannerAvailable.Error())
		return
	}

	failure := &ScanFailedError{Candidate: lastLabel, Code: lastCode}
	s.transition(StateFailed, failure.Error())
}

func (s *Supervisor) handleStdout(sessionID, line string) {
	unit, marked, err := parseProgressLine(line)
	if !marked {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			s.logger.Debug("scanner output", logging.String("line", trimmed))
		}
		return
	}
	if err != nil {
		// Malformed payloads are dropped; the scan continues.
		s.logger.Warn("malformed progress line discarded", logging.Error(err))
		return
	}

	accepted := s.merger.Merge(unit.Games)

	s.mu.Lock()
	if s.status.SessionID == sessionID && s.status.State.Active() {
		s.status.Percentage = unit.Percentage
		s.status.Phase = unit.Phase()
		s.status.GamesFound = unit.GamesFound
		s.status.Merged = s.merger.Len()
	}
	s.mu.Unlock()

	if s.warmer != nil {
		for _, entry := range accepted {
			entry := entry
			go s.warmer.Warm(context.Background(), entry)
		}
	}

	if s.onProgress != nil {
		s.onProgress(Progress{
			SessionID:  sessionID,
			Percentage: unit.Percentage,
			Phase:      unit.Phase(),
			GamesFound: unit.GamesFound,
			Accepted:   len(accepted),
		})
	}
}

func (s *Supervisor) handleStderr(line string) {
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		s.logger.Debug("scanner stderr", logging.String("line", trimmed))
	}
}

func (s *Supervisor) transition(state State, reason string) {
	s.mu.Lock()
	s.status.State = state
	s.status.Reason = reason
	if state.Terminal() {
		s.status.FinishedAt = time.Now().UTC()
		s.status.Merged = s.merger.Len()
	}
	terminal := state.Terminal()
	snapshot := s.status
	s.mu.Unlock()

	if terminal && s.onComplete != nil {
		s.onComplete(snapshot)
	}
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	// Spawn-level failures count the same as a non-zero exit for
	// fallback purposes.
	return -1
}
