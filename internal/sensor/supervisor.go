// Package sensor supervises the external network-sensing process: launch,
// stdout consumption through the line framer into the ingestor, crash
// detection, and restart with a fixed backoff. The stream loop is built to
// run indefinitely: bad lines, failed ingests and process exits are all
// absorbed, logged, and survived.
package sensor

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/netsentry/netsentry/internal/errors"
	"github.com/netsentry/netsentry/internal/framing"
	"github.com/netsentry/netsentry/internal/ingest"
	"github.com/netsentry/netsentry/internal/logger"
	"github.com/netsentry/netsentry/internal/observability/metrics"
)

// State is the supervisor's lifecycle state.
type State string

const (
	StateStopped   State = "stopped"
	StateLaunching State = "launching"
	StateRunning   State = "running"
	StateExited    State = "exited"
)

// AlertSink receives decoded sensor events. Satisfied by *ingest.Ingestor.
type AlertSink interface {
	Ingest(ctx context.Context, raw ingest.RawEvent) (uint, error)
}

// Config holds the supervisor's operational parameters.
type Config struct {
	// RestartDelay is the fixed backoff between a sensor exit and the next
	// launch attempt.
	RestartDelay time.Duration

	// ShutdownGrace bounds how long Stop waits for the sensor to honor a
	// termination signal before killing it.
	ShutdownGrace time.Duration
}

const (
	defaultRestartDelay  = 3 * time.Second
	defaultShutdownGrace = 5 * time.Second

	stdoutChunkSize = 32 * 1024
)

// Supervisor owns the external process handle and its I/O streams. All
// stream reading and restart scheduling happens on background goroutines;
// callers are never blocked on sensor I/O.
type Supervisor struct {
	factory Factory
	sink    AlertSink
	cfg     Config
	metrics *metrics.Metrics
	log     logger.Logger

	mu     sync.Mutex
	state  State
	proc   Process
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Supervisor. metrics may be nil. Zero config values fall
// back to the defaults.
func New(factory Factory, sink AlertSink, cfg Config, m *metrics.Metrics, log logger.Logger) *Supervisor {
	if cfg.RestartDelay <= 0 {
		cfg.RestartDelay = defaultRestartDelay
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = defaultShutdownGrace
	}
	return &Supervisor{
		factory: factory,
		sink:    sink,
		cfg:     cfg,
		metrics: m,
		log:     log.With(logger.String("component", "sensor")),
		state:   StateStopped,
	}
}

// Start launches the supervision loop. Calling Start on a running
// supervisor is a no-op.
func (s *Supervisor) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stop cancels the restart timer, signals a running sensor to terminate,
// and waits for the loop to exit. If the sensor ignores the signal past the
// grace period it is killed; Stop never hangs indefinitely.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	s.terminateCurrent()

	select {
	case <-done:
		return nil
	case <-time.After(s.cfg.ShutdownGrace):
		s.killCurrent()
	case <-ctx.Done():
		s.killCurrent()
	}

	select {
	case <-done:
		return nil
	case <-time.After(s.cfg.ShutdownGrace):
		return errors.New("sensor shutdown timed out")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// terminateCurrent and killCurrent re-read s.proc each time: a launch may
// have completed after cancellation was delivered, so a snapshot taken once
// at the top of Stop could miss the just-spawned process.
func (s *Supervisor) terminateCurrent() {
	s.mu.Lock()
	proc := s.proc
	s.mu.Unlock()
	if proc != nil {
		_ = proc.Terminate()
	}
}

func (s *Supervisor) killCurrent() {
	s.mu.Lock()
	proc := s.proc
	s.mu.Unlock()
	if proc != nil {
		_ = proc.Kill()
	}
}

// run drives the Launching → Running → Exited → Launching cycle until the
// supervisor context is cancelled. The default policy never terminates
// permanently: every exit, including a spawn failure, schedules exactly one
// restart after the configured delay.
func (s *Supervisor) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer s.setState(StateStopped)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.setState(StateLaunching)
		generation := uuid.NewString()[:8]
		genLog := s.log.With(logger.String("generation", generation))

		proc := s.factory()
		stdout, stderr, err := proc.Start()
		if err != nil {
			// Spawn failure: straight to Exited, never Running.
			genLog.Error("sensor spawn failed", logger.Error(err))
			s.setState(StateExited)
		} else {
			s.setProc(proc)
			s.setState(StateRunning)
			genLog.Info("sensor running")

			// Cancellation may land while Start is in flight, before Stop
			// can see the process. This watcher guarantees the signal is
			// still delivered to the live child.
			generationDone := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
					_ = proc.Terminate()
				case <-generationDone:
				}
			}()

			var readers sync.WaitGroup
			readers.Add(2)
			go func() {
				defer readers.Done()
				s.consumeStdout(ctx, stdout, genLog)
			}()
			go func() {
				defer readers.Done()
				s.drainStderr(stderr, genLog)
			}()
			readers.Wait()

			exitErr := proc.Wait()
			close(generationDone)
			s.setProc(nil)
			s.setState(StateExited)
			if exitErr != nil {
				genLog.Warn("sensor exited", logger.Error(exitErr))
			} else {
				genLog.Warn("sensor exited", logger.String("cause", "clean exit"))
			}
		}

		s.metrics.SensorRestartScheduled()
		timer := time.NewTimer(s.cfg.RestartDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// consumeStdout feeds the sensor's stdout through the framer and hands each
// complete line to handleLine. At stream end an unterminated trailing
// fragment is logged and dropped.
func (s *Supervisor) consumeStdout(ctx context.Context, r io.Reader, genLog logger.Logger) {
	framer := framing.NewFramer()
	buf := make([]byte, stdoutChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			for _, line := range framer.Push(buf[:n]) {
				s.handleLine(ctx, line, genLog)
			}
		}
		if err != nil {
			if remainder := framer.Remainder(); remainder != "" {
				genLog.Warn("dropping unterminated sensor output",
					logger.String("data", remainder))
			}
			if !errors.Is(err, io.EOF) {
				genLog.Warn("sensor stdout read failed", logger.Error(err))
			}
			return
		}
	}
}

// handleLine decodes and ingests one framed line. Neither a decode failure
// nor an ingest failure stops the stream.
func (s *Supervisor) handleLine(ctx context.Context, line string, genLog logger.Logger) {
	raw, err := ingest.DecodeEvent([]byte(line))
	if err != nil {
		s.metrics.DecodeFailed()
		genLog.Warn("undecodable sensor line",
			logger.String("data", line),
			logger.Error(err))
		return
	}
	if _, err := s.sink.Ingest(ctx, raw); err != nil {
		genLog.Warn("failed to ingest sensor event", logger.Error(err))
	}
}

// drainStderr forwards the sensor's stderr to the log. It is never parsed
// as data.
func (s *Supervisor) drainStderr(r io.Reader, genLog logger.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		genLog.Info("sensor stderr", logger.String("output", scanner.Text()))
	}
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.metrics.SensorStateChanged(string(state))
}

func (s *Supervisor) setProc(proc Process) {
	s.mu.Lock()
	s.proc = proc
	s.mu.Unlock()
}
