// Package poll tracks a long-running remote analyze operation to a terminal
// state. The state machine lives in Tracker, which is driven one Tick at a
// time and never sleeps; Poller is the timed driver used by the pipeline.
package poll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/docpipe/searchify/internal/docintel"
)

const (
	// DefaultInterval is the fixed wait between status probes.
	DefaultInterval = 5 * time.Second

	// DefaultMaxAttempts is the polling budget: the number of status probes
	// allowed before the operation is declared timed out (~5 minutes at the
	// default interval).
	DefaultMaxAttempts = 60
)

// ErrTimedOut is returned when the polling budget is exhausted before the
// operation reaches a terminal state.
var ErrTimedOut = errors.New("polling budget exhausted")

// Outcome is the result of a single Tick.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// StatusFunc probes the remote operation once.
type StatusFunc func(ctx context.Context) (*docintel.Operation, error)

// Tracker is the polling state machine. Each Tick consumes one attempt from
// the budget and probes the operation once. A probe error is treated the same
// as a still-pending status: it consumes the attempt and the caller ticks
// again. Once a terminal Outcome is returned the Tracker should not be ticked
// further.
type Tracker struct {
	check       StatusFunc
	maxAttempts int
	attempts    int
	last        *docintel.Operation
	lastErr     error
	logger      *slog.Logger
}

// NewTracker creates a Tracker with the given probe function and attempt
// budget.
func NewTracker(check StatusFunc, maxAttempts int, logger *slog.Logger) *Tracker {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		check:       check,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Tick performs one status probe and returns the resulting state.
func (t *Tracker) Tick(ctx context.Context) Outcome {
	if t.attempts >= t.maxAttempts {
		return OutcomeTimedOut
	}
	t.attempts++

	op, err := t.check(ctx)
	if err != nil {
		// Transient probe failures share the attempt budget with pending
		// statuses; the next tick tries again.
		t.lastErr = err
		t.logger.Warn("status check failed", "attempt", t.attempts, "error", err)
		return OutcomePending
	}
	t.last = op

	t.logger.Debug("status check", "attempt", t.attempts, "status", op.Status)

	switch op.Status {
	case docintel.StatusSucceeded:
		return OutcomeSucceeded
	case docintel.StatusFailed:
		return OutcomeFailed
	default:
		return OutcomePending
	}
}

// Operation returns the most recent successfully decoded status response, or
// nil if no probe has succeeded yet.
func (t *Tracker) Operation() *docintel.Operation { return t.last }

// Attempts returns the number of ticks consumed so far.
func (t *Tracker) Attempts() int { return t.attempts }

// Poller drives a Tracker on a fixed interval until a terminal outcome.
type Poller struct {
	Interval    time.Duration
	MaxAttempts int
	Logger      *slog.Logger
}

// New creates a Poller, filling in defaults for zero values.
func New(interval time.Duration, maxAttempts int, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{Interval: interval, MaxAttempts: maxAttempts, Logger: logger}
}

// errPending signals retry.Do that the operation has not reached a terminal
// state yet.
var errPending = errors.New("operation still pending")

// Wait blocks until the operation reaches a terminal state, the attempt
// budget runs out, or ctx is cancelled. On success it returns the final
// status response. A service-reported failure surfaces as *docintel.
// AnalysisError; budget exhaustion as ErrTimedOut. The last seen status
// response (possibly nil) is returned alongside the error in both cases.
func (p *Poller) Wait(ctx context.Context, operationID string, check StatusFunc) (*docintel.Operation, error) {
	tr := NewTracker(check, p.MaxAttempts, p.Logger)

	err := retry.Do(
		func() error {
			switch tr.Tick(ctx) {
			case OutcomeSucceeded:
				return nil
			case OutcomeFailed:
				ferr := &docintel.AnalysisError{OperationID: operationID}
				if op := tr.Operation(); op != nil && op.Error != nil {
					ferr.Code = op.Error.Code
					ferr.Message = op.Error.Message
				}
				return retry.Unrecoverable(ferr)
			case OutcomeTimedOut:
				return retry.Unrecoverable(ErrTimedOut)
			default:
				return errPending
			}
		},
		retry.Attempts(uint(p.MaxAttempts)),
		retry.Delay(p.Interval),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if errors.Is(err, errPending) {
			err = ErrTimedOut
		}
		return tr.Operation(), err
	}
	return tr.Operation(), nil
}
