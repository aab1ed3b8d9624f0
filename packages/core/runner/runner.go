package runner

import (
	"context"
	"math"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/rs/zerolog"

	"github.com/abdul-hamid-achik/hit/packages/core/config"
	"github.com/abdul-hamid-achik/hit/packages/http"
)

// BackoffMultiplier doubles the pause before each further retry.
const BackoffMultiplier = 2.0

// Retry-eligible status codes outside the 5xx range.
const (
	serverErrorStart = 500
	tooManyRequests  = 429
	requestTimeout   = 408
)

// State is the session's position in the retry state machine.
type State int

const (
	StatePending State = iota
	StateSent
	StateRetrying
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSent:
		return "sent"
	case StateRetrying:
		return "retrying"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transport is the collaborator contract: one synchronous attempt per call.
type Transport interface {
	Send(ctx context.Context, d *http.Descriptor) (*http.Response, error)
}

// Notifier observes retry decisions as they happen. Implementations render
// the per-attempt markers; a nil notifier keeps the session silent.
type Notifier interface {
	// RetryAfterStatus fires when a retry-eligible status triggers a retry,
	// before the backoff pause.
	RetryAfterStatus(status int)
	// RetryAfterFailure fires when a transport failure triggers a retry,
	// before the backoff pause.
	RetryAfterFailure(err error)
	// RetryAttempt fires right before retry n (1-based) is sent.
	RetryAttempt(n int)
}

// Outcome is the terminal result of one session. Exactly one of Response and
// Err is set: a response, retry-eligible or not, means the exchange
// completed; Err means no attempt ever produced a response.
type Outcome struct {
	Response *http.Response
	Err      error
	Kind     http.FailureKind // meaningful only when Err is set
	Attempts int
	// Failed marks a sustained retry-eligible status: the budget was spent
	// on actual retries and the final response is still retry-eligible. The
	// response is rendered regardless; only the exit classification changes.
	Failed bool
}

// Session owns the attempt counter and backoff schedule for one invocation.
// It is not reusable; create a new Session per request.
type Session struct {
	transport  Transport
	notifier   Notifier
	log        zerolog.Logger
	sleep      func(time.Duration)
	retry      int
	retryDelay float64 // seconds
	state      State
}

type SessionOption func(*Session)

func NewSession(transport Transport, opts ...SessionOption) *Session {
	s := &Session{
		transport:  transport,
		log:        zerolog.Nop(),
		sleep:      time.Sleep,
		retry:      config.DefaultRetry,
		retryDelay: config.DefaultRetryDelay,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithRetry sets how many retries follow the initial attempt.
func WithRetry(n int) SessionOption {
	return func(s *Session) {
		s.retry = n
	}
}

// WithRetryDelay sets the base backoff delay in seconds.
func WithRetryDelay(seconds float64) SessionOption {
	return func(s *Session) {
		s.retryDelay = seconds
	}
}

func WithNotifier(n Notifier) SessionOption {
	return func(s *Session) {
		s.notifier = n
	}
}

func WithLogger(log zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.log = log
	}
}

// State reports the session's current machine state.
func (s *Session) State() State {
	return s.state
}

// Retryable reports whether a status code is retry-eligible.
func Retryable(status int) bool {
	return status >= serverErrorStart || status == tooManyRequests || status == requestTimeout
}

// Delay returns the blocking pause before retry n (1-based):
// retryDelay * 2^(n-1) seconds.
func (s *Session) Delay(n int) time.Duration {
	seconds := s.retryDelay * math.Pow(BackoffMultiplier, float64(n-1))
	return time.Duration(seconds * float64(time.Second))
}

// Run drives the session to a terminal outcome. Total attempts never exceed
// retry+1; the final attempt's result is forwarded as-is once the budget
// runs out.
func (s *Session) Run(ctx context.Context, d *http.Descriptor) *Outcome {
	maxAttempts := s.retry + 1

	var lastResp *http.Response
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 && s.notifier != nil {
			s.notifier.RetryAttempt(attempt - 1)
		}

		s.state = StateSent
		resp, err := s.transport.Send(ctx, d)
		lastResp, lastErr = resp, err

		if err != nil {
			s.log.Debug().Err(err).
				Int("attempt", attempt).
				Stringer("kind", http.ClassifyFailure(err)).
				Msg("attempt failed")
		} else {
			s.log.Debug().
				Int("attempt", attempt).
				Int("status", resp.StatusCode).
				Str("size", bytefmt.ByteSize(uint64(len(resp.Body)))).
				Dur("elapsed", resp.Timing.TotalTime).
				Msg("attempt completed")

			if !Retryable(resp.StatusCode) {
				s.state = StateSucceeded
				return &Outcome{Response: resp, Attempts: attempt}
			}
		}

		if attempt == maxAttempts {
			break
		}

		s.state = StateRetrying
		if s.notifier != nil {
			if err != nil {
				s.notifier.RetryAfterFailure(err)
			} else {
				s.notifier.RetryAfterStatus(resp.StatusCode)
			}
		}

		delay := s.Delay(attempt)
		s.log.Debug().Dur("delay", delay).Int("retry", attempt).Msg("backing off")
		s.sleep(delay)
	}

	if lastErr != nil {
		s.state = StateFailed
		return &Outcome{
			Err:      lastErr,
			Kind:     http.ClassifyFailure(lastErr),
			Attempts: maxAttempts,
		}
	}

	if s.retry > 0 {
		// Sustained retry-eligible status: still delivered, but escalated.
		s.state = StateFailed
		return &Outcome{Response: lastResp, Attempts: maxAttempts, Failed: true}
	}

	s.state = StateSucceeded
	return &Outcome{Response: lastResp, Attempts: maxAttempts}
}
