package capture

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State of the voice flow as seen by the user.
type State string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateProcessing State = "processing"
)

// Session drives one speech capture at a time over a Recognizer. It owns
// the idle/listening machine: Start is only valid from idle, Stop only from
// listening, and every outcome (transcript, error, abort) settles the
// session back to idle. Suppressed taxonomy codes (Aborted, and
// NoSpeechDetected while still listening) never reach the Notices channel.
type Session struct {
	mu    sync.Mutex
	state State

	rec        Recognizer
	locale     string
	retryDelay time.Duration
	log        zerolog.Logger

	transcripts chan string
	notices     chan *Error

	done   chan struct{}
	pumpWG sync.WaitGroup
	closed bool
}

// NewSession wraps rec in a session for the given spoken locale. A nil rec
// is allowed; Start will then fail with CapabilityUnavailable.
func NewSession(rec Recognizer, locale string, retryDelay time.Duration, log zerolog.Logger) *Session {
	s := &Session{
		state:       StateIdle,
		rec:         rec,
		locale:      locale,
		retryDelay:  retryDelay,
		log:         log,
		transcripts: make(chan string, 1),
		notices:     make(chan *Error, 1),
		done:        make(chan struct{}),
	}
	if rec != nil {
		s.pumpWG.Add(1)
		go s.pump()
	}
	return s
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start opens one capture session. Valid only from idle. A synchronous
// rejection by the recognizer is retried once after a short fixed delay
// before giving up with the Unknown code.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.rec == nil {
		return &Error{
			Code:    CodeCapabilityUnavailable,
			Message: "O reconhecimento de voz não está disponível.",
		}
	}
	if s.state != StateIdle {
		return ErrAlreadyListening
	}

	if err := s.rec.Start(s.locale); err != nil {
		s.log.Warn().Err(err).Msg("Recognizer rejected start, retrying once")
		time.Sleep(s.retryDelay)
		if err := s.rec.Start(s.locale); err != nil {
			s.log.Error().Err(err).Msg("Recognizer rejected start twice")
			return &Error{Code: CodeUnknown, Message: "Não foi possível iniciar o microfone."}
		}
	}

	s.state = StateListening
	s.log.Debug().Str("locale", s.locale).Msg("Capture session started")
	return nil
}

// Stop requests termination of the in-flight capture. Valid only from
// listening; the recognizer may still deliver a final transcript or error
// before the session settles to idle.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.state != StateListening {
		return ErrNotListening
	}

	s.rec.Stop()
	return nil
}

// Transcripts delivers non-empty transcript texts from completed captures.
func (s *Session) Transcripts() <-chan string {
	return s.transcripts
}

// Notices delivers the capture errors that must surface to the user.
// Suppressed codes are settled silently.
func (s *Session) Notices() <-chan *Error {
	return s.notices
}

// Close aborts any in-flight capture and stops event delivery. After Close
// returns, nothing is ever sent on Transcripts or Notices.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.rec != nil && s.state == StateListening {
		s.rec.Abort()
	}
	s.state = StateIdle
	close(s.done)
	s.mu.Unlock()

	s.pumpWG.Wait()
	return nil
}

// pump forwards recognizer outcomes, settling the state machine on each.
func (s *Session) pump() {
	defer s.pumpWG.Done()

	for {
		select {
		case <-s.done:
			return

		case text := <-s.rec.Transcripts():
			s.mu.Lock()
			s.state = StateIdle
			s.mu.Unlock()

			// Whitespace-only content is a no-result, not a transcript.
			text = strings.TrimSpace(text)
			if text == "" {
				s.log.Debug().Msg("Empty transcript, treating as no result")
				continue
			}
			s.deliverTranscript(text)

		case code := <-s.rec.Errors():
			s.mu.Lock()
			wasListening := s.state == StateListening
			s.state = StateIdle
			s.mu.Unlock()

			capErr := mapPlatformCode(code)
			if capErr.Code == CodeAborted || (capErr.Code == CodeNoSpeechDetected && wasListening) {
				s.log.Debug().Str("code", string(capErr.Code)).Msg("Suppressed capture error")
				continue
			}
			s.log.Warn().Str("platform_code", code).Str("code", string(capErr.Code)).Msg("Capture error")
			s.deliverNotice(capErr)
		}
	}
}

func (s *Session) deliverTranscript(text string) {
	select {
	case s.transcripts <- text:
	case <-s.done:
	}
}

func (s *Session) deliverNotice(capErr *Error) {
	select {
	case s.notices <- capErr:
	case <-s.done:
	}
}
