package capture

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dvloznov/voice-ledger/internal/logger"
)

// fakeRecognizer scripts the platform capability for tests.
type fakeRecognizer struct {
	mu          sync.Mutex
	startErrs   []error // popped per Start call; nil entry means success
	starts      int
	stops       int
	aborts      int
	transcripts chan string
	errs        chan string
}

func newFakeRecognizer() *fakeRecognizer {
	return &fakeRecognizer{
		transcripts: make(chan string, 1),
		errs:        make(chan string, 1),
	}
}

func (f *fakeRecognizer) Start(locale string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if len(f.startErrs) > 0 {
		err := f.startErrs[0]
		f.startErrs = f.startErrs[1:]
		return err
	}
	return nil
}

func (f *fakeRecognizer) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeRecognizer) Abort() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborts++
	select {
	case f.errs <- "aborted":
	default:
	}
}

func (f *fakeRecognizer) Transcripts() <-chan string { return f.transcripts }
func (f *fakeRecognizer) Errors() <-chan string      { return f.errs }

func newTestSession(rec Recognizer) *Session {
	return NewSession(rec, "pt-PT", time.Millisecond, logger.NewWithWriter(&bytes.Buffer{}))
}

func waitState(t *testing.T, s *Session, want State) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		if s.State() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("State() = %q, want %q", s.State(), want)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSessionStartAndTranscript(t *testing.T) {
	rec := newFakeRecognizer()
	s := newTestSession(rec)
	defer s.Close()

	if s.State() != StateIdle {
		t.Fatalf("initial State() = %q, want idle", s.State())
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if s.State() != StateListening {
		t.Fatalf("State() = %q after Start, want listening", s.State())
	}

	rec.transcripts <- "Gastei 15 euros no almoço"

	select {
	case text := <-s.Transcripts():
		if text != "Gastei 15 euros no almoço" {
			t.Errorf("transcript = %q", text)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for transcript")
	}

	waitState(t, s, StateIdle)
}

func TestSessionStartWhileListening(t *testing.T) {
	rec := newFakeRecognizer()
	s := newTestSession(rec)
	defer s.Close()

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Start(); !errors.Is(err, ErrAlreadyListening) {
		t.Errorf("second Start error = %v, want ErrAlreadyListening", err)
	}
	if rec.starts != 1 {
		t.Errorf("recognizer started %d times, want 1 (never two concurrent sessions)", rec.starts)
	}
}

func TestSessionStartWithoutCapability(t *testing.T) {
	s := NewSession(nil, "pt-PT", time.Millisecond, logger.NewWithWriter(&bytes.Buffer{}))
	defer s.Close()

	err := s.Start()
	var capErr *Error
	if !errors.As(err, &capErr) || capErr.Code != CodeCapabilityUnavailable {
		t.Errorf("Start error = %v, want CapabilityUnavailable", err)
	}
}

func TestSessionStartRetriesOnce(t *testing.T) {
	rec := newFakeRecognizer()
	rec.startErrs = []error{errors.New("busy")} // first attempt rejected
	s := newTestSession(rec)
	defer s.Close()

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed despite retry: %v", err)
	}
	if rec.starts != 2 {
		t.Errorf("recognizer started %d times, want 2", rec.starts)
	}
}

func TestSessionStartGivesUpAfterRetry(t *testing.T) {
	rec := newFakeRecognizer()
	rec.startErrs = []error{errors.New("busy"), errors.New("busy")}
	s := newTestSession(rec)
	defer s.Close()

	err := s.Start()
	var capErr *Error
	if !errors.As(err, &capErr) || capErr.Code != CodeUnknown {
		t.Errorf("Start error = %v, want Unknown after two rejections", err)
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %q after failed start, want idle", s.State())
	}
	if rec.starts != 2 {
		t.Errorf("recognizer started %d times, want exactly 2", rec.starts)
	}
}

func TestSessionStopOnlyFromListening(t *testing.T) {
	rec := newFakeRecognizer()
	s := newTestSession(rec)
	defer s.Close()

	if err := s.Stop(); !errors.Is(err, ErrNotListening) {
		t.Errorf("Stop from idle = %v, want ErrNotListening", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if rec.stops != 1 {
		t.Errorf("recognizer stopped %d times, want 1", rec.stops)
	}
}

func TestSessionEmptyTranscriptIsNoResult(t *testing.T) {
	rec := newFakeRecognizer()
	s := newTestSession(rec)
	defer s.Close()

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	rec.transcripts <- "   "

	waitState(t, s, StateIdle)

	select {
	case text := <-s.Transcripts():
		t.Errorf("Unexpected transcript %q for whitespace-only result", text)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSessionSuppressedErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"aborted", "aborted"},
		{"no speech while listening", "no-speech"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newFakeRecognizer()
			s := newTestSession(rec)
			defer s.Close()

			if err := s.Start(); err != nil {
				t.Fatalf("Start failed: %v", err)
			}
			rec.errs <- tt.code

			waitState(t, s, StateIdle)

			select {
			case n := <-s.Notices():
				t.Errorf("Unexpected notice %v for suppressed code %q", n, tt.code)
			case <-time.After(50 * time.Millisecond):
			}
		})
	}
}

func TestSessionSurfacedErrors(t *testing.T) {
	tests := []struct {
		platformCode string
		want         ErrorCode
	}{
		{"not-allowed", CodePermissionDenied},
		{"audio-capture", CodeAudioCaptureFailed},
		{"network", CodeNetworkFailure},
		{"something-new", CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.platformCode, func(t *testing.T) {
			rec := newFakeRecognizer()
			s := newTestSession(rec)
			defer s.Close()

			if err := s.Start(); err != nil {
				t.Fatalf("Start failed: %v", err)
			}
			rec.errs <- tt.platformCode

			select {
			case n := <-s.Notices():
				if n.Code != tt.want {
					t.Errorf("notice code = %q, want %q", n.Code, tt.want)
				}
				if n.Message == "" {
					t.Error("Expected a user-facing message")
				}
			case <-time.After(time.Second):
				t.Fatal("Timed out waiting for notice")
			}

			waitState(t, s, StateIdle)
		})
	}
}

func TestSessionCloseAbortsInFlight(t *testing.T) {
	rec := newFakeRecognizer()
	s := newTestSession(rec)

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if rec.aborts != 1 {
		t.Errorf("recognizer aborted %d times, want 1", rec.aborts)
	}
	if err := s.Start(); !errors.Is(err, ErrClosed) {
		t.Errorf("Start after Close = %v, want ErrClosed", err)
	}
}

func TestPushRecognizerRejectsOutsideSession(t *testing.T) {
	r := NewPushRecognizer()

	if r.PushTranscript("hello") {
		t.Error("Expected PushTranscript to be rejected before Start")
	}
	if r.PushError("network") {
		t.Error("Expected PushError to be rejected before Start")
	}

	if err := r.Start("pt-PT"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !r.PushTranscript("hello") {
		t.Error("Expected PushTranscript to be accepted during session")
	}
	// Single-utterance contract: the session closed with the transcript.
	if r.PushTranscript("again") {
		t.Error("Expected second PushTranscript to be rejected")
	}
}
