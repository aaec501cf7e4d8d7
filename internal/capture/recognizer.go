package capture

import "sync"

// Recognizer is the platform speech capability boundary: one
// non-continuous, single-alternative utterance per Start, final transcript
// only (no interim results). A recognizer reports at most one transcript or
// one raw platform error code per session.
type Recognizer interface {
	// Start begins one capture session in the given locale. A synchronous
	// error means the session never opened.
	Start(locale string) error

	// Stop requests termination of the current session. The recognizer may
	// still deliver a final transcript or an error afterwards.
	Stop()

	// Abort tears the current session down immediately. The recognizer
	// reports the teardown as an "aborted" platform error.
	Abort()

	// Transcripts delivers final transcript texts.
	Transcripts() <-chan string

	// Errors delivers raw platform error codes.
	Errors() <-chan string
}

// PushRecognizer adapts a remote recognizer, such as the Web Speech API
// running in the browser, that reports its outcome over HTTP. Start only
// opens the session window; the remote side pushes the final transcript or
// error code into it.
type PushRecognizer struct {
	mu     sync.Mutex
	active bool

	transcripts chan string
	errs        chan string
}

// NewPushRecognizer returns a recognizer with room for one buffered
// outcome, matching the single-utterance contract.
func NewPushRecognizer() *PushRecognizer {
	return &PushRecognizer{
		transcripts: make(chan string, 1),
		errs:        make(chan string, 1),
	}
}

// Start implements the Recognizer interface.
func (r *PushRecognizer) Start(_ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = true
	return nil
}

// Stop implements the Recognizer interface. The remote side owns actual
// termination and will push the final outcome itself.
func (r *PushRecognizer) Stop() {}

// Abort implements the Recognizer interface.
func (r *PushRecognizer) Abort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}
	r.active = false
	select {
	case r.errs <- "aborted":
	default:
	}
}

// PushTranscript delivers the remote recognizer's final transcript.
// It reports whether a session was open to receive it.
func (r *PushRecognizer) PushTranscript(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return false
	}
	r.active = false
	select {
	case r.transcripts <- text:
	default:
	}
	return true
}

// PushError delivers the remote recognizer's platform error code.
// It reports whether a session was open to receive it.
func (r *PushRecognizer) PushError(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return false
	}
	r.active = false
	select {
	case r.errs <- code:
	default:
	}
	return true
}

// Transcripts implements the Recognizer interface.
func (r *PushRecognizer) Transcripts() <-chan string {
	return r.transcripts
}

// Errors implements the Recognizer interface.
func (r *PushRecognizer) Errors() <-chan string {
	return r.errs
}
