package voice

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/voice-ledger/internal/capture"
	"github.com/dvloznov/voice-ledger/internal/draft"
	"github.com/dvloznov/voice-ledger/internal/interpret"
)

// Notice is a transient, user-dismissible error surfaced to the
// presentation layer. It auto-expires after the configured TTL.
type Notice struct {
	Message string    `json:"message"`
	Code    string    `json:"code"`
	At      time.Time `json:"at"`
}

// CategorySource provides the current category vocabulary for prompts.
type CategorySource interface {
	Categories() []string
}

// Pipeline wires capture, interpretation and reconciliation into the voice
// flow: a finished capture is interpreted asynchronously and lands as a
// pending draft, while every surfaced failure collapses into one transient
// notice. No failure is fatal; the pipeline always settles back to idle.
type Pipeline struct {
	session    *capture.Session
	interp     *interpret.Interpreter
	reconciler *draft.Reconciler
	categories CategorySource
	log        zerolog.Logger

	mu         sync.Mutex
	processing bool
	notice     *Notice
	noticeTTL  time.Duration

	done   chan struct{}
	loopWG sync.WaitGroup
	closed bool
}

// NewPipeline starts the event loop over the given collaborators.
func NewPipeline(session *capture.Session, interp *interpret.Interpreter, reconciler *draft.Reconciler, categories CategorySource, noticeTTL time.Duration, log zerolog.Logger) *Pipeline {
	p := &Pipeline{
		session:    session,
		interp:     interp,
		reconciler: reconciler,
		categories: categories,
		log:        log,
		noticeTTL:  noticeTTL,
		done:       make(chan struct{}),
	}
	p.loopWG.Add(1)
	go p.loop()
	return p
}

// Begin starts a capture session. Any visible notice is cleared first,
// matching the intent that starting over dismisses the previous failure.
func (p *Pipeline) Begin() error {
	p.DismissNotice()
	err := p.session.Start()
	if capErr, ok := err.(*capture.Error); ok {
		p.setNotice(capErr)
	}
	return err
}

// Cancel requests termination of the in-flight capture.
func (p *Pipeline) Cancel() error {
	return p.session.Stop()
}

// State reports the composite voice state: processing while an
// interpretation is in flight, otherwise whatever the capture session says.
func (p *Pipeline) State() capture.State {
	p.mu.Lock()
	processing := p.processing
	p.mu.Unlock()

	if processing {
		return capture.StateProcessing
	}
	return p.session.State()
}

// Notice returns the current visible notice, or nil when there is none or
// it has expired. Reading does not clear it.
func (p *Pipeline) Notice() *Notice {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.notice == nil {
		return nil
	}
	if time.Since(p.notice.At) > p.noticeTTL {
		p.notice = nil
		return nil
	}
	n := *p.notice
	return &n
}

// DismissNotice clears the visible notice explicitly.
func (p *Pipeline) DismissNotice() {
	p.mu.Lock()
	p.notice = nil
	p.mu.Unlock()
}

// Close aborts any in-flight capture and stops the event loop.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	err := p.session.Close()
	close(p.done)
	p.loopWG.Wait()
	return err
}

func (p *Pipeline) loop() {
	defer p.loopWG.Done()

	for {
		select {
		case <-p.done:
			return

		case text := <-p.session.Transcripts():
			p.handleTranscript(text)

		case capErr := <-p.session.Notices():
			p.setNotice(capErr)
		}
	}
}

// handleTranscript runs the transcript through interpretation and, on
// success, begins a pending draft. Stopping capture does not reach here;
// once a transcript is in, the interpretation runs to completion or error.
func (p *Pipeline) handleTranscript(text string) {
	p.mu.Lock()
	p.processing = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.processing = false
		p.mu.Unlock()
	}()

	parsed, err := p.interp.Interpret(context.Background(), text, p.categories.Categories())
	if err != nil {
		p.mu.Lock()
		p.notice = &Notice{Message: err.Error(), Code: "interpretation_failed", At: time.Now()}
		p.mu.Unlock()
		return
	}

	stamped := p.reconciler.Begin(parsed)
	p.log.Info().
		Str("kind", string(stamped.Kind)).
		Str("category", stamped.Category).
		Str("date", stamped.Date).
		Msg("Draft pending confirmation")
}

func (p *Pipeline) setNotice(capErr *capture.Error) {
	p.mu.Lock()
	p.notice = &Notice{Message: capErr.Message, Code: string(capErr.Code), At: time.Now()}
	p.mu.Unlock()
}
