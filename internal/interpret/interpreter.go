package interpret

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/voice-ledger/internal/domain"
)

// ErrInterpretationFailed is the single error every service or decode
// failure collapses into. Its message is shown to the user; the actual
// cause is only logged.
var ErrInterpretationFailed = errors.New(
	"Não foi possível interpretar a sua frase. Tente dizer algo como 'Gastei 10 euros em café'.")

// Model produces the raw structured-extraction answer for a prompt. It
// exists so the Gemini client can be swapped out in tests.
type Model interface {
	GenerateDraftJSON(ctx context.Context, prompt string) (string, error)
}

// Interpreter turns a transcript plus the current category vocabulary into
// a normalized draft transaction.
type Interpreter struct {
	model   Model
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// New creates an interpreter. timeout bounds each call to the model.
func New(model Model, timeout time.Duration, log zerolog.Logger) *Interpreter {
	return &Interpreter{
		model:   model,
		timeout: timeout,
		now:     time.Now,
		log:     log,
	}
}

// Interpret sends the transcript to the extraction model and decodes the
// answer. Every failure, from transport to shape mismatch, is reported as
// ErrInterpretationFailed; no partial draft is ever returned, and no retry
// is attempted here — the caller decides whether to prompt the user again.
func (i *Interpreter) Interpret(ctx context.Context, transcript string, categories []string) (domain.DraftTransaction, error) {
	prompt := buildPrompt(transcript, categories, i.now())

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	start := time.Now()
	raw, err := i.model.GenerateDraftJSON(ctx, prompt)
	if err != nil {
		i.log.Warn().Err(err).Str("transcript", transcript).Msg("Extraction model call failed")
		return domain.DraftTransaction{}, ErrInterpretationFailed
	}

	draft, err := decodeDraft(raw)
	if err != nil {
		i.log.Warn().Err(err).Str("raw", raw).Msg("Rejected malformed model output")
		return domain.DraftTransaction{}, ErrInterpretationFailed
	}

	i.log.Info().
		Dur("duration", time.Since(start)).
		Str("kind", string(draft.Kind)).
		Float64("amount", draft.Amount).
		Str("category", draft.Category).
		Msg("Transcript interpreted")

	return draft, nil
}
