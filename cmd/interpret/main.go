// One-shot interpretation: feed a transcript through the extraction model
// and print the resulting draft. Useful for tuning the prompt without
// going through the capture flow.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/dvloznov/voice-ledger/internal/config"
	"github.com/dvloznov/voice-ledger/internal/domain"
	"github.com/dvloznov/voice-ledger/internal/interpret"
	"github.com/dvloznov/voice-ledger/internal/logger"
)

func main() {
	_ = godotenv.Load()

	var (
		transcript = flag.String("transcript", "", "Transcript text to interpret")
		categories = flag.String("categories", "", "Comma-separated category vocabulary (default: built-in defaults)")
	)
	flag.Parse()

	log := logger.New()

	if strings.TrimSpace(*transcript) == "" {
		log.Fatal().Msg("A -transcript is required")
	}

	cfg := config.Load()

	vocab := domain.DefaultCategories()
	if *categories != "" {
		vocab = nil
		for _, c := range strings.Split(*categories, ",") {
			if c = strings.TrimSpace(c); c != "" {
				vocab = append(vocab, c)
			}
		}
	}

	model := interpret.NewGeminiModel(cfg.GeminiModel, cfg.GeminiAPIKey)
	interpreter := interpret.New(model, cfg.InterpretTimeout, log)

	draft, err := interpreter.Interpret(context.Background(), *transcript, vocab)
	if err != nil {
		log.Fatal().Err(err).Msg("Interpretation failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(draft); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode draft")
	}
}
