package language

import (
	"context"
	"strings"

	logx "github.com/erpbot/server/pkg/logger"
)

const (
	// Spanish is the only language the assistant answers in.
	Spanish = "es"
	// FallbackMessage is returned when a response cannot be checked or translated.
	FallbackMessage = "Lo siento, hubo un error al procesar tu solicitud."
)

// Normalizer forces responses into Spanish.
type Normalizer struct {
	detector   Detector
	translator Translator
}

func NewNormalizer(detector Detector, translator Translator) *Normalizer {
	return &Normalizer{detector: detector, translator: translator}
}

// EnsureSpanish returns text unchanged when it is Spanish and its translation
// otherwise. Text with no letters cannot be detected and yields
// FallbackMessage, as does any other failure.
func (n *Normalizer) EnsureSpanish(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		logx.Warn().Msg("empty response, nothing to normalize")
		return FallbackMessage
	}
	if letterCount(text) == 0 {
		logx.Warn().Msg("response has no letters, language undetectable")
		return FallbackMessage
	}

	lang, err := n.detector.Detect(text)
	if err != nil {
		logx.Warn().Err(err).Msg("language detection failed")
		return FallbackMessage
	}
	logx.Debug().Str("language", lang).Msg("response language detected")
	if lang == Spanish {
		return text
	}

	translated, err := n.translator.Translate(ctx, text, Spanish)
	if err != nil {
		logx.Error().Err(err).Str("language", lang).Msg("response translation failed")
		return FallbackMessage
	}
	return translated
}
