package language

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	logx "github.com/erpbot/server/pkg/logger"
	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Translator translates text into a target language given as a BCP 47 tag.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

const translatorSystemPrompt = `Eres un traductor profesional. Traduce al {{.Language}} el texto que envíe el usuario.
Conserva cifras, fechas, códigos, nombres propios y formato (listas, saltos de línea, JSON).
Devuelve únicamente la traducción, sin comentarios ni comillas.`

// ChatTranslator translates through a chat model.
type ChatTranslator struct {
	model einomodel.BaseChatModel
	tpl   prompt.ChatTemplate
}

func NewChatTranslator(m einomodel.BaseChatModel) *ChatTranslator {
	return &ChatTranslator{
		model: m,
		tpl: prompt.FromMessages(schema.GoTemplate,
			schema.SystemMessage(translatorSystemPrompt),
			schema.UserMessage("{{.Text}}"),
		),
	}
}

// languageName returns the target language name written in that language, e.g. "español".
func languageName(target string) (string, error) {
	tag, err := xlanguage.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse target language %q: %w", target, err)
	}
	name := display.Self.Name(tag)
	if name == "" {
		return "", fmt.Errorf("unknown target language %q", target)
	}
	return name, nil
}

func (t *ChatTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	name, err := languageName(target)
	if err != nil {
		return "", err
	}
	msgs, err := t.tpl.Format(ctx, map[string]any{"Language": name, "Text": text})
	if err != nil {
		return "", fmt.Errorf("translator prompt render: %w", err)
	}
	out, err := t.model.Generate(ctx, msgs)
	if err != nil {
		logx.Error().Err(err).Str("target", target).Msg("translation failed")
		return "", fmt.Errorf("translate: %w", err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", errors.New("translate: empty result")
	}
	return strings.TrimSpace(out.Content), nil
}
