// internal/interview/questions/builder.go
package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "screener/internal/common/errors"
	"screener/internal/common/genai"
	"screener/internal/common/logger"
	"screener/internal/models"
)

// questionSchema validates one entry of the generated array. The backend
// wraps its JSON in arbitrary prose, so structure is never trusted.
const questionSchema = `{
	"type": "object",
	"properties": {
		"question": {"type": "string", "minLength": 1},
		"type": {"type": "string", "enum": ["text", "code"]}
	},
	"required": ["question", "type"]
}`

// Builder turns a candidate's tech stack into a fixed-size ordered
// question set via one generation call.
type Builder struct {
	config    *Config
	generator genai.Generator
	schema    *gojsonschema.Schema
	logger    logger.Logger
}

func NewBuilder(config *Config, generator genai.Generator, log logger.Logger) (*Builder, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(questionSchema))
	if err != nil {
		return nil, fmt.Errorf("compile question schema: %w", err)
	}
	return &Builder{
		config:    config,
		generator: generator,
		schema:    schema,
		logger:    log.WithFields(map[string]interface{}{"component": "question-builder"}),
	}, nil
}

// Build generates the question set for a tech stack. On any failure it
// returns a nil set together with a coded error; the caller must not
// advance to the answering phase. No retry happens here.
func (b *Builder) Build(ctx context.Context, techStack []string) ([]models.Question, error) {
	if len(techStack) == 0 {
		return nil, apperrors.NewValidationFailedError("tech stack must not be empty")
	}

	reply, err := b.generator.Generate(ctx, b.buildPrompt(techStack))
	if err != nil {
		return nil, err
	}

	set, err := b.parseQuestions(reply)
	if err != nil {
		return nil, err
	}

	b.logger.Info("question set generated", map[string]interface{}{
		"requested": b.config.QuestionCount,
		"wellFormed": len(set),
	})
	return set, nil
}

func (b *Builder) buildPrompt(techStack []string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf(
		"Generate exactly %d technical interview questions for a candidate with experience in: %s",
		b.config.QuestionCount, strings.Join(techStack, ", ")))
	parts = append(parts, "")
	parts = append(parts, "Return only a JSON array in this exact format:")
	parts = append(parts, `[`)
	parts = append(parts, `    {"question": "Your first question here", "type": "text"},`)
	parts = append(parts, `    {"question": "Your second question here", "type": "code"},`)
	parts = append(parts, `    {"question": "Your third question here", "type": "text"},`)
	parts = append(parts, `    {"question": "Your fourth question here", "type": "code"}`)
	parts = append(parts, `]`)

	return strings.Join(parts, "\n")
}

// parseQuestions extracts the JSON array embedded in the reply: first '['
// to last ']'. Entries failing the schema are skipped, order is preserved,
// and fewer than MinValid survivors is a format error.
func (b *Builder) parseQuestions(reply string) ([]models.Question, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end <= start {
		return nil, apperrors.NewGenerationFormatError("no JSON array found in reply")
	}

	var rawEntries []json.RawMessage
	if err := json.Unmarshal([]byte(reply[start:end+1]), &rawEntries); err != nil {
		return nil, apperrors.NewGenerationFormatError(fmt.Sprintf("array parse failed: %v", err))
	}

	set := make([]models.Question, 0, len(rawEntries))
	for _, raw := range rawEntries {
		result, err := b.schema.Validate(gojsonschema.NewBytesLoader(raw))
		if err != nil || !result.Valid() {
			continue
		}
		var q models.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			continue
		}
		set = append(set, q)
	}

	if len(set) < b.config.MinValid {
		return nil, apperrors.NewGenerationFormatError(fmt.Sprintf(
			"only %d well-formed questions, need at least %d", len(set), b.config.MinValid))
	}

	return set, nil
}
