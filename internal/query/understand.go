package query

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	_ "embed"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/hirelens/hirelens/internal/catalog"
	"github.com/hirelens/hirelens/internal/logger"
)

//go:embed prompt.md
var promptTemplate string

const defaultTimeout = 20 * time.Second

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// rewriteSchema is the fixed extraction schema sent with every rewrite call.
// Every field except rewrite may come back absent or empty.
var rewriteSchema = &genai.Schema{
	Type:     genai.TypeObject,
	Required: []string{"rewrite"},
	Properties: map[string]*genai.Schema{
		"rewrite":         {Type: genai.TypeString},
		"durations":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeInteger}},
		"job_levels":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"languages":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"test_type_codes": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
}

type rewriteResponse struct {
	Rewrite       string   `json:"rewrite"`
	Durations     []int    `json:"durations"`
	JobLevels     []string `json:"job_levels"`
	Languages     []string `json:"languages"`
	TestTypeCodes []string `json:"test_type_codes"`
}

// Understander turns raw query text into a StructuredQuery. The external
// rewrite call is best-effort: any failure, timeout or schema violation falls
// back to the offline regex parser and never propagates upward.
type Understander struct {
	generator jsonGenerator
	timeout   time.Duration
	logger    *zap.Logger
	maxLogLen int
}

// NewUnderstander creates an Understander. A nil generator is allowed and
// means every query takes the offline fallback path.
func NewUnderstander(generator jsonGenerator, log *zap.Logger, timeout time.Duration, maxLogLength int) *Understander {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxLogLength <= 0 {
		maxLogLength = 200
	}
	return &Understander{
		generator: generator,
		timeout:   timeout,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Understand maps raw query text to a normalized structured query.
func (u *Understander) Understand(ctx context.Context, raw string) StructuredQuery {
	if u.generator == nil {
		return fallbackParse(raw)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{QUERY}}", raw)

	callCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	u.logger.Debug("query rewrite request",
		zap.Int("prompt_length", len(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, u.maxLogLen)),
	)

	rawJSON, err := u.generator.GenerateJSON(callCtx, prompt, rewriteSchema)
	if err != nil {
		u.logger.Warn("query rewrite failed, using offline parser", zap.Error(err))
		return fallbackParse(raw)
	}

	u.logger.Debug("query rewrite response",
		zap.String("response_preview", logger.TruncateForLog(rawJSON, u.maxLogLen)),
	)

	var parsed rewriteResponse
	if err := json.Unmarshal([]byte(rawJSON), &parsed); err != nil {
		u.logger.Warn("query rewrite response is not valid json, using offline parser", zap.Error(err))
		return fallbackParse(raw)
	}

	return buildStructuredQuery(raw, parsed)
}

func buildStructuredQuery(raw string, parsed rewriteResponse) StructuredQuery {
	result := StructuredQuery{RawText: raw}

	result.RewrittenText = strings.TrimSpace(parsed.Rewrite)
	if result.RewrittenText == "" {
		result.RewrittenText = raw
	}

	for _, d := range parsed.Durations {
		if d > 0 && d <= 600 {
			result.DurationConstraints = append(result.DurationConstraints, d)
		}
	}

	seen := make(map[catalog.JobLevel]bool)
	for _, s := range parsed.JobLevels {
		if level, ok := catalog.ParseJobLevel(s); ok && !seen[level] {
			seen[level] = true
			result.JobLevelConstraints = append(result.JobLevelConstraints, level)
		}
	}

	for _, lang := range parsed.Languages {
		if lang = strings.TrimSpace(lang); lang != "" {
			result.LanguageConstraints = append(result.LanguageConstraints, lang)
		}
	}

	for _, code := range parsed.TestTypeCodes {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			result.TestTypeConstraints = append(result.TestTypeConstraints, code)
		}
	}

	return result
}
