// Package classify labels free text with a fixed sentiment taxonomy by
// forcing the model through a tool call, so the output is structured JSON
// rather than prose that needs parsing.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/docrag/docrag/internal/apperrors"
	"github.com/docrag/docrag/internal/config"
	"github.com/docrag/docrag/internal/llm"
)

const (
	LabelPositive = "Positivo"
	LabelNegative = "Negativo"
	LabelNeutral  = "Neutro"
)

const toolName = "registrar_sentimento"

const classifySystemPrompt = "You are a sentiment classifier. " +
	"Classify the user's text and report the result through the tool. " +
	"Always call the tool exactly once."

// Request carries the text to classify.
type Request struct {
	Text string `json:"text"`
}

// Result is the structured classification output.
type Result struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Model      string  `json:"model,omitempty"`
	LatencyMs  int64   `json:"latency_ms"`
}

type toolArguments struct {
	Sentimento string  `json:"sentimento"`
	Confianca  float64 `json:"confianca"`
}

type Service struct {
	gateway llm.Gateway
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewService(gateway llm.Gateway, cfg config.LLMConfig, logger *slog.Logger) *Service {
	return &Service{
		gateway: gateway,
		model:   cfg.ChatModel,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Classify forces a single tool call and validates the returned arguments
// against the label set. Schema violations by the model surface as
// ErrClassificationParse so callers do not retry them blindly.
func (s *Service) Classify(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text required", apperrors.ErrInvalidInput)
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.gateway.Chat(callCtx, llm.ChatRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: "system", Content: classifySystemPrompt},
			{Role: "user", Content: req.Text},
		},
		Tools:     []llm.Tool{sentimentTool()},
		ForceTool: toolName,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrGenerationUnavailable, err)
	}

	args, err := extractToolCall(resp)
	if err != nil {
		s.logger.Warn("classification schema violation",
			"model", resp.Model,
			"error", err,
		)
		return nil, err
	}

	return &Result{
		Label:      args.Sentimento,
		Confidence: args.Confianca,
		Model:      resp.Model,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

func extractToolCall(resp *llm.ChatResponse) (*toolArguments, error) {
	if len(resp.ToolCalls) == 0 {
		return nil, fmt.Errorf("%w: model returned no tool call", apperrors.ErrClassificationParse)
	}

	call := resp.ToolCalls[0]
	if call.Name != toolName {
		return nil, fmt.Errorf("%w: unexpected tool %q", apperrors.ErrClassificationParse, call.Name)
	}

	var args toolArguments
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return nil, fmt.Errorf("%w: malformed arguments: %v", apperrors.ErrClassificationParse, err)
	}

	switch args.Sentimento {
	case LabelPositive, LabelNegative, LabelNeutral:
	default:
		return nil, fmt.Errorf("%w: unknown label %q", apperrors.ErrClassificationParse, args.Sentimento)
	}

	if args.Confianca < 0 || args.Confianca > 1 {
		return nil, fmt.Errorf("%w: confidence %v out of range", apperrors.ErrClassificationParse, args.Confianca)
	}

	return &args, nil
}

func sentimentTool() llm.Tool {
	return llm.Tool{
		Name:        toolName,
		Description: "Registra o sentimento identificado no texto analisado.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"sentimento": map[string]any{
					"type":        "string",
					"enum":        []string{LabelPositive, LabelNegative, LabelNeutral},
					"description": "Sentimento predominante do texto.",
				},
				"confianca": map[string]any{
					"type":        "number",
					"description": "Confianca da classificacao entre 0 e 1.",
				},
			},
			"required": []string{"sentimento", "confianca"},
		},
	}
}
