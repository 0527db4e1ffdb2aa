package classify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docrag/docrag/internal/apperrors"
	"github.com/docrag/docrag/internal/config"
	"github.com/docrag/docrag/internal/llm"
)

type fakeGateway struct {
	lastRequest llm.ChatRequest
	response    *llm.ChatResponse
	err         error
}

func (f *fakeGateway) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeGateway) Embed(_ context.Context, _ llm.EmbeddingRequest) (*llm.EmbeddingResponse, error) {
	return nil, fmt.Errorf("not used in tests")
}

func (f *fakeGateway) Provider(_ string) (llm.Provider, error) {
	return nil, fmt.Errorf("not used in tests")
}

func newTestService(gw *fakeGateway) *Service {
	return NewService(gw, config.LLMConfig{ChatModel: "gpt-4o-mini"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func toolResponse(args string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Model: "gpt-4o-mini",
		ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: toolName, Arguments: args},
		},
	}
}

func TestClassifyForcesToolCall(t *testing.T) {
	gw := &fakeGateway{response: toolResponse(`{"sentimento":"Positivo","confianca":0.92}`)}
	svc := newTestService(gw)

	res, err := svc.Classify(context.Background(), Request{Text: "Adorei o atendimento, muito rapido!"})
	require.NoError(t, err)

	assert.Equal(t, LabelPositive, res.Label)
	assert.InDelta(t, 0.92, res.Confidence, 1e-9)

	require.Len(t, gw.lastRequest.Tools, 1)
	assert.Equal(t, toolName, gw.lastRequest.Tools[0].Name)
	assert.Equal(t, toolName, gw.lastRequest.ForceTool)
}

func TestClassifyAllLabels(t *testing.T) {
	for _, label := range []string{LabelPositive, LabelNegative, LabelNeutral} {
		gw := &fakeGateway{response: toolResponse(fmt.Sprintf(`{"sentimento":%q,"confianca":0.8}`, label))}
		res, err := newTestService(gw).Classify(context.Background(), Request{Text: "texto"})
		require.NoError(t, err)
		assert.Equal(t, label, res.Label)
	}
}

func TestClassifyMissingToolCall(t *testing.T) {
	gw := &fakeGateway{response: &llm.ChatResponse{Model: "gpt-4o-mini", Content: "Positivo"}}
	_, err := newTestService(gw).Classify(context.Background(), Request{Text: "texto"})
	assert.ErrorIs(t, err, apperrors.ErrClassificationParse)
}

func TestClassifyUnknownLabel(t *testing.T) {
	gw := &fakeGateway{response: toolResponse(`{"sentimento":"Otimo","confianca":0.9}`)}
	_, err := newTestService(gw).Classify(context.Background(), Request{Text: "texto"})
	assert.ErrorIs(t, err, apperrors.ErrClassificationParse)
}

func TestClassifyMalformedArguments(t *testing.T) {
	gw := &fakeGateway{response: toolResponse(`{"sentimento": `)}
	_, err := newTestService(gw).Classify(context.Background(), Request{Text: "texto"})
	assert.ErrorIs(t, err, apperrors.ErrClassificationParse)
}

func TestClassifyConfidenceOutOfRange(t *testing.T) {
	gw := &fakeGateway{response: toolResponse(`{"sentimento":"Neutro","confianca":1.7}`)}
	_, err := newTestService(gw).Classify(context.Background(), Request{Text: "texto"})
	assert.ErrorIs(t, err, apperrors.ErrClassificationParse)
}

func TestClassifyGatewayFailure(t *testing.T) {
	gw := &fakeGateway{err: fmt.Errorf("upstream 529")}
	_, err := newTestService(gw).Classify(context.Background(), Request{Text: "texto"})
	assert.ErrorIs(t, err, apperrors.ErrGenerationUnavailable)
}

func TestClassifyRejectsBlankText(t *testing.T) {
	gw := &fakeGateway{}
	_, err := newTestService(gw).Classify(context.Background(), Request{Text: "   "})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
