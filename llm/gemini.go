package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultGeminiModel       = "gemini-2.0-flash"
	defaultGeminiTemperature = 0.4
)

var ErrNoCandidates = errors.New("no response candidates from gemini")

// Gemini adapts a genai model to the eino chat model interface. It answers in JSON mode and
// has no tool calling, so structured output is read from the message content.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

var _ model.BaseChatModel = (*Gemini)(nil)

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" || strings.HasPrefix(modelName, "gpt-") {
		modelName = defaultGeminiModel
	}
	gm := client.GenerativeModel(modelName)
	gm.ResponseMIMEType = "application/json"
	gm.SetTemperature(defaultGeminiTemperature)
	return &Gemini{client: client, model: gm}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	gm := g.model
	options := model.GetCommonOptions(nil, opts...)
	if options.Temperature != nil {
		clone := *g.model
		clone.SetTemperature(*options.Temperature)
		gm = &clone
	}
	resp, err := gm.GenerateContent(ctx, genai.Text(joinMessages(input)))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoCandidates
	}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	return schema.AssistantMessage(text.String(), nil), nil
}

func (g *Gemini) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := g.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// joinMessages flattens the conversation into one prompt, system text first.
func joinMessages(input []*schema.Message) string {
	var system, rest []string
	for _, m := range input {
		if m == nil || strings.TrimSpace(m.Content) == "" {
			continue
		}
		switch m.Role {
		case schema.System:
			system = append(system, m.Content)
		case schema.Assistant:
			rest = append(rest, "Assistant: "+m.Content)
		default:
			rest = append(rest, m.Content)
		}
	}
	return strings.Join(append(system, rest...), "\n\n")
}
