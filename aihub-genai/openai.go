package aihubgenai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
)

// OpenAIProvider streams chat completions from the OpenAI API.
type OpenAIProvider struct {
	Client  *openai.Client
	ModelID string
}

func (p *OpenAIProvider) Stream(ctx context.Context, req Request, fn StreamFunc) (string, error) {
	stream := p.Client.Chat.Completions.NewStreaming(ctx, buildChatParams(p.ModelID, req))
	defer stream.Close()

	var full strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		full.WriteString(delta)
		if err := fn(delta); err != nil {
			return full.String(), err
		}
	}
	if err := stream.Err(); err != nil {
		return full.String(), fmt.Errorf("chat completion stream failed for model, %v: %w", p.ModelID, err)
	}

	return full.String(), nil
}

// buildChatParams maps a chat request onto the chat completions shapes.
func buildChatParams(modelID string, req Request) openai.ChatCompletionNewParams {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, turn := range req.History {
		if turn.Role == RoleAI {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.Input))

	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(modelID),
		Messages:    messages,
		MaxTokens:   openai.Int(req.MaxTokens),
		Temperature: openai.Float(req.Temperature),
	}
}
