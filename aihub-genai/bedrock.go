package aihubgenai

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/bedrockruntime"
	"github.com/aws/aws-sdk-go/service/bedrockruntime/bedrockruntimeiface"
)

// BedrockProvider streams chat completions from Bedrock models. The Converse
// API gives every Bedrock model family the same request shape, so one
// provider covers Claude, Llama, and Mistral.
type BedrockProvider struct {
	API     bedrockruntimeiface.BedrockRuntimeAPI
	ModelID string
}

func (p *BedrockProvider) Stream(ctx context.Context, req Request, fn StreamFunc) (string, error) {
	out, err := p.API.ConverseStreamWithContext(ctx, buildConverseInput(p.ModelID, req))
	if err != nil {
		return "", fmt.Errorf("converse stream failed for model, %v: %w", p.ModelID, err)
	}

	stream := out.GetStream()
	defer stream.Close()

	var full strings.Builder
	for event := range stream.Events() {
		delta, ok := event.(*bedrockruntime.ContentBlockDeltaEvent)
		if !ok || delta.Delta == nil || delta.Delta.Text == nil {
			continue
		}

		text := aws.StringValue(delta.Delta.Text)
		full.WriteString(text)
		if err := fn(text); err != nil {
			return full.String(), err
		}
	}
	if err := stream.Err(); err != nil {
		return full.String(), fmt.Errorf("converse stream interrupted for model, %v: %w", p.ModelID, err)
	}

	return full.String(), nil
}

// buildConverseInput maps a chat request onto the Converse API shapes.
func buildConverseInput(modelID string, req Request) *bedrockruntime.ConverseStreamInput {
	var messages []*bedrockruntime.Message
	for _, turn := range req.History {
		role := bedrockruntime.ConversationRoleUser
		if turn.Role == RoleAI {
			role = bedrockruntime.ConversationRoleAssistant
		}
		messages = append(messages, &bedrockruntime.Message{
			Role:    aws.String(role),
			Content: []*bedrockruntime.ContentBlock{{Text: aws.String(turn.Content)}},
		})
	}
	messages = append(messages, &bedrockruntime.Message{
		Role:    aws.String(bedrockruntime.ConversationRoleUser),
		Content: []*bedrockruntime.ContentBlock{{Text: aws.String(req.Input)}},
	})

	input := &bedrockruntime.ConverseStreamInput{
		ModelId:  aws.String(modelID),
		Messages: messages,
		InferenceConfig: &bedrockruntime.InferenceConfiguration{
			MaxTokens:   aws.Int64(req.MaxTokens),
			Temperature: aws.Float64(req.Temperature),
		},
	}
	if req.System != "" {
		input.System = []*bedrockruntime.SystemContentBlock{{Text: aws.String(req.System)}}
	}

	return input
}
