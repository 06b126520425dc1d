package aihubgenai

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/service/bedrockruntime/bedrockruntimeiface"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// KeyFunc returns the API key for a third-party provider.
type KeyFunc func(ctx context.Context) (string, error)

// Factory resolves the model names accepted in chat requests to providers.
type Factory struct {
	Bedrock   bedrockruntimeiface.BedrockRuntimeAPI
	OpenAIKey KeyFunc

	mu     sync.Mutex
	openai *openai.Client
}

// Provider returns the provider serving the named model.
func (f *Factory) Provider(ctx context.Context, modelName string) (Provider, error) {
	if modelID, ok := bedrockModels[modelName]; ok {
		return &BedrockProvider{API: f.Bedrock, ModelID: modelID}, nil
	}
	if modelID, ok := openaiModels[modelName]; ok {
		client, err := f.openaiClient(ctx)
		if err != nil {
			return nil, err
		}
		return &OpenAIProvider{Client: client, ModelID: modelID}, nil
	}
	return nil, fmt.Errorf("%v is not a currently supported model", modelName)
}

// openaiClient lazily constructs the OpenAI client; the API key is fetched
// once per process.
func (f *Factory) openaiClient(ctx context.Context) (*openai.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.openai != nil {
		return f.openai, nil
	}
	if f.OpenAIKey == nil {
		return nil, fmt.Errorf("no OpenAI API key source configured")
	}

	key, err := f.OpenAIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load OpenAI API key: %w", err)
	}

	client := openai.NewClient(option.WithAPIKey(key))
	f.openai = &client

	return f.openai, nil
}
