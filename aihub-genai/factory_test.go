package aihubgenai

import (
	"context"
	"errors"
	"testing"

	"github.com/tj/assert"
)

func TestFactory(t *testing.T) {
	t.Run("bedrock model names resolve to bedrock providers", func(t *testing.T) {
		f := &Factory{}

		p, err := f.Provider(context.Background(), "CLAUDE_3_5_SONNET")
		assert.NoError(t, err)

		bp, ok := p.(*BedrockProvider)
		assert.True(t, ok)
		assert.Equal(t, "anthropic.claude-3-5-sonnet-20240620-v1:0", bp.ModelID)
	})

	t.Run("openai model names resolve to openai providers", func(t *testing.T) {
		f := &Factory{
			OpenAIKey: func(context.Context) (string, error) { return "sk-test", nil },
		}

		p, err := f.Provider(context.Background(), "GPT_4O")
		assert.NoError(t, err)

		op, ok := p.(*OpenAIProvider)
		assert.True(t, ok)
		assert.Equal(t, "gpt-4o-2024-08-06", op.ModelID)
	})

	t.Run("openai key fetched once", func(t *testing.T) {
		var calls int
		f := &Factory{
			OpenAIKey: func(context.Context) (string, error) {
				calls++
				return "sk-test", nil
			},
		}

		_, err := f.Provider(context.Background(), "GPT_4O")
		assert.NoError(t, err)
		_, err = f.Provider(context.Background(), "GPT_4O_MINI")
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("key lookup failures surface", func(t *testing.T) {
		f := &Factory{
			OpenAIKey: func(context.Context) (string, error) {
				return "", errors.New("AccessDeniedException")
			},
		}

		_, err := f.Provider(context.Background(), "GPT_4O")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "AccessDeniedException")
	})

	t.Run("unsupported model", func(t *testing.T) {
		f := &Factory{}

		_, err := f.Provider(context.Background(), "GEMINI_PRO")
		assert.EqualError(t, err, "GEMINI_PRO is not a currently supported model")
	})
}
