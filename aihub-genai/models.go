package aihubgenai

// bedrockModels maps the model names accepted in chat requests to Bedrock
// model ids.
var bedrockModels = map[string]string{
	"CLAUDE_3_5_SONNET": "anthropic.claude-3-5-sonnet-20240620-v1:0",
	"CLAUDE_3_SONNET":   "anthropic.claude-3-sonnet-20240229-v1:0",
	"CLAUDE_3_HAIKU":    "anthropic.claude-3-haiku-20240307-v1:0",
	// CLAUDE_3_OPUS has streaming issues and LLAMA_3_1_405B_INSTRUCT is not
	// authorized for this account.
	"LLAMA_3_1_8B_INSTRUCT":  "meta.llama3-1-8b-instruct-v1:0",
	"LLAMA_3_1_70B_INSTRUCT": "meta.llama3-1-70b-instruct-v1:0",
	"MISTRAL_7B_INSTRUCT":    "mistral.mistral-7b-instruct-v0:2",
	"MISTRAL_8_7B_INSTRUCT":  "mistral.mixtral-8x7b-instruct-v0:1",
	"MISTRAL_LARGE":          "mistral.mistral-large-2402-v1:0",
	"MISTRAL_LARGE_2":        "mistral.mistral-large-2407-v1:0",
}

// openaiModels maps the model names accepted in chat requests to OpenAI
// model ids.
var openaiModels = map[string]string{
	"GPT_4_TURBO": "gpt-4-turbo-2024-04-09",
	"GPT_4O":      "gpt-4o-2024-08-06",
	"GPT_4O_MINI": "gpt-4o-mini-2024-07-18",
}
