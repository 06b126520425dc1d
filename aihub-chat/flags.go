package aihubchat

import (
	aihubcli "github.com/ShyamalShah3/ai-hub-be/aihub-cli"
	"github.com/urfave/cli/v2"
)

var ChatOpts struct {
	HistoryTableName string
	OpenAISecretName string
	MaxTokens        int64
	Temperature      float64
}

var (
	HistoryTableNameFlag = aihubcli.StringFlag("chat-history-table-name", "The table to store chat session histories in", &ChatOpts.HistoryTableName)
	OpenAISecretNameFlag = aihubcli.StringFlag("openai-secret-name", "The secrets manager secret holding the OpenAI API key", &ChatOpts.OpenAISecretName)
	MaxTokensFlag        = aihubcli.Int64Flag("default-max-tokens", "The maximum tokens per model response", &ChatOpts.MaxTokens, 1000)
	TemperatureFlag      = aihubcli.Float64Flag("default-temperature", "The model sampling temperature", &ChatOpts.Temperature, 0.7)
)

var ChatFlags = []cli.Flag{
	HistoryTableNameFlag,
	OpenAISecretNameFlag,
	MaxTokensFlag,
	TemperatureFlag,
}
