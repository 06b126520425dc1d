package main

import (
	"context"
	"log"
	"os"

	aihubchat "github.com/ShyamalShah3/ai-hub-be/aihub-chat"
	"github.com/ShyamalShah3/ai-hub-be/aihub-chat/historydao"
	aihubcli "github.com/ShyamalShah3/ai-hub-be/aihub-cli"
	aihubddb "github.com/ShyamalShah3/ai-hub-be/aihub-ddb"
	aihubgenai "github.com/ShyamalShah3/ai-hub-be/aihub-genai"
	aihubsecret "github.com/ShyamalShah3/ai-hub-be/aihub-secret"
	"github.com/ShyamalShah3/ai-hub-be/aihub-ws/publish"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/bedrockruntime"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/urfave/cli/v2"
)

var service = aihubcli.NewService("chat-api")

func main() {
	flags := append([]cli.Flag{}, aihubcli.CommonFlags...)
	flags = append(flags, aihubddb.DDBFlags...)
	flags = append(flags, aihubchat.ChatFlags...)

	app := aihubcli.App(service, action, flags...)
	err := app.Run(os.Args)
	if err != nil {
		log.Fatalln(err)
	}
}

func action(_ *cli.Context) error {
	s := session.Must(session.NewSession(aws.NewConfig().WithRegion(aihubcli.CommonOpts.Region)))

	api, err := aihubddb.DynamoDBAPI(s)
	if err != nil {
		return err
	}

	historyTable := aihubchat.ChatOpts.HistoryTableName
	if historyTable == "" {
		historyTable = historydao.TableName(aihubcli.CommonOpts.Env)
	}

	factory := &aihubgenai.Factory{
		Bedrock: bedrockruntime.New(s),
		OpenAIKey: func(ctx context.Context) (string, error) {
			var secret struct {
				APIKey string `json:"api_key"`
			}
			if err := aihubsecret.LoadSecret(s, aihubchat.ChatOpts.OpenAISecretName, &secret); err != nil {
				return "", err
			}
			return secret.APIKey, nil
		},
	}

	metrics := aihubcli.NewMetrics(service, cloudwatch.New(s))
	handler := &aihubchat.Handler{
		History:     historydao.New(api, historyTable),
		Models:      factory,
		Publisher:   &publish.Publisher{},
		Logger:      aihubcli.Logger(service),
		Metrics:     &metrics,
		MaxTokens:   aihubchat.ChatOpts.MaxTokens,
		Temperature: aihubchat.ChatOpts.Temperature,
	}

	return handler.Start()
}
