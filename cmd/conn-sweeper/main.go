package main

import (
	"log"
	"os"

	aihubcli "github.com/ShyamalShah3/ai-hub-be/aihub-cli"
	aihubcron "github.com/ShyamalShah3/ai-hub-be/aihub-cron"
	aihubddb "github.com/ShyamalShah3/ai-hub-be/aihub-ddb"
	aihubws "github.com/ShyamalShah3/ai-hub-be/aihub-ws"
	"github.com/ShyamalShah3/ai-hub-be/aihub-ws/connectiondao"
	"github.com/ShyamalShah3/ai-hub-be/aihub-ws/publish"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/urfave/cli/v2"
)

var service = aihubcli.NewService("conn-sweeper")

func main() {
	app := aihubcli.App(
		service,
		action,
		append(
			aihubcli.CommonFlags,
			aihubddb.DDBFlags...,
		)...,
	)
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

	tableName := aihubddb.DDBOpts.TableName
	if tableName == "" {
		tableName = connectiondao.TableName(aihubcli.CommonOpts.Env)
	}

	metrics := aihubcli.NewMetrics(service, cloudwatch.New(s))
	sweeper := &aihubws.Sweeper{
		Connections: connectiondao.New(api, tableName),
		Pinger:      &publish.Publisher{},
		Logger:      aihubcli.Logger(service),
		Metrics:     &metrics,
		Dry:         aihubcli.CommonOpts.Dry,
	}

	handler := aihubcron.NewHandler(service, sweeper.Sweep)
	return handler.Start()
}
