package main

import (
	"log"
	"os"
	"time"

	aihubcli "github.com/ShyamalShah3/ai-hub-be/aihub-cli"
	aihubddb "github.com/ShyamalShah3/ai-hub-be/aihub-ddb"
	aihubws "github.com/ShyamalShah3/ai-hub-be/aihub-ws"
	"github.com/ShyamalShah3/ai-hub-be/aihub-ws/connectiondao"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/urfave/cli/v2"
)

var service = aihubcli.NewService("ws-connect")

var opts struct {
	ConnTTL time.Duration
}

func main() {
	app := aihubcli.App(
		service,
		action,
		append(
			append(
				aihubcli.CommonFlags,
				aihubddb.DDBFlags...,
			),
			aihubcli.DurationFlag("conn-ttl", "ttl stamped on connection records", &opts.ConnTTL, 2*time.Hour),
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
	handler := &aihubws.Handler{
		Connections: connectiondao.New(api, tableName),
		Logger:      aihubcli.Logger(service),
		Metrics:     &metrics,
		ConnTTL:     opts.ConnTTL,
	}

	return handler.Start()
}
