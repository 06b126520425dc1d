package main

import (
	"log"
	"os"

	aihubcli "github.com/ShyamalShah3/ai-hub-be/aihub-cli"
	aihubws "github.com/ShyamalShah3/ai-hub-be/aihub-ws"
	"github.com/ShyamalShah3/ai-hub-be/aihub-ws/publish"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/urfave/cli/v2"
)

var service = aihubcli.NewService("ws-default")

func main() {
	app := aihubcli.App(
		service,
		action,
		aihubcli.CommonFlags...,
	)
	err := app.Run(os.Args)
	if err != nil {
		log.Fatalln(err)
	}
}

func action(_ *cli.Context) error {
	s := session.Must(session.NewSession(aws.NewConfig().WithRegion(aihubcli.CommonOpts.Region)))

	metrics := aihubcli.NewMetrics(service, cloudwatch.New(s))
	handler := &aihubws.Handler{
		Publisher: &publish.Publisher{},
		Logger:    aihubcli.Logger(service),
		Metrics:   &metrics,
	}

	return handler.Start()
}
