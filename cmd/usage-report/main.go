package main

import (
	"context"
	"log"
	"os"

	aihubchat "github.com/ShyamalShah3/ai-hub-be/aihub-chat"
	"github.com/ShyamalShah3/ai-hub-be/aihub-chat/historydao"
	aihubcli "github.com/ShyamalShah3/ai-hub-be/aihub-cli"
	aihubddb "github.com/ShyamalShah3/ai-hub-be/aihub-ddb"
	aihubreport "github.com/ShyamalShah3/ai-hub-be/aihub-report"
	"github.com/ShyamalShah3/ai-hub-be/aihub-ws/connectiondao"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/urfave/cli/v2"
)

var service = aihubcli.NewService("usage-report")

var daos struct {
	connections *connectiondao.DAO
	history     *historydao.DAO
}

func main() {
	flags := append([]cli.Flag{}, aihubcli.CommonFlags...)
	flags = append(flags, aihubddb.DDBFlags...)
	flags = append(flags, aihubreport.ReportFlags...)
	flags = append(flags, aihubchat.HistoryTableNameFlag)

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

	connTable := aihubddb.DDBOpts.TableName
	if connTable == "" {
		connTable = connectiondao.TableName(aihubcli.CommonOpts.Env)
	}
	historyTable := aihubchat.ChatOpts.HistoryTableName
	if historyTable == "" {
		historyTable = historydao.TableName(aihubcli.CommonOpts.Env)
	}

	daos.connections = connectiondao.New(api, connTable)
	daos.history = historydao.New(api, historyTable)

	handler := aihubreport.NewHandler(service, s3.New(s), "usage", generate)
	return handler.Start()
}

func generate(ctx context.Context) (interface{}, error) {
	var report struct {
		Env               string `json:"env"`
		OpenConnections   int    `json:"open_connections"`
		OldestConnectedAt int64  `json:"oldest_connected_at,omitempty"`
		NewestConnectedAt int64  `json:"newest_connected_at,omitempty"`
		ChatSessions      int    `json:"chat_sessions"`
		ChatTurns         int    `json:"chat_turns"`
		LastChatActivity  int64  `json:"last_chat_activity,omitempty"`
	}
	report.Env = aihubcli.CommonOpts.Env

	if err := daos.connections.Each(ctx, func(conn connectiondao.Connection) error {
		report.OpenConnections++
		if report.OldestConnectedAt == 0 || conn.ConnectedAt < report.OldestConnectedAt {
			report.OldestConnectedAt = conn.ConnectedAt
		}
		if conn.ConnectedAt > report.NewestConnectedAt {
			report.NewestConnectedAt = conn.ConnectedAt
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := daos.history.Each(ctx, func(history historydao.History) error {
		report.ChatSessions++
		report.ChatTurns += len(history.Turns)
		if history.UpdatedAt > report.LastChatActivity {
			report.LastChatActivity = history.UpdatedAt
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return report, nil
}
