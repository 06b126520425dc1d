package historydao

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/savaki/ddb"
)

// DAO provides access to the chat history table.
type DAO struct {
	table     *ddb.Table
	api       dynamodbiface.DynamoDBAPI
	tableName string
}

// New creates a new chat history DAO.
func New(api dynamodbiface.DynamoDBAPI, tableName string) *DAO {
	return &DAO{
		table:     ddb.New(api).MustTable(tableName, History{}),
		api:       api,
		tableName: tableName,
	}
}

// Get retrieves the history for a session. A session with no stored history
// yields an empty History rather than an error.
func (d *DAO) Get(ctx context.Context, sessionID string) (History, error) {
	var history History
	if err := d.table.Get(sessionID).ScanWithContext(ctx, &history); err != nil {
		if ddb.IsItemNotFoundError(err) {
			return History{SessionID: sessionID}, nil
		}
		return History{}, fmt.Errorf("failed to get chat history for session %v: %w", sessionID, err)
	}
	return history, nil
}

// Append adds turns to the end of a session's history.
func (d *DAO) Append(ctx context.Context, sessionID string, turns ...Turn) error {
	history, err := d.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	history.SessionID = sessionID
	history.Turns = append(history.Turns, turns...)
	history.UpdatedAt = time.Now().Unix()

	if err := d.table.Put(history).RunWithContext(ctx); err != nil {
		return fmt.Errorf("failed to save chat history for session %v: %w", sessionID, err)
	}
	return nil
}

// Clear removes a session's history. Clearing an absent session is not an
// error.
func (d *DAO) Clear(ctx context.Context, sessionID string) error {
	return d.table.Delete(sessionID).RunWithContext(ctx)
}

// Each invokes callback for every session history in the table.
func (d *DAO) Each(ctx context.Context, callback func(history History) error) error {
	input := &dynamodb.ScanInput{
		TableName: aws.String(d.tableName),
	}

	var callbackErr error
	err := d.api.ScanPagesWithContext(ctx, input, func(page *dynamodb.ScanOutput, lastPage bool) bool {
		for _, item := range page.Items {
			var history History
			if err := dynamodbattribute.UnmarshalMap(item, &history); err != nil {
				callbackErr = fmt.Errorf("failed to unmarshal chat history record: %w", err)
				return false
			}
			if err := callback(history); err != nil {
				callbackErr = err
				return false
			}
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("failed to scan chat history table %v: %w", d.tableName, err)
	}
	return callbackErr
}
