package connectiondao

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

// DAO provides access to the WebSocket connections table.
type DAO struct {
	table     *ddb.Table
	api       dynamodbiface.DynamoDBAPI
	tableName string
}

// New creates a new connections DAO.
func New(api dynamodbiface.DynamoDBAPI, tableName string) *DAO {
	return &DAO{
		table:     ddb.New(api).MustTable(tableName, Connection{}),
		api:       api,
		tableName: tableName,
	}
}

// Put stores a connection record. Re-putting an existing connection id
// overwrites the record.
func (d *DAO) Put(ctx context.Context, conn Connection) error {
	return d.table.Put(conn).RunWithContext(ctx)
}

// Get retrieves a connection record by ID.
func (d *DAO) Get(ctx context.Context, connectionID string) (*Connection, error) {
	var conn Connection
	if err := d.table.Get(connectionID).ScanWithContext(ctx, &conn); err != nil {
		if ddb.IsItemNotFoundError(err) {
			return nil, fmt.Errorf("connection %v not found", connectionID)
		}
		return nil, fmt.Errorf("failed to get connection %v: %w", connectionID, err)
	}
	return &conn, nil
}

// Delete removes a connection record by ID. Deleting an absent record is not
// an error.
func (d *DAO) Delete(ctx context.Context, connectionID string) error {
	return d.table.Delete(connectionID).RunWithContext(ctx)
}

// Each invokes callback for every connection record in the table.
func (d *DAO) Each(ctx context.Context, callback func(conn Connection) error) error {
	input := &dynamodb.ScanInput{
		TableName: aws.String(d.tableName),
	}

	var callbackErr error
	err := d.api.ScanPagesWithContext(ctx, input, func(page *dynamodb.ScanOutput, lastPage bool) bool {
		for _, item := range page.Items {
			var conn Connection
			if err := dynamodbattribute.UnmarshalMap(item, &conn); err != nil {
				callbackErr = fmt.Errorf("failed to unmarshal connection record: %w", err)
				return false
			}
			if err := callback(conn); err != nil {
				callbackErr = err
				return false
			}
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("failed to scan connections table %v: %w", d.tableName, err)
	}
	return callbackErr
}

// DeleteMany removes connection records in batches of 25 (DynamoDB limit),
// retrying unprocessed items with exponential backoff.
func (d *DAO) DeleteMany(ctx context.Context, connectionIDs ...string) error {
	const batchSize = 25
	for i := 0; i < len(connectionIDs); i += batchSize {
		end := i + batchSize
		if end > len(connectionIDs) {
			end = len(connectionIDs)
		}
		chunk := connectionIDs[i:end]

		writeRequests := make([]*dynamodb.WriteRequest, len(chunk))
		for j, connID := range chunk {
			key, err := dynamodbattribute.MarshalMap(map[string]string{"connectionId": connID})
			if err != nil {
				return fmt.Errorf("failed to marshal key for connection %v: %w", connID, err)
			}
			writeRequests[j] = &dynamodb.WriteRequest{
				DeleteRequest: &dynamodb.DeleteRequest{Key: key},
			}
		}

		unprocessed := map[string][]*dynamodb.WriteRequest{
			d.tableName: writeRequests,
		}

		const maxRetries = 5
		for attempt := 0; attempt < maxRetries; attempt++ {
			output, err := d.api.BatchWriteItemWithContext(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: unprocessed,
			})
			if err != nil {
				return fmt.Errorf("failed to batch delete connections: %w", err)
			}
			if len(output.UnprocessedItems) == 0 {
				break
			}
			unprocessed = output.UnprocessedItems
			if attempt < maxRetries-1 {
				backoff := time.Duration(1<<attempt) * 100 * time.Millisecond
				timer := time.NewTimer(backoff)
				select {
				case <-ctx.Done():
					timer.Stop()
					return fmt.Errorf("context cancelled during batch delete retry: %w", ctx.Err())
				case <-timer.C:
				}
			} else {
				return fmt.Errorf("failed to delete all connections: %d items unprocessed after %d retries", len(unprocessed[d.tableName]), maxRetries)
			}
		}
	}

	return nil
}
