package historydao

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/savaki/ddb"
	"github.com/tj/assert"
)

func withTable(t *testing.T, callback func(ctx context.Context, dao *DAO)) {
	c, err := net.DialTimeout("tcp", "localhost:8000", 250*time.Millisecond)
	if err != nil {
		t.Skipf("dynamodb-local not reachable: %v", err)
	}
	c.Close()

	var (
		s = session.Must(session.NewSession(aws.NewConfig().
			WithCredentials(credentials.NewStaticCredentials("blah", "blah", "")).
			WithEndpoint("http://localhost:8000").
			WithRegion("us-west-2")))
		api       = dynamodb.New(s)
		client    = ddb.New(api)
		tableName = fmt.Sprintf("chat-history-%v", time.Now().UnixNano())
		table     = client.MustTable(tableName, History{})
		dao       = New(api, tableName)
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = table.CreateTableIfNotExists(ctx)
	assert.Nil(t, err)
	defer table.DeleteTableIfExists(ctx)

	callback(ctx, dao)
}

func TestDAO(t *testing.T) {
	withTable(t, func(ctx context.Context, dao *DAO) {
		// an unseen session has an empty history
		history, err := dao.Get(ctx, "test-session")
		assert.Nil(t, err)
		assert.Equal(t, "test-session", history.SessionID)
		assert.Len(t, history.Turns, 0)

		err = dao.Append(ctx, "test-session",
			Turn{Role: "human", Content: "hi", CreatedAt: time.Now().Unix()},
			Turn{Role: "ai", Content: "hello, how can I help?", CreatedAt: time.Now().Unix()},
		)
		assert.Nil(t, err)

		err = dao.Append(ctx, "test-session",
			Turn{Role: "human", Content: "what's the weather like?", CreatedAt: time.Now().Unix()},
		)
		assert.Nil(t, err)

		history, err = dao.Get(ctx, "test-session")
		assert.Nil(t, err)
		assert.Len(t, history.Turns, 3)
		assert.Equal(t, "human", history.Turns[0].Role)
		assert.Equal(t, "hi", history.Turns[0].Content)
		assert.Equal(t, "ai", history.Turns[1].Role)
		assert.Equal(t, "what's the weather like?", history.Turns[2].Content)
		assert.NotZero(t, history.UpdatedAt)

		var sessions int
		err = dao.Each(ctx, func(h History) error {
			sessions++
			assert.Equal(t, "test-session", h.SessionID)
			return nil
		})
		assert.Nil(t, err)
		assert.Equal(t, 1, sessions)

		err = dao.Clear(ctx, "test-session")
		assert.Nil(t, err)

		history, err = dao.Get(ctx, "test-session")
		assert.Nil(t, err)
		assert.Len(t, history.Turns, 0)

		// clearing an absent session succeeds
		err = dao.Clear(ctx, "test-session")
		assert.Nil(t, err)
	})
}
