package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go/service/apigatewaymanagementapi/apigatewaymanagementapiiface"
	"github.com/tj/assert"
)

type fakeManagementAPI struct {
	apigatewaymanagementapiiface.ApiGatewayManagementApiAPI
	posts []*apigatewaymanagementapi.PostToConnectionInput
	gets  []*apigatewaymanagementapi.GetConnectionInput
	err   error
}

func (f *fakeManagementAPI) PostToConnectionWithContext(_ aws.Context, input *apigatewaymanagementapi.PostToConnectionInput, _ ...request.Option) (*apigatewaymanagementapi.PostToConnectionOutput, error) {
	f.posts = append(f.posts, input)
	return &apigatewaymanagementapi.PostToConnectionOutput{}, f.err
}

func (f *fakeManagementAPI) GetConnectionWithContext(_ aws.Context, input *apigatewaymanagementapi.GetConnectionInput, _ ...request.Option) (*apigatewaymanagementapi.GetConnectionOutput, error) {
	f.gets = append(f.gets, input)
	return &apigatewaymanagementapi.GetConnectionOutput{}, f.err
}

func TestPublisher(t *testing.T) {
	t.Run("caches one client per endpoint", func(t *testing.T) {
		created := map[string]*fakeManagementAPI{}
		p := &Publisher{
			NewClient: func(endpoint string) apigatewaymanagementapiiface.ApiGatewayManagementApiAPI {
				f := &fakeManagementAPI{}
				created[endpoint] = f
				return f
			},
		}

		ctx := context.Background()
		assert.NoError(t, p.Send(ctx, "https://a.example.com/production", "c1", []byte("x")))
		assert.NoError(t, p.Send(ctx, "https://a.example.com/production", "c2", []byte("y")))
		assert.NoError(t, p.Ping(ctx, "https://b.example.com/production", "c3"))

		assert.Len(t, created, 2)
		assert.Len(t, created["https://a.example.com/production"].posts, 2)
		assert.Equal(t, "c1", aws.StringValue(created["https://a.example.com/production"].posts[0].ConnectionId))
		assert.Equal(t, []byte("x"), created["https://a.example.com/production"].posts[0].Data)
		assert.Len(t, created["https://b.example.com/production"].gets, 1)
	})

	t.Run("send errors pass through", func(t *testing.T) {
		p := &Publisher{
			NewClient: func(string) apigatewaymanagementapiiface.ApiGatewayManagementApiAPI {
				return &fakeManagementAPI{err: errors.New("boom")}
			},
		}
		err := p.Send(context.Background(), "https://a.example.com/production", "c1", []byte("x"))
		assert.EqualError(t, err, "boom")
	})
}

func TestIsGone(t *testing.T) {
	assert.True(t, IsGone(errors.New("GoneException: Connection xyz is gone")))
	assert.True(t, IsGone(errors.New("status code: 410, request id: abc")))
	assert.False(t, IsGone(errors.New("ETIMEDOUT")))
	assert.False(t, IsGone(nil))
}
