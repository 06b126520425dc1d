// Package publish posts messages to connected WebSocket clients through the
// API Gateway Management API.
package publish

import (
	"context"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go/service/apigatewaymanagementapi/apigatewaymanagementapiiface"
)

// Publisher posts messages to WebSocket connections, caching one management
// API client per callback endpoint.
type Publisher struct {
	// NewClient overrides management API client construction, for tests.
	NewClient func(endpoint string) apigatewaymanagementapiiface.ApiGatewayManagementApiAPI

	mu      sync.RWMutex
	clients map[string]apigatewaymanagementapiiface.ApiGatewayManagementApiAPI
}

// Send posts data to the connection behind the given callback endpoint.
func (p *Publisher) Send(ctx context.Context, endpoint, connectionID string, data []byte) error {
	client := p.getManagementClient(endpoint)
	_, err := client.PostToConnectionWithContext(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         data,
	})
	return err
}

// Ping checks whether the connection still exists without sending any data to
// the client.
func (p *Publisher) Ping(ctx context.Context, endpoint, connectionID string) error {
	client := p.getManagementClient(endpoint)
	_, err := client.GetConnectionWithContext(ctx, &apigatewaymanagementapi.GetConnectionInput{
		ConnectionId: aws.String(connectionID),
	})
	return err
}

func (p *Publisher) getManagementClient(endpoint string) apigatewaymanagementapiiface.ApiGatewayManagementApiAPI {
	p.mu.RLock()
	if client, ok := p.clients[endpoint]; ok {
		p.mu.RUnlock()
		return client
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	if client, ok := p.clients[endpoint]; ok {
		return client
	}

	if p.clients == nil {
		p.clients = make(map[string]apigatewaymanagementapiiface.ApiGatewayManagementApiAPI)
	}

	newClient := p.NewClient
	if newClient == nil {
		newClient = defaultClient
	}
	client := newClient(endpoint)
	p.clients[endpoint] = client
	return client
}

func defaultClient(endpoint string) apigatewaymanagementapiiface.ApiGatewayManagementApiAPI {
	sess := session.Must(session.NewSession(aws.NewConfig().WithEndpoint(endpoint)))
	return apigatewaymanagementapi.New(sess)
}

// IsGone reports whether the error is a GoneException (HTTP 410), indicating
// the WebSocket connection no longer exists.
func IsGone(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "GoneException") ||
		strings.Contains(err.Error(), "410")
}
