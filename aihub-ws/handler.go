// Package aihubws handles the API Gateway WebSocket lifecycle for the ai-hub
// API: it records connections on $connect, removes them on $disconnect, and
// answers $default messages with usage info.
package aihubws

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	aihubcli "github.com/ShyamalShah3/ai-hub-be/aihub-cli"
	"github.com/ShyamalShah3/ai-hub-be/aihub-ws/connectiondao"
	"github.com/ShyamalShah3/ai-hub-be/aihub-ws/publish"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
)

// Metric names emitted by the lifecycle handler.
const (
	ConnectionOpenedMetric aihubcli.MetricName = "ConnectionOpened"
	ConnectionClosedMetric aihubcli.MetricName = "ConnectionClosed"
	MessageSentMetric      aihubcli.MetricName = "MessageSent"
)

// ConnectionStore records which WebSocket connections are currently open.
type ConnectionStore interface {
	Put(ctx context.Context, conn connectiondao.Connection) error
	Delete(ctx context.Context, connectionID string) error
}

// Sender posts a message to a connected client.
type Sender interface {
	Send(ctx context.Context, endpoint, connectionID string, data []byte) error
}

// Handler handles WebSocket API Gateway lifecycle events. The connections
// table holds a record per open connection; $connect writes it, $disconnect
// removes it.
type Handler struct {
	Connections ConnectionStore
	Publisher   Sender
	Logger      zerolog.Logger
	Metrics     *aihubcli.Metrics
	ConnTTL     time.Duration // TTL for connection records (default 2 hours)
}

// HandleEvent routes an API Gateway WebSocket event to the appropriate handler.
func (h *Handler) HandleEvent(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := h.Logger.With().
		Str("connection_id", req.RequestContext.ConnectionID).
		Str("route", req.RequestContext.RouteKey).
		Logger()

	if req.RequestContext.ConnectionID == "" {
		logger.Warn().Msg("event carries no connection id")
		return events.APIGatewayProxyResponse{StatusCode: 400, Body: "Missing connectionId"}, nil
	}

	switch req.RequestContext.RouteKey {
	case "$connect":
		return h.handleConnect(ctx, logger, req)
	case "$disconnect":
		return h.handleDisconnect(ctx, logger, req)
	case "$default":
		return h.handleDefault(ctx, logger, req)
	default:
		logger.Warn().Msg("unknown route")
		return events.APIGatewayProxyResponse{StatusCode: 400}, nil
	}
}

func (h *Handler) handleConnect(ctx context.Context, logger zerolog.Logger, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	if h.Connections == nil {
		logger.Error().Msg("no connection store configured")
		return events.APIGatewayProxyResponse{StatusCode: 500, Body: "Failed to connect: no connection store configured"}, nil
	}

	ttl := h.ConnTTL
	if ttl == 0 {
		ttl = 2 * time.Hour
	}

	now := time.Now()
	conn := connectiondao.Connection{
		ConnectionID: req.RequestContext.ConnectionID,
		Endpoint:     CallbackEndpoint(req),
		ConnectedAt:  now.Unix(),
		TTL:          now.Add(ttl).Unix(),
	}

	if err := h.Connections.Put(ctx, conn); err != nil {
		logger.Error().Err(err).Msg("failed to store connection")
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Body:       fmt.Sprintf("Failed to connect: %v", err),
		}, nil
	}

	if h.Metrics != nil {
		h.Metrics.Event(ctx, ConnectionOpenedMetric)
	}
	logger.Info().Msg("connection established")
	return events.APIGatewayProxyResponse{StatusCode: 200, Body: "Connected"}, nil
}

func (h *Handler) handleDisconnect(ctx context.Context, logger zerolog.Logger, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	if h.Connections == nil {
		logger.Error().Msg("no connection store configured")
		return events.APIGatewayProxyResponse{StatusCode: 500, Body: "Failed to disconnect: no connection store configured"}, nil
	}

	connID := req.RequestContext.ConnectionID

	if err := h.Connections.Delete(ctx, connID); err != nil {
		logger.Error().Err(err).Msg("failed to delete connection")
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Body:       fmt.Sprintf("Failed to disconnect: %v", err),
		}, nil
	}

	if h.Metrics != nil {
		h.Metrics.Event(ctx, ConnectionClosedMetric)
	}
	logger.Info().Msg("connection closed")
	return events.APIGatewayProxyResponse{StatusCode: 200, Body: "Disconnected"}, nil
}

// handleDefault answers messages whose action matched no route. The client
// gets usage info posted back over the socket; send failures are logged but
// do not fail the invocation.
func (h *Handler) handleDefault(ctx context.Context, logger zerolog.Logger, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	if h.Publisher == nil {
		logger.Error().Msg("no publisher configured")
		return events.APIGatewayProxyResponse{StatusCode: 500, Body: "Failed to send message: no publisher configured"}, nil
	}

	if req.Body != "" {
		if msg, err := ParseMessage(req.Body); err == nil && msg.Action != "" {
			logger.Debug().Str("action", msg.Action).Msg("unroutable action")
		}
	}

	info := InfoMessage("Use the chat route to send a message. Your info:",
		req.RequestContext.ConnectionID, req.RequestContext.RequestID)

	if err := h.Publisher.Send(ctx, CallbackEndpoint(req), req.RequestContext.ConnectionID, info); err != nil {
		if publish.IsGone(err) {
			logger.Info().Msg("connection gone")
		} else {
			logger.Error().Err(err).Msg("failed to send message")
		}
		return events.APIGatewayProxyResponse{StatusCode: 200, Body: "Message sent."}, nil
	}

	if h.Metrics != nil {
		h.Metrics.Event(ctx, MessageSentMetric)
	}
	logger.Info().Msg("usage info sent")
	return events.APIGatewayProxyResponse{StatusCode: 200, Body: "Message sent."}, nil
}

// CallbackEndpoint builds the management API endpoint for the stage that
// produced the event.
func CallbackEndpoint(req events.APIGatewayWebsocketProxyRequest) string {
	return fmt.Sprintf("https://%s/%s", req.RequestContext.DomainName, req.RequestContext.Stage)
}

// Start runs the handler in console mode (one event read from stdin) or as a
// Lambda, depending on the common flags.
func (h *Handler) Start() error {
	switch {
	case aihubcli.CommonOpts.Console:
		return h.handleConsole()

	default:
		lambda.Start(h.HandleEvent)
	}
	return nil
}

func (h *Handler) handleConsole() error {
	var req events.APIGatewayWebsocketProxyRequest
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		return fmt.Errorf("unable to decode event from stdin: %w", err)
	}
	resp, err := h.HandleEvent(context.Background(), req)
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(resp)
}
