// Package aihubchat implements the chat route of the ai-hub WebSocket API: it
// streams model responses back over the socket and records each exchange in
// the chat history table.
package aihubchat

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ShyamalShah3/ai-hub-be/aihub-chat/historydao"
	aihubcli "github.com/ShyamalShah3/ai-hub-be/aihub-cli"
	aihubgenai "github.com/ShyamalShah3/ai-hub-be/aihub-genai"
	aihubws "github.com/ShyamalShah3/ai-hub-be/aihub-ws"
	"github.com/ShyamalShah3/ai-hub-be/aihub-ws/publish"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
)

// systemPrompt is sent with every model request.
const systemPrompt = "You are a helpful AI assistant."

// defaultSessionID keys chat histories for clients that send no session id.
const defaultSessionID = "test-session"

// Metric names emitted by the chat handler.
const (
	ChatCompletedMetric aihubcli.MetricName = "ChatCompleted"
	ChatFailedMetric    aihubcli.MetricName = "ChatFailed"
)

// HistoryStore reads and appends chat session histories.
type HistoryStore interface {
	Get(ctx context.Context, sessionID string) (historydao.History, error)
	Append(ctx context.Context, sessionID string, turns ...historydao.Turn) error
}

// ProviderSource resolves the model named in a chat request to a provider.
type ProviderSource interface {
	Provider(ctx context.Context, modelName string) (aihubgenai.Provider, error)
}

// Sender posts a message to a connected client.
type Sender interface {
	Send(ctx context.Context, endpoint, connectionID string, data []byte) error
}

// Handler streams model responses for chat messages.
type Handler struct {
	History   HistoryStore
	Models    ProviderSource
	Publisher Sender
	Logger    zerolog.Logger
	Metrics   *aihubcli.Metrics

	MaxTokens   int64   // maximum tokens per response (default 1000)
	Temperature float64 // model sampling temperature (default 0.7)
}

// chatRequest is the body of a chat action message.
type chatRequest struct {
	Action    string `json:"action"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Model     string `json:"model"`
}

// HandleEvent streams a model response for one chat message. Deltas go to the
// client as "stream" messages followed by an "end" message; the exchange is
// then appended to the session history.
func (h *Handler) HandleEvent(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()

	if h.History == nil || h.Models == nil || h.Publisher == nil {
		return errorResponse(500, fmt.Errorf("chat handler is not fully configured"))
	}

	var (
		endpoint = aihubws.CallbackEndpoint(req)
		connID   = req.RequestContext.ConnectionID
	)

	logger := h.Logger.With().
		Str("connection_id", connID).
		Logger()

	var chat chatRequest
	if err := json.Unmarshal([]byte(req.Body), &chat); err != nil {
		return h.fail(ctx, logger, endpoint, connID, fmt.Errorf("invalid chat request: %w", err))
	}
	if chat.SessionID == "" {
		chat.SessionID = defaultSessionID
	}

	logger = logger.With().
		Str("session_id", chat.SessionID).
		Str("model", chat.Model).
		Logger()

	if chat.Message == "" {
		logger.Warn().Msg("chat request carries no message")
		return errorResponse(400, fmt.Errorf("No message provided"))
	}

	provider, err := h.Models.Provider(ctx, chat.Model)
	if err != nil {
		return h.fail(ctx, logger, endpoint, connID, err)
	}

	history, err := h.History.Get(ctx, chat.SessionID)
	if err != nil {
		return h.fail(ctx, logger, endpoint, connID, err)
	}

	reply, err := provider.Stream(ctx, aihubgenai.Request{
		System:      systemPrompt,
		History:     toTurns(history),
		Input:       chat.Message,
		MaxTokens:   h.MaxTokens,
		Temperature: h.Temperature,
	}, func(delta string) error {
		return h.Publisher.Send(ctx, endpoint, connID, aihubws.StreamMessage(delta))
	})
	if err != nil {
		return h.fail(ctx, logger, endpoint, connID, err)
	}

	if err := h.Publisher.Send(ctx, endpoint, connID, aihubws.EndMessage()); err != nil {
		return h.fail(ctx, logger, endpoint, connID, err)
	}

	now := time.Now().Unix()
	err = h.History.Append(ctx, chat.SessionID,
		historydao.Turn{Role: string(aihubgenai.RoleHuman), Content: chat.Message, CreatedAt: now},
		historydao.Turn{Role: string(aihubgenai.RoleAI), Content: reply, CreatedAt: now},
	)
	if err != nil {
		return h.fail(ctx, logger, endpoint, connID, err)
	}

	if h.Metrics != nil {
		dimensions := map[aihubcli.DimensionName]string{aihubcli.ModelNameDimension: chat.Model}
		h.Metrics.Event(ctx, ChatCompletedMetric, dimensions)
		h.Metrics.Timing(ctx, aihubcli.ResponseTimeMetric, start, dimensions)
	}

	logger.Info().Dur("elapsed", time.Since(start)).Msg("chat response streamed")
	return jsonResponse(200, map[string]string{"message": "Response streaming started"})
}

// fail reports err to the client over the socket when possible and maps it to
// a 500 response.
func (h *Handler) fail(ctx context.Context, logger zerolog.Logger, endpoint, connID string, err error) (events.APIGatewayProxyResponse, error) {
	if sendErr := h.Publisher.Send(ctx, endpoint, connID, aihubws.ErrorMessage(err.Error())); sendErr != nil && !publish.IsGone(sendErr) {
		logger.Warn().Err(sendErr).Msg("failed to report error to client")
	}

	if publish.IsGone(err) {
		logger.Info().Err(err).Msg("client gone during chat")
	} else {
		logger.Error().Err(err).Msg("chat request failed")
	}

	if h.Metrics != nil {
		h.Metrics.Event(ctx, ChatFailedMetric)
	}
	return errorResponse(500, err)
}

func toTurns(history historydao.History) []aihubgenai.Turn {
	var turns []aihubgenai.Turn
	for _, turn := range history.Turns {
		turns = append(turns, aihubgenai.Turn{
			Role:    aihubgenai.Role(turn.Role),
			Content: turn.Content,
		})
	}
	return turns
}

func jsonResponse(status int, body interface{}) (events.APIGatewayProxyResponse, error) {
	b, _ := json.Marshal(body)
	return events.APIGatewayProxyResponse{StatusCode: status, Body: string(b)}, nil
}

func errorResponse(status int, err error) (events.APIGatewayProxyResponse, error) {
	return jsonResponse(status, map[string]string{"error": err.Error()})
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
