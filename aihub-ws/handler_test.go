package aihubws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ShyamalShah3/ai-hub-be/aihub-ws/connectiondao"
	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"github.com/tj/assert"
)

type fakeStore struct {
	puts      []connectiondao.Connection
	deletes   []string
	putErr    error
	deleteErr error
}

func (f *fakeStore) Put(_ context.Context, conn connectiondao.Connection) error {
	f.puts = append(f.puts, conn)
	return f.putErr
}

func (f *fakeStore) Delete(_ context.Context, connectionID string) error {
	f.deletes = append(f.deletes, connectionID)
	return f.deleteErr
}

type fakeSender struct {
	endpoints []string
	connIDs   []string
	sent      [][]byte
	err       error
}

func (f *fakeSender) Send(_ context.Context, endpoint, connectionID string, data []byte) error {
	f.endpoints = append(f.endpoints, endpoint)
	f.connIDs = append(f.connIDs, connectionID)
	f.sent = append(f.sent, data)
	return f.err
}

func wsEvent(route, connID string) events.APIGatewayWebsocketProxyRequest {
	return events.APIGatewayWebsocketProxyRequest{
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{
			ConnectionID: connID,
			RouteKey:     route,
			DomainName:   "ws.example.com",
			Stage:        "production",
			RequestID:    "req-1",
		},
	}
}

func TestHandleConnect(t *testing.T) {
	t.Run("stores the connection and responds 200 Connected", func(t *testing.T) {
		store := &fakeStore{}
		h := &Handler{Connections: store, Logger: zerolog.Nop()}

		resp, err := h.HandleEvent(context.Background(), wsEvent("$connect", "K9dFceILIAMCJwg="))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "Connected", resp.Body)
		assert.Len(t, store.puts, 1)
		assert.Equal(t, "K9dFceILIAMCJwg=", store.puts[0].ConnectionID)
		assert.Equal(t, "https://ws.example.com/production", store.puts[0].Endpoint)
		assert.NotZero(t, store.puts[0].TTL)
	})

	t.Run("store failure responds 500 with the error message verbatim", func(t *testing.T) {
		store := &fakeStore{putErr: errors.New("ETIMEDOUT")}
		h := &Handler{Connections: store, Logger: zerolog.Nop()}

		resp, err := h.HandleEvent(context.Background(), wsEvent("$connect", "K9dFceILIAMCJwg="))
		assert.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, "Failed to connect: ETIMEDOUT", resp.Body)
	})

	t.Run("reconnecting with the same id succeeds", func(t *testing.T) {
		store := &fakeStore{}
		h := &Handler{Connections: store, Logger: zerolog.Nop()}

		for i := 0; i < 2; i++ {
			resp, err := h.HandleEvent(context.Background(), wsEvent("$connect", "K9dFceILIAMCJwg="))
			assert.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		}
		assert.Len(t, store.puts, 2)
	})

	t.Run("missing store responds 500", func(t *testing.T) {
		h := &Handler{Logger: zerolog.Nop()}

		resp, err := h.HandleEvent(context.Background(), wsEvent("$connect", "K9dFceILIAMCJwg="))
		assert.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, "Failed to connect: no connection store configured", resp.Body)
	})
}

func TestHandleDisconnect(t *testing.T) {
	t.Run("deletes the connection and responds 200 Disconnected", func(t *testing.T) {
		store := &fakeStore{}
		h := &Handler{Connections: store, Logger: zerolog.Nop()}

		resp, err := h.HandleEvent(context.Background(), wsEvent("$disconnect", "K9dFceILIAMCJwg="))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "Disconnected", resp.Body)
		assert.Equal(t, []string{"K9dFceILIAMCJwg="}, store.deletes)
	})

	t.Run("delete failure responds 500 with the error message verbatim", func(t *testing.T) {
		store := &fakeStore{deleteErr: errors.New("ETIMEDOUT")}
		h := &Handler{Connections: store, Logger: zerolog.Nop()}

		resp, err := h.HandleEvent(context.Background(), wsEvent("$disconnect", "K9dFceILIAMCJwg="))
		assert.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, "Failed to disconnect: ETIMEDOUT", resp.Body)
	})

	t.Run("disconnect for a never-connected id still succeeds", func(t *testing.T) {
		// DynamoDB deletes are idempotent; an absent key is not an error.
		store := &fakeStore{}
		h := &Handler{Connections: store, Logger: zerolog.Nop()}

		resp, err := h.HandleEvent(context.Background(), wsEvent("$disconnect", "never-connected"))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "Disconnected", resp.Body)
	})

	t.Run("connection id reaches the store untransformed", func(t *testing.T) {
		store := &fakeStore{}
		h := &Handler{Connections: store, Logger: zerolog.Nop()}

		const connID = "PkR0=eF9oAMCKyQ=/x+"
		_, err := h.HandleEvent(context.Background(), wsEvent("$disconnect", connID))
		assert.NoError(t, err)
		assert.Equal(t, []string{connID}, store.deletes)
	})
}

func TestHandleDefault(t *testing.T) {
	t.Run("posts usage info back to the caller", func(t *testing.T) {
		sender := &fakeSender{}
		h := &Handler{Publisher: sender, Logger: zerolog.Nop()}

		resp, err := h.HandleEvent(context.Background(), wsEvent("$default", "K9dFceILIAMCJwg="))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "Message sent.", resp.Body)

		assert.Equal(t, []string{"https://ws.example.com/production"}, sender.endpoints)
		assert.Equal(t, []string{"K9dFceILIAMCJwg="}, sender.connIDs)

		var info map[string]string
		assert.NoError(t, json.Unmarshal(sender.sent[0], &info))
		assert.Equal(t, "Use the chat route to send a message. Your info:", info["message"])
		assert.Equal(t, "K9dFceILIAMCJwg=", info["connectionId"])
		assert.Equal(t, "req-1", info["requestId"])
	})

	t.Run("gone connection still responds 200", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("GoneException: Connection K9dFceILIAMCJwg= is gone")}
		h := &Handler{Publisher: sender, Logger: zerolog.Nop()}

		resp, err := h.HandleEvent(context.Background(), wsEvent("$default", "K9dFceILIAMCJwg="))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "Message sent.", resp.Body)
	})

	t.Run("send failure still responds 200", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("ETIMEDOUT")}
		h := &Handler{Publisher: sender, Logger: zerolog.Nop()}

		resp, err := h.HandleEvent(context.Background(), wsEvent("$default", "K9dFceILIAMCJwg="))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "Message sent.", resp.Body)
	})
}

func TestHandleEvent(t *testing.T) {
	t.Run("unknown route responds 400", func(t *testing.T) {
		h := &Handler{Connections: &fakeStore{}, Logger: zerolog.Nop()}

		resp, err := h.HandleEvent(context.Background(), wsEvent("$broadcast", "K9dFceILIAMCJwg="))
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("missing connection id responds 400", func(t *testing.T) {
		store := &fakeStore{}
		h := &Handler{Connections: store, Logger: zerolog.Nop()}

		resp, err := h.HandleEvent(context.Background(), wsEvent("$disconnect", ""))
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Empty(t, store.deletes)
	})
}
