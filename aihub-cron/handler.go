// Package aihubcron provides utilities for building scheduled Lambda functions.
package aihubcron

import (
	"context"
	"time"

	aihubcli "github.com/ShyamalShah3/ai-hub-be/aihub-cli"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
)

type RunCallback func(ctx context.Context) error

type Handler struct {
	service aihubcli.Service
	logger  zerolog.Logger

	runOnce RunCallback
}

func NewHandler(
	service aihubcli.Service,
	runOnce RunCallback,
) *Handler {
	return &Handler{
		service: service,
		logger:  aihubcli.Logger(service),
		runOnce: runOnce,
	}
}

func (h *Handler) RunOnce(ctx context.Context, event events.CloudWatchEvent) error {
	start := time.Now()
	h.logger.Info().Str("source", event.Source).Msg("running scheduled task")

	if err := h.runOnce(ctx); err != nil {
		h.logger.Error().Err(err).Msg("scheduled task failed")
		return err
	}

	h.logger.Info().Dur("elapsed", time.Since(start)).Msg("scheduled task complete")
	return nil
}

func (h *Handler) Start() error {
	switch {
	case aihubcli.CommonOpts.Console:
		return h.runOnce(context.Background())

	default:
		lambda.Start(h.RunOnce)
	}
	return nil
}
