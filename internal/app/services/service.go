package services

import (
	"context"

	"nutrisense-server-go/internal/domain/image"
	"nutrisense-server-go/internal/domain/provider"
	"nutrisense-server-go/internal/platform/errors"
	"nutrisense-server-go/internal/platform/logging"
)

// Temperatures tuned per operation: analysis wants deterministic structure,
// chat wants conversational variety, transcription wants neither.
const (
	analysisTemperature   = 0.3
	chatTemperature       = 0.7
	transcribeTemperature = 0.1
)

// Dispatcher is the provider chain the orchestrator talks to.
type Dispatcher interface {
	Chat(ctx context.Context, req provider.Request) (string, error)
	Transcribe(ctx context.Context, req provider.TranscriptionRequest) (string, error)
}

// Service orchestrates one request end to end: prompt construction, provider
// dispatch, output extraction and normalization.
type Service struct {
	dispatcher Dispatcher
	images     *image.Validator
	logger     *logging.Logger
}

func NewService(dispatcher Dispatcher, images *image.Validator, logger *logging.Logger) (*Service, error) {
	if dispatcher == nil {
		return nil, errors.New(errors.KindConfig, "services.new", "dispatcher is required")
	}
	if images == nil {
		return nil, errors.New(errors.KindConfig, "services.new", "image validator is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "services.new", "logger is required")
	}

	return &Service{
		dispatcher: dispatcher,
		images:     images,
		logger:     logger,
	}, nil
}
