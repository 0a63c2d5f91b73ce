package services

import (
	"context"
	"encoding/base64"

	"nutrisense-server-go/internal/domain/command"
	"nutrisense-server-go/internal/domain/provider"
	"nutrisense-server-go/internal/platform/errors"
)

// Transcribe converts a validated audio payload into text. The shape check
// in validation is bounded, so a full decode can still fail here.
func (s *Service) Transcribe(ctx context.Context, cmd *command.TranscriptionCommand) (string, error) {
	const op = "services.transcribe"

	raw, err := base64.StdEncoding.DecodeString(cmd.AudioBase64)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(cmd.AudioBase64)
	}
	if err != nil || len(raw) == 0 {
		return "", errors.New(errors.KindValidation, op, "Invalid audio format")
	}

	s.logger.InfoTag("TRANSCRIBE", "processing transcription request size=%d", len(raw))

	return s.dispatcher.Transcribe(ctx, provider.TranscriptionRequest{
		Audio:       raw,
		Format:      "webm",
		Prompt:      transcriptionPrompt,
		Temperature: transcribeTemperature,
	})
}
