package services

import (
	"context"

	"nutrisense-server-go/internal/domain/analysis"
	"nutrisense-server-go/internal/domain/command"
	"nutrisense-server-go/internal/domain/provider"
	"nutrisense-server-go/internal/platform/errors"
)

// Analyze runs a validated analysis command through the provider chain and
// normalizes the model's output into an AnalysisRecord.
func (s *Service) Analyze(ctx context.Context, cmd *command.AnalysisCommand) (*analysis.AnalysisRecord, error) {
	const op = "services.analyze"

	req := provider.Request{
		System:      analysisSystemPrompt,
		Temperature: analysisTemperature,
		Tier:        provider.TierLight,
	}

	if cmd.Kind == command.KindImage {
		if result := s.images.ValidateBase64(cmd.ImageBase64); !result.OK {
			s.logger.WarnTag("ANALYZE", "image rejected: %s", result.Risk)
			return nil, errors.New(errors.KindValidation, op, "Invalid image format")
		}
		req.Tier = provider.TierCapable
		req.ImageBase64 = cmd.ImageBase64
		req.UserText = imageAnalysisPrompt(cmd.UserQuery)
	} else {
		req.UserText = textAnalysisPrompt(cmd.IngredientText, cmd.UserQuery)
	}

	s.logger.InfoTag("ANALYZE", "processing analysis request type=%s hasQuery=%v", cmd.Kind, cmd.UserQuery != "")

	content, err := s.dispatcher.Chat(ctx, req)
	if err != nil {
		return nil, err
	}

	raw, err := analysis.ExtractJSON(content)
	if err != nil {
		return nil, err
	}

	record := analysis.Normalize(raw)
	s.logger.InfoTag("ANALYZE", "analysis complete id=%s verdict=%s score=%d",
		record.ID, record.Verdict, record.HealthScore)
	return record, nil
}
