package services

import (
	"bytes"
	"context"
	"encoding/json"

	"nutrisense-server-go/internal/domain/command"
	"nutrisense-server-go/internal/domain/provider"
)

// Chat answers a follow-up question about a prior analysis. The serialized
// analysis context rides in the system prompt; prior turns are replayed as
// regular messages.
func (s *Service) Chat(ctx context.Context, cmd *command.ChatCommand) (string, error) {
	history := make([]provider.Message, 0, len(cmd.History))
	for _, msg := range cmd.History {
		history = append(history, provider.Message{Role: msg.Role, Content: msg.Content})
	}

	req := provider.Request{
		System:      chatSystemPrompt(prettyContext(cmd.Context)),
		History:     history,
		UserText:    cmd.Question,
		Temperature: chatTemperature,
		Tier:        provider.TierLight,
	}

	s.logger.InfoTag("CHAT", "processing chat request history=%d", len(history))
	return s.dispatcher.Chat(ctx, req)
}

// prettyContext re-indents the validated context so the model sees readable
// JSON rather than one long line.
func prettyContext(serialized []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, serialized, "", "  "); err != nil {
		return string(serialized)
	}
	return buf.String()
}
