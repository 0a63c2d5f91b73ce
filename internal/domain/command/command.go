package command

import (
	"regexp"
	"strings"

	"github.com/bytedance/sonic"

	"nutrisense-server-go/internal/platform/errors"
)

// Input caps. Encoded base64 caps correspond to roughly 5MB / 10MB decoded.
const (
	MaxIngredientsLength    = 5000
	MaxImageBase64Length    = 7_000_000
	MaxQueryLength          = 500
	MaxQuestionLength       = 1000
	MaxHistoryEntries       = 10
	MaxHistoryContentLength = 2000
	MaxContextBytes         = 50_000
	MaxAudioBase64Length    = 13_000_000
)

type AnalysisKind string

const (
	KindText  AnalysisKind = "text"
	KindImage AnalysisKind = "image"
)

// AnalysisCommand is a validated ingredient-analysis request. Exactly one of
// IngredientText / ImageBase64 is populated, matching Kind.
type AnalysisCommand struct {
	Kind           AnalysisKind
	IngredientText string
	ImageBase64    string
	UserQuery      string
}

// Message is one prior conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCommand is a validated follow-up question about a prior analysis.
// Context holds the serialized analysis record the conversation refers to.
type ChatCommand struct {
	Question string
	Context  []byte
	History  []Message
}

// TranscriptionCommand is a validated audio-transcription request.
type TranscriptionCommand struct {
	AudioBase64 string
}

var (
	dataURLPrefix = regexp.MustCompile(`^data:image/[a-z]+;base64,`)
	base64Shape   = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)
)

func validationErr(op, message string) error {
	return errors.New(errors.KindValidation, op, message)
}

// checkBase64Shape inspects at most the first 100 characters; payloads are
// too large to scan in full on the request path.
func checkBase64Shape(payload string) bool {
	head := payload
	if len(head) > 100 {
		head = head[:100]
	}
	return base64Shape.MatchString(head)
}

// NewAnalysisCommand validates a decoded request body into an AnalysisCommand.
// Error messages are user-safe and returned to the client verbatim.
func NewAnalysisCommand(body map[string]interface{}) (*AnalysisCommand, error) {
	const op = "command.analysis"

	if body == nil {
		return nil, validationErr(op, "Invalid request body")
	}

	kind := KindText
	if rawType, ok := body["type"].(string); ok {
		kind = AnalysisKind(rawType)
	}
	if kind != KindText && kind != KindImage {
		return nil, validationErr(op, "Invalid type. Must be 'text' or 'image'")
	}

	userQuery, _ := body["userQuery"].(string)
	if len(userQuery) > MaxQueryLength {
		return nil, validationErr(op, "Query exceeds maximum length (500 characters)")
	}

	cmd := &AnalysisCommand{Kind: kind, UserQuery: userQuery}

	if kind == KindImage {
		image, ok := body["imageBase64"].(string)
		if !ok || image == "" {
			return nil, validationErr(op, "Image data is required for image analysis")
		}
		if len(image) > MaxImageBase64Length {
			return nil, validationErr(op, "Image size exceeds maximum allowed (5MB)")
		}
		if !checkBase64Shape(dataURLPrefix.ReplaceAllString(image, "")) {
			return nil, validationErr(op, "Invalid image format")
		}
		cmd.ImageBase64 = image
		return cmd, nil
	}

	ingredients, ok := body["ingredients"].(string)
	if !ok || ingredients == "" {
		return nil, validationErr(op, "Ingredients text is required")
	}
	if len(ingredients) > MaxIngredientsLength {
		return nil, validationErr(op, "Ingredients text exceeds maximum length (5000 characters)")
	}
	if strings.TrimSpace(ingredients) == "" {
		return nil, validationErr(op, "Ingredients text cannot be empty")
	}
	cmd.IngredientText = ingredients
	return cmd, nil
}

// NewChatCommand validates a decoded request body into a ChatCommand. The
// conversation history is filtered to well-formed entries, truncated to the
// most recent MaxHistoryEntries, and each content clipped to
// MaxHistoryContentLength. An oversized context is rejected, not truncated.
func NewChatCommand(body map[string]interface{}) (*ChatCommand, error) {
	const op = "command.chat"

	if body == nil {
		return nil, validationErr(op, "Invalid request body")
	}

	question, ok := body["question"].(string)
	if !ok || question == "" {
		return nil, validationErr(op, "Question is required")
	}
	if strings.TrimSpace(question) == "" {
		return nil, validationErr(op, "Question cannot be empty")
	}
	if len(question) > MaxQuestionLength {
		return nil, validationErr(op, "Question exceeds maximum length (1000 characters)")
	}

	analysisContext := body["analysisContext"]
	if analysisContext == nil {
		analysisContext = map[string]interface{}{}
	}
	serialized, err := sonic.Marshal(analysisContext)
	if err != nil {
		return nil, validationErr(op, "Invalid request body")
	}
	if len(serialized) > MaxContextBytes {
		return nil, validationErr(op, "Analysis context too large")
	}

	var history []Message
	if rawHistory, ok := body["conversationHistory"].([]interface{}); ok {
		for _, raw := range rawHistory {
			entry, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			role, roleOK := entry["role"].(string)
			content, contentOK := entry["content"].(string)
			if !roleOK || !contentOK {
				continue
			}
			if len(content) > MaxHistoryContentLength {
				content = content[:MaxHistoryContentLength]
			}
			history = append(history, Message{Role: role, Content: content})
		}
		if len(history) > MaxHistoryEntries {
			history = history[len(history)-MaxHistoryEntries:]
		}
	}

	return &ChatCommand{
		Question: strings.TrimSpace(question),
		Context:  serialized,
		History:  history,
	}, nil
}

// NewTranscriptionCommand validates a decoded request body into a
// TranscriptionCommand.
func NewTranscriptionCommand(body map[string]interface{}) (*TranscriptionCommand, error) {
	const op = "command.transcription"

	if body == nil {
		return nil, validationErr(op, "Invalid request body")
	}

	audio, ok := body["audioBase64"].(string)
	if !ok || audio == "" {
		return nil, validationErr(op, "Audio data is required")
	}
	if len(audio) > MaxAudioBase64Length {
		return nil, validationErr(op, "Audio size exceeds maximum allowed (10MB)")
	}
	if strings.TrimSpace(audio) == "" {
		return nil, validationErr(op, "Audio data cannot be empty")
	}
	if !checkBase64Shape(audio) {
		return nil, validationErr(op, "Invalid audio format")
	}

	return &TranscriptionCommand{AudioBase64: audio}, nil
}
