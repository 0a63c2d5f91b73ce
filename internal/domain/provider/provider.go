package provider

import "context"

// Tier selects the model class for a request. Image analysis needs the
// capable (vision) model; everything else runs on the light one.
type Tier int

const (
	TierLight Tier = iota
	TierCapable
)

// Message is one prior conversation turn forwarded to the model.
type Message struct {
	Role    string
	Content string
}

// Request is a provider-agnostic chat completion request. ImageBase64, when
// set, is attached as a multimodal part alongside UserText.
type Request struct {
	Tier        Tier
	System      string
	History     []Message
	UserText    string
	ImageBase64 string
	Temperature float32
}

// TranscriptionRequest carries decoded audio bytes for speech-to-text.
type TranscriptionRequest struct {
	Audio       []byte
	Format      string
	Prompt      string
	Temperature float32
}

// Provider is one upstream AI inference service.
type Provider interface {
	Name() string
	Chat(ctx context.Context, req Request) (string, error)
	Transcribe(ctx context.Context, req TranscriptionRequest) (string, error)
}
