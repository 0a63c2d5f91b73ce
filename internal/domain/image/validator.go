package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"nutrisense-server-go/internal/platform/logging"
)

// Limits bounds accepted label photos. DecodeCheck additionally runs the
// payload through image.DecodeConfig, which rejects anything the standard
// decoders cannot parse.
type Limits struct {
	MaxBytes    int64
	MaxWidth    int
	MaxHeight   int
	MaxPixels   int64
	DecodeCheck bool
}

// DefaultLimits covers typical phone-camera shots of ingredient labels.
func DefaultLimits() Limits {
	return Limits{
		MaxBytes:  5 * 1024 * 1024,
		MaxWidth:  8192,
		MaxHeight: 8192,
		MaxPixels: 40_000_000,
	}
}

// Result captures the outcome of payload screening.
type Result struct {
	OK       bool
	Format   string
	Width    int
	Height   int
	FileSize int64
	Err      error
	Risk     string
}

// Validator performs layered checks against incoming image payloads before
// they are forwarded upstream.
type Validator struct {
	limits Limits
	logger *logging.Logger
}

func NewValidator(limits Limits, logger *logging.Logger) *Validator {
	return &Validator{limits: limits, logger: logger}
}

var signatures = map[string][]byte{
	"jpeg": {0xFF, 0xD8},
	"png":  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	"gif":  {0x47, 0x49, 0x46, 0x38},
	"webp": {0x52, 0x49, 0x46, 0x46},
	"bmp":  {0x42, 0x4D},
}

// ValidateBase64 decodes a base64 payload, with or without a data-URL prefix,
// and screens the raw bytes.
func (v *Validator) ValidateBase64(payload string) Result {
	if payload == "" {
		return Result{Err: fmt.Errorf("missing image payload"), Risk: "empty payload"}
	}

	if idx := strings.Index(payload, ";base64,"); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+len(";base64,"):]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return Result{Err: fmt.Errorf("decode base64: %w", err), Risk: "invalid base64 encoding"}
	}
	return v.ValidateBytes(raw)
}

// ValidateBytes screens raw image bytes.
func (v *Validator) ValidateBytes(raw []byte) Result {
	if len(raw) == 0 {
		return Result{Err: fmt.Errorf("empty image payload"), Risk: "empty payload"}
	}

	if int64(len(raw)) > v.limits.MaxBytes {
		v.logger.WarnTag("ANALYZE", "oversized image: size=%d max=%d", len(raw), v.limits.MaxBytes)
		return Result{
			Err:  fmt.Errorf("file size exceeds limit: %d bytes (max %d bytes)", len(raw), v.limits.MaxBytes),
			Risk: "file too large",
		}
	}

	format := sniffFormat(raw)
	if format == "" {
		header := fmt.Sprintf("%x", raw[:min(len(raw), 16)])
		v.logger.WarnTag("ANALYZE", "unrecognized image header: %s", header)
		return Result{Err: fmt.Errorf("unrecognized image format"), Risk: "unknown file signature"}
	}

	result := Result{OK: true, Format: format, FileSize: int64(len(raw))}
	if !v.limits.DecodeCheck {
		return result
	}

	cfg, actualFormat, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Result{Err: fmt.Errorf("decode image config: %w", err), Risk: "corrupted image data"}
	}
	if actualFormat != "" {
		result.Format = actualFormat
	}

	if cfg.Width > v.limits.MaxWidth || cfg.Height > v.limits.MaxHeight {
		return Result{
			Err: fmt.Errorf("dimensions exceed limit: %dx%d (max %dx%d)",
				cfg.Width, cfg.Height, v.limits.MaxWidth, v.limits.MaxHeight),
			Risk: "dimensions too large",
		}
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > v.limits.MaxPixels {
		return Result{
			Err:  fmt.Errorf("pixel count exceeds limit: %d (max %d)", pixels, v.limits.MaxPixels),
			Risk: "pixel count too high",
		}
	}

	result.Width = cfg.Width
	result.Height = cfg.Height
	v.logger.DebugTag("ANALYZE", "image accepted: format=%s size=%d dims=%dx%d",
		result.Format, result.FileSize, result.Width, result.Height)
	return result
}

func sniffFormat(raw []byte) string {
	for format, signature := range signatures {
		if bytes.HasPrefix(raw, signature) {
			return format
		}
	}
	return ""
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
