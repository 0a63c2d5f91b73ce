package api

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"nutrisense-server-go/internal/domain/analysis"
	"nutrisense-server-go/internal/domain/command"
	"nutrisense-server-go/internal/platform/config"
	"nutrisense-server-go/internal/platform/errors"
	"nutrisense-server-go/internal/platform/logging"
	"nutrisense-server-go/internal/platform/storage"
	"nutrisense-server-go/internal/platform/system"
	httptransport "nutrisense-server-go/internal/transport/http"
)

// Generic failure messages. Anything that is not a validation, rate-limit or
// quota failure is reduced to these so internal details never leak.
const (
	msgInvalidJSON      = "Invalid JSON body"
	msgConfigError      = "Service configuration error"
	msgAnalyzeFailed    = "Analysis failed. Please try again."
	msgChatFailed       = "Chat failed. Please try again."
	msgTranscribeFailed = "Transcription failed. Please try again."
	msgShareFailed      = "Failed to share analysis"
	msgShareNotFound    = "Shared analysis not found"
	msgShareLoadFailed  = "Failed to load shared analysis"
	msgShareUnavailable = "Sharing is not available"
)

// Orchestrator runs validated commands through the provider chain.
type Orchestrator interface {
	Analyze(ctx context.Context, cmd *command.AnalysisCommand) (*analysis.AnalysisRecord, error)
	Chat(ctx context.Context, cmd *command.ChatCommand) (string, error)
	Transcribe(ctx context.Context, cmd *command.TranscriptionCommand) (string, error)
}

// SharedStore persists published analyses. Nil when storage is disabled.
type SharedStore interface {
	SaveShared(record *analysis.AnalysisRecord) (string, error)
	GetShared(code string) (*analysis.AnalysisRecord, error)
}

// Service is the HTTP transport for the analysis API.
type Service struct {
	config        *config.Config
	logger        *logging.Logger
	orchestrator  Orchestrator
	store         SharedStore
	providerNames []string
}

func NewService(
	cfg *config.Config,
	logger *logging.Logger,
	orchestrator Orchestrator,
	store SharedStore,
	providerNames []string,
) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "api.new", "config is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "api.new", "logger is required")
	}
	if orchestrator == nil {
		return nil, errors.New(errors.KindConfig, "api.new", "orchestrator is required")
	}

	return &Service{
		config:        cfg,
		logger:        logger,
		orchestrator:  orchestrator,
		store:         store,
		providerNames: providerNames,
	}, nil
}

// Register mounts the analysis API on the router group.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	router.POST("/analyze", s.handleAnalyze)
	router.POST("/chat", s.handleChat)
	router.POST("/transcribe", s.handleTranscribe)
	router.POST("/share", s.handleShare)
	router.GET("/share/:code", s.handleSharedGet)
	router.GET("/system", s.handleSystem)

	s.logger.InfoTag("HTTP", "analysis API routes registered")
	return nil
}

func (s *Service) handleAnalyze(c *gin.Context) {
	body, ok := s.bindBody(c)
	if !ok {
		return
	}

	cmd, err := command.NewAnalysisCommand(body)
	if err != nil {
		s.respondFailure(c, err, msgAnalyzeFailed, true)
		return
	}

	record, err := s.orchestrator.Analyze(c.Request.Context(), cmd)
	if err != nil {
		s.respondFailure(c, err, msgAnalyzeFailed, true)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Service) handleChat(c *gin.Context) {
	body, ok := s.bindBody(c)
	if !ok {
		return
	}

	cmd, err := command.NewChatCommand(body)
	if err != nil {
		s.respondFailure(c, err, msgChatFailed, true)
		return
	}

	answer, err := s.orchestrator.Chat(c.Request.Context(), cmd)
	if err != nil {
		s.respondFailure(c, err, msgChatFailed, true)
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Response: answer})
}

func (s *Service) handleTranscribe(c *gin.Context) {
	body, ok := s.bindBody(c)
	if !ok {
		return
	}

	cmd, err := command.NewTranscriptionCommand(body)
	if err != nil {
		s.respondFailure(c, err, msgTranscribeFailed, false)
		return
	}

	text, err := s.orchestrator.Transcribe(c.Request.Context(), cmd)
	if err != nil {
		s.respondFailure(c, err, msgTranscribeFailed, false)
		return
	}
	c.JSON(http.StatusOK, TranscribeResponse{Text: text})
}

func (s *Service) handleShare(c *gin.Context) {
	if s.store == nil {
		httptransport.RespondError(c, http.StatusServiceUnavailable, msgShareUnavailable)
		return
	}

	body, ok := s.bindBody(c)
	if !ok {
		return
	}

	// Run the posted record back through normalization so stored rows honor
	// the same caps as fresh analyses.
	raw, err := sonic.Marshal(body)
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	record := analysis.Normalize(raw)

	code, err := s.store.SaveShared(record)
	if err != nil {
		s.logger.ErrorTag("STORE", "share failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, msgShareFailed)
		return
	}
	c.JSON(http.StatusOK, ShareResponse{ShareCode: code})
}

func (s *Service) handleSharedGet(c *gin.Context) {
	if s.store == nil {
		httptransport.RespondError(c, http.StatusServiceUnavailable, msgShareUnavailable)
		return
	}

	record, err := s.store.GetShared(c.Param("code"))
	if err != nil {
		if stderrors.Is(err, storage.ErrSharedNotFound) {
			httptransport.RespondError(c, http.StatusNotFound, msgShareNotFound)
			return
		}
		s.logger.ErrorTag("STORE", "load shared failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, msgShareLoadFailed)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Service) handleSystem(c *gin.Context) {
	cpuPercent, _ := system.CPUUsage()
	memPercent, _ := system.MemoryUsage()

	c.JSON(http.StatusOK, SystemStatus{
		Status:        "ok",
		Providers:     s.providerNames,
		SharedStorage: s.store != nil,
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
	})
}

// bindBody decodes the request body into a generic map. Malformed JSON is
// answered before any validation runs.
func (s *Service) bindBody(c *gin.Context) (map[string]interface{}, bool) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, msgInvalidJSON)
		return nil, false
	}
	return body, true
}

// respondFailure maps an error onto the wire contract. Validation messages
// pass through verbatim; rate-limit and quota failures keep their statuses
// where the operation supports them; everything else collapses to the
// operation's generic message.
func (s *Service) respondFailure(c *gin.Context, err error, generic string, mapProviderStatus bool) {
	s.logger.WarnTag("HTTP", "%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

	switch {
	case errors.IsKind(err, errors.KindValidation):
		httptransport.RespondError(c, http.StatusBadRequest, errors.UserMessage(err))
	case mapProviderStatus && errors.IsKind(err, errors.KindRateLimit):
		httptransport.RespondError(c, http.StatusTooManyRequests, errors.UserMessage(err))
	case mapProviderStatus && errors.IsKind(err, errors.KindQuota):
		httptransport.RespondError(c, http.StatusPaymentRequired, errors.UserMessage(err))
	case errors.IsKind(err, errors.KindConfig):
		httptransport.RespondError(c, http.StatusInternalServerError, msgConfigError)
	default:
		httptransport.RespondError(c, http.StatusBadRequest, generic)
	}
}
