package api

import (
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mail-cci/phishguard/internal/analysis"
	"github.com/mail-cci/phishguard/internal/metrics"
	"github.com/mail-cci/phishguard/internal/scoring"
	"github.com/mail-cci/phishguard/internal/storage"
	"github.com/mail-cci/phishguard/internal/types"
	"github.com/mail-cci/phishguard/pkg/helpers"
)

// Handler wires the detector pipeline, aggregation engine and optional
// history store into HTTP endpoints.
type Handler struct {
	mu       sync.RWMutex
	analyzer *analysis.Analyzer
	engine   *scoring.Engine
	store    *storage.Store
	logger   *zap.Logger
}

func NewHandler(analyzer *analysis.Analyzer, engine *scoring.Engine, store *storage.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{analyzer: analyzer, engine: engine, store: store, logger: logger}
}

// Swap replaces the pipeline components after a configuration reload.
// In-flight requests finish on the components they started with.
func (h *Handler) Swap(analyzer *analysis.Analyzer, engine *scoring.Engine) {
	h.mu.Lock()
	h.analyzer = analyzer
	h.engine = engine
	h.mu.Unlock()
}

func (h *Handler) components() (*analysis.Analyzer, *scoring.Engine) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.analyzer, h.engine
}

// normalizeView fills in the derived fields clients usually omit: the
// per-header domains, the mismatch flags and the parsed
// Authentication-Results. Fields the client already set are kept.
func normalizeView(view *types.MetadataView, rawAuthHeader string) {
	if view.FromDomain == "" {
		view.FromDomain = helpers.ExtractDomain(view.From)
	}
	if view.ReplyToDomain == "" {
		view.ReplyToDomain = helpers.ExtractDomain(view.ReplyTo)
	}
	if view.ReturnPathDomain == "" {
		view.ReturnPathDomain = helpers.ExtractDomain(view.ReturnPath)
	}
	if view.MessageIDDomain == "" {
		view.MessageIDDomain = helpers.ExtractMessageIDDomain(view.MessageID)
	}

	view.ReplyToMismatch = view.FromDomain != "" && view.ReplyToDomain != "" &&
		view.FromDomain != view.ReplyToDomain
	view.ReturnPathMismatch = view.FromDomain != "" && view.ReturnPathDomain != "" &&
		view.FromDomain != view.ReturnPathDomain
	view.MessageIDMismatch = view.FromDomain != "" && view.MessageIDDomain != "" &&
		view.FromDomain != view.MessageIDDomain

	if rawAuthHeader != "" && !view.Authentication.Present() {
		view.Authentication = analysis.ParseAuthenticationResults(rawAuthHeader)
	}
	if view.ReceivedCount == 0 {
		view.ReceivedCount = len(view.ReceivedHeaders)
	}
	if view.BodyLength == 0 {
		view.BodyLength = len(view.Body)
	}
}

type assessRequest struct {
	Message               types.MetadataView `json:"message"`
	AuthenticationResults string             `json:"authentication_results,omitempty"`
}

// Assess runs the full pipeline over one parsed message and returns the
// assessment. The scheme query parameter selects the aggregation scheme;
// the trigger scheme is the default.
func (h *Handler) Assess(c *gin.Context) {
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	scheme := scoring.TriggerWeighted
	if c.Query("scheme") == string(scoring.WeightedComponent) {
		scheme = scoring.WeightedComponent
	}

	view := req.Message
	normalizeView(&view, req.AuthenticationResults)

	correlationID := helpers.GenerateCorrelationID()
	start := time.Now()

	analyzer, engine := h.components()
	set := analyzer.Run(c.Request.Context(), &view)
	assessment := engine.Aggregate(c.Request.Context(), scheme, &view, set)
	assessment.CorrelationID = correlationID

	metrics.AssessmentsTotal.WithLabelValues(assessment.Scheme, assessment.RiskLevel).Inc()
	metrics.AssessmentDuration.WithLabelValues(assessment.Scheme).Observe(time.Since(start).Seconds())

	h.logger.Info("assessment completed",
		zap.String("correlation_id", correlationID),
		zap.String("scheme", assessment.Scheme),
		zap.Float64("score", assessment.OverallScore),
		zap.String("risk_level", assessment.RiskLevel),
		zap.Strings("failed_modules", assessment.FailedModules),
	)

	if h.store != nil {
		if _, err := h.store.SaveAssessment(c.Request.Context(), &view, assessment); err != nil {
			h.logger.Error("failed to persist assessment",
				zap.String("correlation_id", correlationID),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, assessment)
}

// GetAssessment returns a previously stored assessment by correlation ID.
func (h *Handler) GetAssessment(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assessment history is not configured"})
		return
	}

	id := c.Param("id")
	assessment, err := h.store.GetAssessment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
			return
		}
		h.logger.Error("failed to load assessment", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, assessment)
}
