package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"elliott-wave-analyzer/internal/cache"
	"elliott-wave-analyzer/internal/database"
	"elliott-wave-analyzer/internal/elliott"
	"elliott-wave-analyzer/internal/indicators"
)

// AnalyzeRequest is the payload for POST /api/v1/analyze
type AnalyzeRequest struct {
	Prices      []float64 `json:"prices" binding:"required"`
	Sensitivity float64   `json:"sensitivity"`
	// WithIndicators attaches RSI/MACD confirmations when the server has
	// indicators enabled.
	WithIndicators bool `json:"with_indicators"`
}

// AnalyzeResponse bundles the analysis with its derived tables
type AnalyzeResponse struct {
	Analysis  *elliott.Analysis          `json:"analysis"`
	Fibonacci *elliott.FibonacciSnapshot `json:"fibonacci"`
	Targets   *elliott.PriceTargets      `json:"targets"`
	Cached    bool                       `json:"cached"`
	RequestID string                     `json:"request_id"`
}

func (s *Server) handleHealth(c *gin.Context) {
	health := gin.H{
		"status":  "healthy",
		"service": "elliott-wave-analyzer",
	}
	if s.cache != nil {
		health["cache"] = s.cache.IsHealthy()
	}
	c.JSON(http.StatusOK, health)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if len(req.Prices) > s.analysisCfg.MaxSeriesLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "price series too long",
			"limit": s.analysisCfg.MaxSeriesLength,
		})
		return
	}
	if req.Sensitivity == 0 {
		req.Sensitivity = s.analysisCfg.DefaultSensitivity
	}

	requestID := c.GetString("request_id")
	log := s.logger.With().Str("request_id", requestID).Logger()

	key := cache.AnalysisKey(req.Prices, req.Sensitivity)
	if s.cache != nil && !req.WithIndicators {
		if analysis, ok := s.cache.GetAnalysis(c.Request.Context(), key); ok {
			log.Debug().Msg("analysis served from cache")
			c.JSON(http.StatusOK, AnalyzeResponse{
				Analysis:  analysis,
				Fibonacci: elliott.LatestFibonacci(analysis.Waves),
				Targets:   elliott.PotentialTargets(analysis.CurrentWave, analysis.TradingSignal.Entry),
				Cached:    true,
				RequestID: requestID,
			})
			return
		}
	}

	var snapshot *elliott.IndicatorSnapshot
	if req.WithIndicators && s.analysisCfg.EnableIndicators {
		snapshot = indicators.Snapshot(req.Prices)
	}

	analysis, err := s.analyzer.AnalyzeWithIndicators(req.Prices, req.Sensitivity, snapshot)
	if err != nil {
		if err == elliott.ErrInsufficientData {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   err.Error(),
				"minimum": elliott.MinDataPoints,
			})
			return
		}
		log.Error().Err(err).Msg("analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	if s.cache != nil && !req.WithIndicators {
		s.cache.SetAnalysis(c.Request.Context(), key, analysis)
	}

	if s.repo != nil {
		record := &database.AnalysisRecord{
			SeriesDigest:     key,
			SeriesLength:     len(req.Prices),
			Sensitivity:      req.Sensitivity,
			CurrentWave:      analysis.CurrentWave.CurrentWave,
			NextWave:         analysis.CurrentWave.NextWave,
			WaveCount:        len(analysis.Waves),
			SignalDirection:  string(analysis.TradingSignal.Direction),
			SignalConfidence: analysis.TradingSignal.Confidence,
			EntryPrice:       analysis.TradingSignal.Entry,
			StopLoss:         analysis.TradingSignal.StopLoss,
			TakeProfit:       analysis.TradingSignal.TakeProfit,
		}
		if err := s.repo.SaveAnalysis(c.Request.Context(), record); err != nil {
			// History is best-effort; the analysis still goes out.
			log.Warn().Err(err).Msg("failed to persist analysis")
		}
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		Analysis:  analysis,
		Fibonacci: elliott.LatestFibonacci(analysis.Waves),
		Targets:   elliott.PotentialTargets(analysis.CurrentWave, analysis.TradingSignal.Entry),
		RequestID: requestID,
	})
}

// handleFibonacci runs the pipeline but returns only the level tables of
// the latest completed waves.
func (s *Server) handleFibonacci(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Prices) > s.analysisCfg.MaxSeriesLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "price series too long",
			"limit": s.analysisCfg.MaxSeriesLength,
		})
		return
	}
	if req.Sensitivity == 0 {
		req.Sensitivity = s.analysisCfg.DefaultSensitivity
	}

	analysis, err := s.analyzer.Analyze(req.Prices, req.Sensitivity)
	if err != nil {
		if err == elliott.ErrInsufficientData {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   err.Error(),
				"minimum": elliott.MinDataPoints,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	c.JSON(http.StatusOK, elliott.LatestFibonacci(analysis.Waves))
}

func (s *Server) handleRecentAnalyses(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis history is not enabled"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = parsed
	}

	records, err := s.repo.GetRecentAnalyses(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load analysis history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analysis history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(records),
		"analyses": records,
	})
}

// handleAnalysesByDigest lists prior runs over one price series, identified
// by its cache digest as returned in the persisted records.
func (s *Server) handleAnalysesByDigest(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis history is not enabled"})
		return
	}

	digest := c.Query("digest")
	if digest == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "digest query parameter is required"})
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = parsed
	}

	records, err := s.repo.GetAnalysesByDigest(c.Request.Context(), digest, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load analysis history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analysis history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"digest":   digest,
		"count":    len(records),
		"analyses": records,
	})
}
