package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	models "LeadPulse/internal/domain/models"
	domrepo "LeadPulse/internal/domain/repository"
	domsvc "LeadPulse/internal/domain/service"
	icache "LeadPulse/internal/service/cache"
	"LeadPulse/internal/service/metrics"
	"LeadPulse/internal/service/ratelimit"
	"LeadPulse/internal/usecase"
	xhttp "LeadPulse/pkg/http"
	xlogger "LeadPulse/pkg/logger"
	"LeadPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// InsightsEchoHandler exposes the dashboard insights API. Responses
// are cached as raw bytes per parameter set and each endpoint carries
// a per-client token bucket.
type InsightsEchoHandler struct {
	logger *xlogger.Logger
	agg    *usecase.InsightAggregator
	full   *usecase.InsightsAggregateUseCase
	obs    *usecase.ObservationsUseCase
	cache  icache.BytesCache
	rl     *ratelimit.Limiter
	health func(context.Context) error
}

func NewInsightsEchoHandler(logger *xlogger.Logger, agg *usecase.InsightAggregator, full *usecase.InsightsAggregateUseCase, obs *usecase.ObservationsUseCase) *InsightsEchoHandler {
	metrics.Register()
	return &InsightsEchoHandler{logger: logger, agg: agg, full: full, obs: obs, rl: ratelimit.New()}
}

// SetCache enables byte-level response caching.
func (h *InsightsEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetHealthCheck wires a storage ping into /health.
func (h *InsightsEchoHandler) SetHealthCheck(fn func(context.Context) error) { h.health = fn }

func (h *InsightsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api")
	g.GET("/forecast", h.Forecast)
	g.GET("/anomaly", h.Anomaly)
	g.GET("/kpi", h.KPI)
	g.GET("/insights", h.Insights)
	g.GET("/series", h.Series)
}

func (h *InsightsEchoHandler) Forecast(c echo.Context) error {
	start := time.Now()
	endpoint := "forecast"
	defer func() { metrics.InsightsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":forecast", 3, 1) {
		h.logger.Warn("insights.forecast rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", http.StatusTooManyRequests))
	}

	key := usecase.ForecastCacheKey(req.HorizonHours, req.HistoryHours)
	if b, ok := h.cached(c, endpoint, key); ok {
		return c.JSONBlob(http.StatusOK, b)
	}

	res, err := h.agg.Forecast(c.Request().Context(), usecase.ForecastParams{
		HorizonHours: req.HorizonHours,
		HistoryHours: req.HistoryHours,
	})
	if err != nil {
		metrics.InsightsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("insights.forecast error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return h.respond(c, endpoint, key, res, 60*time.Second)
}

func (h *InsightsEchoHandler) Anomaly(c echo.Context) error {
	start := time.Now()
	endpoint := "anomaly"
	defer func() { metrics.InsightsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.AnomalyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":anomaly", 5, 2) {
		h.logger.Warn("insights.anomaly rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", http.StatusTooManyRequests))
	}

	key := icache.Key("anomaly", req.Metric, req.K, req.WindowHours, req.LookbackHours)
	if b, ok := h.cached(c, endpoint, key); ok {
		return c.JSONBlob(http.StatusOK, b)
	}

	recs, err := h.agg.Anomalies(c.Request().Context(), domsvc.AnomalyParams{
		Metric:        domrepo.Metric(req.Metric),
		K:             req.K,
		WindowHours:   req.WindowHours,
		LookbackHours: req.LookbackHours,
	})
	if err != nil {
		metrics.InsightsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("insights.anomaly error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if recs == nil {
		recs = []models.AnomalyRecord{}
	}
	return h.respond(c, endpoint, key, recs, 30*time.Second)
}

func (h *InsightsEchoHandler) KPI(c echo.Context) error {
	start := time.Now()
	endpoint := "kpi"
	defer func() { metrics.InsightsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.KPIRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := icache.Key("kpi", req.WindowHours)
	if b, ok := h.cached(c, endpoint, key); ok {
		return c.JSONBlob(http.StatusOK, b)
	}

	res, err := h.agg.KPI(c.Request().Context(), req.WindowHours)
	if err != nil {
		metrics.InsightsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("insights.kpi error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return h.respond(c, endpoint, key, res, 30*time.Second)
}

func (h *InsightsEchoHandler) Insights(c echo.Context) error {
	start := time.Now()
	endpoint := "insights"
	defer func() { metrics.InsightsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.InsightsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":insights", 2, 1) {
		h.logger.Warn("insights.aggregate rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", http.StatusTooManyRequests))
	}

	res, err := h.full.GetInsights(c.Request().Context(), usecase.GetInsightsParams{
		HorizonHours: req.HorizonHours,
	})
	if err != nil {
		metrics.InsightsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("insights.aggregate error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsEchoHandler) Series(c echo.Context) error {
	start := time.Now()
	endpoint := "series"
	defer func() { metrics.InsightsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := util.FloorHour(time.Now().UTC())
	from, to := util.AlignFromTo(
		util.ParseTimeDefault(req.From, now.Add(-7*24*time.Hour)),
		util.ParseTimeDefault(req.To, now),
	)

	res, err := h.obs.GetSeries(c.Request().Context(), usecase.GetSeriesParams{
		Metric: domrepo.Metric(req.Metric),
		From:   from,
		To:     to,
		Limit:  req.Limit,
	})
	if err != nil {
		metrics.InsightsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("insights.series error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsEchoHandler) Health(c echo.Context) error {
	if h.health != nil {
		if err := h.health(c.Request().Context()); err != nil {
			h.logger.Error("health check failed", xlogger.Error(err))
			return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// cached returns the cached body for key if present.
func (h *InsightsEchoHandler) cached(c echo.Context, endpoint, key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		h.logger.Warn("insights cache_get_error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
		return nil, false
	}
	if !ok {
		h.logger.Debug("insights cache_miss", xlogger.String("key", key))
		return nil, false
	}
	h.logger.Debug("insights cache_hit", xlogger.String("key", key))
	return b, true
}

// respond writes the envelope the rest of the API uses and stores the
// rendered body for subsequent hits.
func (h *InsightsEchoHandler) respond(c echo.Context, endpoint, key string, data interface{}, ttl time.Duration) error {
	if h.cache != nil {
		if b, err := json.Marshal(xhttp.APIResponse{Status: http.StatusOK, Message: http.StatusText(http.StatusOK), Data: data}); err == nil {
			if err := h.cache.SetBytes(key, b, ttl); err != nil {
				h.logger.Warn("insights cache_set_error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, data)
}
