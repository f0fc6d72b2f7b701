package model

import (
	"context"
	"fmt"
	"time"

	"LeadPulse/internal/domain/models"
	domsvc "LeadPulse/internal/domain/service"
	"LeadPulse/pkg/config"
)

// HTTPDirectModel exposes the model service's future-range predictor
// (Prophet-style) as a DirectModel capability.
type HTTPDirectModel struct{ base *HTTPServiceBase }

func NewHTTPDirectModel(cfg *config.Config) *HTTPDirectModel {
	return &HTTPDirectModel{base: NewHTTPServiceBase(cfg)}
}

type rangeReq struct {
	Start        string `json:"start"`
	HorizonHours int    `json:"horizon_hours"`
}

type rangePoint struct {
	Datetime string `json:"datetime"`
	Leads    int64  `json:"leads"`
}

type rangeResp struct {
	Points []rangePoint `json:"points"`
}

func (m *HTTPDirectModel) PredictRange(ctx context.Context, start time.Time, horizonHours int) ([]models.ForecastPoint, error) {
	var rr rangeResp
	req := rangeReq{Start: start.UTC().Format(time.RFC3339), HorizonHours: horizonHours}
	if err := m.base.PostJSONWithRetry(ctx, "/model/forecast", req, &rr, 3); err != nil {
		return nil, fmt.Errorf("post forecast: %w", err)
	}

	out := make([]models.ForecastPoint, 0, len(rr.Points))
	for _, p := range rr.Points {
		ts, err := time.Parse(time.RFC3339, p.Datetime)
		if err != nil {
			return nil, fmt.Errorf("parse point datetime %q: %w", p.Datetime, err)
		}
		out = append(out, models.ForecastPoint{Bucket: ts, Leads: p.Leads})
	}
	return out, nil
}

var _ domsvc.DirectModel = (*HTTPDirectModel)(nil)
