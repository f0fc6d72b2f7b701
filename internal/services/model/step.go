package model

import (
	"context"
	"fmt"

	"LeadPulse/internal/domain/models"
	domsvc "LeadPulse/internal/domain/service"
	"LeadPulse/pkg/config"
)

// HTTPStepModel exposes the model service's single-step predictor as a
// StepModel capability for the recursive simulator.
type HTTPStepModel struct{ base *HTTPServiceBase }

func NewHTTPStepModel(cfg *config.Config) *HTTPStepModel {
	return &HTTPStepModel{base: NewHTTPServiceBase(cfg)}
}

type predictReq struct {
	Features models.FeatureRow `json:"features"`
}

type predictResp struct {
	Prediction float64 `json:"prediction"`
}

func (m *HTTPStepModel) Predict(ctx context.Context, row models.FeatureRow) (float64, error) {
	var pr predictResp
	if err := m.base.PostJSON(ctx, "/model/predict", predictReq{Features: row}, &pr); err != nil {
		return 0, fmt.Errorf("post predict: %w", err)
	}
	return pr.Prediction, nil
}

var _ domsvc.StepModel = (*HTTPStepModel)(nil)
