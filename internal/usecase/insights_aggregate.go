package usecase

import (
	"context"
	"sync"
	"time"

	"LeadPulse/internal/domain/models"
	domrepo "LeadPulse/internal/domain/repository"
	"LeadPulse/internal/services/anomaly"
)

// InsightsAggregateUseCase fans out to the forecast, anomaly and KPI
// paths in parallel and folds partial failures into an Errors map so
// the dashboard can render whatever did succeed.
type InsightsAggregateUseCase struct {
	agg     *InsightAggregator
	timeout time.Duration
}

func NewInsightsAggregateUseCase(agg *InsightAggregator) *InsightsAggregateUseCase {
	return &InsightsAggregateUseCase{agg: agg, timeout: 10 * time.Second}
}

type GetInsightsParams struct {
	HorizonHours   int
	HistoryHours   int
	KPIWindowHours int
}

func (uc *InsightsAggregateUseCase) GetInsights(ctx context.Context, p GetInsightsParams) (*models.AggregateInsights, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &models.AggregateInsights{
		Timestamp: time.Now(),
		Anomalies: map[string][]models.AnomalyRecord{},
		Errors:    map[string]string{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	metrics := domrepo.AllMetrics()
	ch := make(chan item, 2+len(metrics))
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.agg.Forecast(ctx, ForecastParams{HorizonHours: p.HorizonHours, HistoryHours: p.HistoryHours})
		ch <- item{"forecast", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.agg.KPI(ctx, p.KPIWindowHours)
		ch <- item{"kpi", v, err}
	}()
	for _, m := range metrics {
		wg.Add(1)
		go func(m domrepo.Metric) {
			defer wg.Done()
			v, err := uc.agg.Anomalies(ctx, anomaly.DefaultParams(m))
			ch <- item{"anomalies_" + string(m), v, err}
		}(m)
	}

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			continue
		}
		switch it.name {
		case "forecast":
			res.Forecast = it.val.(*models.ForecastResult)
		case "kpi":
			res.KPI = it.val.(*models.KPISnapshot)
		default:
			metric := it.name[len("anomalies_"):]
			res.Anomalies[metric] = it.val.([]models.AnomalyRecord)
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}
