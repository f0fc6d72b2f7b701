package models

// Requests for insights HTTP endpoints. Defined in domain for consistency and reuse.

type ForecastRequest struct {
	HorizonHours int `query:"horizon_hours" json:"horizon_hours" default:"168" validate:"gte=1,lte=2160"`
	HistoryHours int `query:"history_hours" json:"history_hours" default:"336" validate:"gte=1,lte=8760"`
}

type AnomalyRequest struct {
	Metric        string  `query:"metric" json:"metric" default:"cpl" validate:"oneof=cpl roi leads"`
	K             float64 `query:"k" json:"k" default:"2.5" validate:"gt=0"`
	WindowHours   int     `query:"window_hours" json:"window_hours" default:"168" validate:"gte=1,lte=8760"`
	LookbackHours int     `query:"lookback_hours" json:"lookback_hours" default:"336" validate:"gte=1,lte=8760"`
}

type KPIRequest struct {
	WindowHours int `query:"window_hours" json:"window_hours" default:"24" validate:"gte=1,lte=8760"`
}

type SeriesRequest struct {
	Metric string `query:"metric" json:"metric" default:"leads" validate:"oneof=cpl roi leads"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"10000" validate:"gte=1,lte=50000"`
}

type InsightsRequest struct {
	HorizonHours int     `query:"horizon_hours" json:"horizon_hours" default:"168" validate:"gte=1,lte=2160"`
	K            float64 `query:"k" json:"k" default:"2.5" validate:"gt=0"`
}
