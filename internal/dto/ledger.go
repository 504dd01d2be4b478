package dto

type MonthTotalResponse struct {
	Month string  `json:"month" example:"January"`
	Total float64 `json:"total" example:"100"`
}

type CategoryTotalResponse struct {
	Name  string  `json:"name" example:"Food"`
	Value float64 `json:"value" example:"150"`
}

type TrendsResponse struct {
	MonthlyTrend  []MonthTotalResponse    `json:"monthly_trend"`
	CategorySplit []CategoryTotalResponse `json:"category_split"`
}

type RefreshResponse struct {
	Rows     int    `json:"rows"`
	Degraded bool   `json:"degraded"`
	LoadedAt string `json:"loaded_at"`
}

type HealthResponse struct {
	Status     string  `json:"status" example:"ok"`
	Source     string  `json:"source" example:"synthetic"`
	Rows       int     `json:"rows"`
	TotalSpent float64 `json:"total_spent" example:"150"`
	LoadedAt   string  `json:"loaded_at"`
}
