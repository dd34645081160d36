package models

type SearchRequest struct {
	Query string `form:"query"`
	Page  string `form:"page"`
}

// Popular query periods.
const (
	PeriodAllTime = "all"
	PeriodToday   = "today"
)

type PopularQueriesRequest struct {
	Limit  *int   `form:"limit" binding:"omitempty,min=1"`
	Period string `form:"period" binding:"omitempty,oneof=all today"`
}

// PopularQuery is a logged search query and how often it was run.
type PopularQuery struct {
	QueryText string `json:"query_text"`
	Hits      int64  `json:"hits"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	DBStatus    string `json:"db_status"`
	CacheStatus string `json:"cache_status,omitempty"`
}
