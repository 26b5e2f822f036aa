package models

// StatusEntry is one classified status as stored in the "status" table.
// Text is always the raw, un-normalized input.
type StatusEntry struct {
	ID         int64   `json:"id" db:"id_status"`
	UserID     string  `json:"user_id" db:"id_user"`
	Text       string  `json:"text" db:"isi_status"`
	Label      string  `json:"label" db:"label_sentimen"`
	Confidence float64 `json:"confidence" db:"kepercayaan"`
	Date       Date    `json:"date" db:"tanggal_status"`
}

// ClassifyRequest is the body of POST /api/v1/classify and POST /api/v1/statuses.
// Empty text is left to the word gate so it is reported as too short.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// RecordRequest is the body of POST /api/v1/history.
type RecordRequest struct {
	Text       string  `json:"text" binding:"required"`
	Label      string  `json:"label" binding:"required"`
	Confidence float64 `json:"confidence" binding:"gte=0,lte=100"`
}

// Classification is what the pipeline returns for accepted input.
type Classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// AnalyzeResult pairs a stored entry with the advice shown for its label.
type AnalyzeResult struct {
	Entry           StatusEntry `json:"entry"`
	Recommendations []string    `json:"recommendations,omitempty"`
}

// LabelCount is one row of the per-label breakdown.
type LabelCount struct {
	Label          string  `json:"label" db:"label_sentimen"`
	Count          int     `json:"count" db:"total"`
	MeanConfidence float64 `json:"mean_confidence" db:"mean_confidence"`
}

// DailyCount is one (date, label) point of the trend series.
type DailyCount struct {
	Date  Date   `json:"date" db:"tanggal_status"`
	Label string `json:"label" db:"label_sentimen"`
	Count int    `json:"count" db:"total"`
}

// HistorySummary is the data behind the trend charts.
type HistorySummary struct {
	UserID         string       `json:"user_id"`
	Total          int          `json:"total"`
	MeanConfidence float64      `json:"mean_confidence"`
	ByLabel        []LabelCount `json:"by_label"`
	Daily          []DailyCount `json:"daily"`
}

// ImportReport summarises a feed import run.
type ImportReport struct {
	UserID   string `json:"user_id"`
	Fetched  int    `json:"fetched"`
	Recorded int    `json:"recorded"`
	Rejected int    `json:"rejected"`
	Empty    int    `json:"empty"`
}
