package api

// PredictRequest is the transport DTO for one pricing request.
type PredictRequest struct {
	RaceID     string `json:"race_id" validate:"required"`
	BetType    string `json:"bet_type"`
	SnapshotTS string `json:"snapshot_ts" validate:"required"`
	TopK       int    `json:"top_k" validate:"omitempty,gt=0"`
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	OK   bool   `json:"ok"`
	Mode string `json:"mode"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	defaultBetType = "TRI"
	defaultTopK    = 2
)

// applyDefaults fills the optional request fields.
func (r *PredictRequest) applyDefaults() {
	if r.BetType == "" {
		r.BetType = defaultBetType
	}
	if r.TopK == 0 {
		r.TopK = defaultTopK
	}
}
