package dto

type RunAnalysisRequest struct {
	UserID   string `json:"user_id"`
	Scenario string `json:"scenario"`
	Count    int    `json:"count"`
}
