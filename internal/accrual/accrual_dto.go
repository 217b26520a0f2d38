package accrual

import "time"

type RunResponse struct {
	MonthKey   string     `json:"month_key"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Succeeded  int        `json:"succeeded"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	LastError  string     `json:"last_error,omitempty"`
}

func mapToResponse(r Run) RunResponse {
	return RunResponse{
		MonthKey:   r.MonthKey,
		Status:     string(r.Status),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Succeeded:  r.Succeeded,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		LastError:  r.LastError,
	}
}
