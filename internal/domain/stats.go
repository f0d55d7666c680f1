package domain

import "time"

// IssueCount is how often a reason appeared across the scanned history.
type IssueCount struct {
	Reason IssueReason `json:"reason"`
	Count  int         `json:"count"`
}

// WeeklyBucket aggregates records verified in one ISO week (Monday, UTC).
type WeeklyBucket struct {
	WeekStart time.Time `json:"weekStart"`
	Total     int       `json:"total"`
	Passed    int       `json:"passed"`
	PassRate  int       `json:"passRate"`
}

// VerificationStats is a read-only summary derived from verification history.
type VerificationStats struct {
	Total        int            `json:"total"`
	PassRate     int            `json:"passRate"`
	CommonIssues []IssueCount   `json:"commonIssues"`
	ToneDrift    float64        `json:"toneDrift"`
	WeeklyTrend  []WeeklyBucket `json:"weeklyTrend"`
}
