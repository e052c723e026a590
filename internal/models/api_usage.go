package models

import "time"

// APIUsageRecord is one logged logical call to the Sportradar API
type APIUsageRecord struct {
	ID         int64     `db:"id" json:"id"`
	Sport      Sport     `db:"sport" json:"sport"`
	Endpoint   string    `db:"endpoint" json:"endpoint"`
	StatusCode int       `db:"status_code" json:"status_code"`
	Attempts   int       `db:"attempts" json:"attempts"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// UsageFilter narrows a usage count. Zero values are ignored.
type UsageFilter struct {
	Sport        Sport
	Endpoint     string
	CreatedAfter time.Time
}

// UsageSummary is the quota position of one sport for the current window
type UsageSummary struct {
	Sport     Sport `json:"sport"`
	Used      int   `json:"used"`
	Quota     int   `json:"quota"`
	Remaining int   `json:"remaining"`
	Warning   bool  `json:"warning"`
}

// QuotaWarningRatio is the used/quota ratio above which a summary warns
const QuotaWarningRatio = 0.8

// NewUsageSummary derives the summary for used calls against quota
func NewUsageSummary(sport Sport, used, quota int) UsageSummary {
	remaining := quota - used
	if remaining < 0 {
		remaining = 0
	}

	warning := used > 0
	if quota > 0 {
		warning = float64(used)/float64(quota) > QuotaWarningRatio
	}

	return UsageSummary{
		Sport:     sport,
		Used:      used,
		Quota:     quota,
		Remaining: remaining,
		Warning:   warning,
	}
}

// Percent returns used as a percentage of quota
func (s UsageSummary) Percent() float64 {
	if s.Quota <= 0 {
		return 0
	}
	return float64(s.Used) / float64(s.Quota) * 100
}
