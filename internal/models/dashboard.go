package models

import "time"

// DashboardSummary is the admin landing-page aggregate.
type DashboardSummary struct {
	Users        UserCounts        `json:"users"`
	Applications ApplicationCounts `json:"applications"`
	GeneratedAt  time.Time         `json:"generatedAt"`
}
