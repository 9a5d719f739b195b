package models

// AdminStats is the dashboard summary.
type AdminStats struct {
	TotalUsers      int            `json:"total_users"`
	TotalProjects   int            `json:"total_projects"`
	ActiveUsers     int            `json:"active_users"` // users with at least one project
	PaidUsers       int            `json:"paid_users"`
	PendingPayments int            `json:"pending_payments"`
	PlanCounts      map[Plan]int   `json:"plan_counts"`
	AWSServices     map[string]int `json:"aws_services"`
}
