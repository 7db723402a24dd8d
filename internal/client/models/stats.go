package models

// RoleCount is one slice of the role distribution chart.
type RoleCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DashboardStats is the aggregate snapshot shown on the dashboard. When the
// remote is unreachable the gateway computes it from the mirror instead.
type DashboardStats struct {
	ActiveUsers       int         `json:"activeUsers"`
	TotalMessages     int         `json:"totalMessages"`
	TotalMemos        int         `json:"totalMemos"`
	SystemHealth      string      `json:"systemHealth"`
	RolesDistribution []RoleCount `json:"rolesDistribution"`
}
