package dto

// TierUserView groups one user with their current membership and full
// history ledger for the admin tier dashboard.
type TierUserView struct {
	User              UserInfo           `json:"user"`
	CurrentMembership *MembershipSummary `json:"current_membership,omitempty"`
	History           []HistoryItem      `json:"history"`
}

type TierCount struct {
	Tier  string `json:"tier"`
	Count int    `json:"count"`
}

type MemberStats struct {
	TotalPurchases      int         `json:"total_purchases"`
	TotalSpent          float64     `json:"total_spent"`
	AverageDurationDays float64     `json:"average_duration_days"`
	TierDistribution    []TierCount `json:"tier_distribution"`
}
