package service

import (
	"spotnsort/models"
)

const (
	basePoints         = 10
	highPriorityBonus  = 5
	resolvedBonus      = 5
	communityHelperMin = 10
	progressTarget     = 10
)

// Badge is an achievement derived from a citizen's reports
type Badge struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Offer is a fixed reward that can be redeemed with points
type Offer struct {
	Title       string `json:"title"`
	Points      int    `json:"points"`
	Description string `json:"description"`
	Redeemable  bool   `json:"redeemable"`
}

// PointsLine is the per-report breakdown
type PointsLine struct {
	ReportID      string `json:"reportId"`
	Problem       string `json:"problem"`
	Base          int    `json:"base"`
	PriorityBonus int    `json:"priorityBonus"`
	ResolvedBonus int    `json:"resolvedBonus"`
	Total         int    `json:"total"`
}

// Progress tracks report count toward the Community Helper badge
type Progress struct {
	Completed int `json:"completed"`
	Target    int `json:"target"`
}

// Rewards is the full rewards view for one citizen
type Rewards struct {
	Points    int          `json:"points"`
	Breakdown []PointsLine `json:"breakdown"`
	Badges    []Badge      `json:"badges"`
	Progress  Progress     `json:"progress"`
	Offers    []Offer      `json:"offers"`
}

var offers = []Offer{
	{Title: "Coffee Voucher", Points: 50, Description: "Redeem 50 points for a free coffee"},
	{Title: "Discount Coupon", Points: 100, Description: "Redeem 100 points for a discount"},
	{Title: "Free Event Ticket", Points: 200, Description: "Redeem 200 points for an event entry"},
}

// ComputeRewards derives points, badges, progress and offers from the citizen's
// own reports. Nothing is persisted.
func ComputeRewards(reports []models.Report) *Rewards {
	out := &Rewards{
		Breakdown: make([]PointsLine, 0, len(reports)),
		Badges:    []Badge{},
		Progress:  Progress{Completed: len(reports), Target: progressTarget},
	}

	anyResolved := false
	for _, r := range reports {
		line := PointsLine{ReportID: r.ID, Problem: r.Problem, Base: basePoints}
		if r.Priority == models.PriorityHigh {
			line.PriorityBonus = highPriorityBonus
		}
		if r.Status == models.StatusResolved {
			line.ResolvedBonus = resolvedBonus
			anyResolved = true
		}
		line.Total = line.Base + line.PriorityBonus + line.ResolvedBonus
		out.Points += line.Total
		out.Breakdown = append(out.Breakdown, line)
	}

	if len(reports) >= 1 {
		out.Badges = append(out.Badges, Badge{Title: "First Report", Description: "Congrats! You submitted your first report."})
	}
	if len(reports) >= communityHelperMin {
		out.Badges = append(out.Badges, Badge{Title: "Community Helper", Description: "You submitted 10 reports helping your community."})
	}
	if anyResolved {
		out.Badges = append(out.Badges, Badge{Title: "Resolved Hero", Description: "Your report helped resolve a local issue!"})
	}

	out.Offers = make([]Offer, len(offers))
	for i, o := range offers {
		o.Redeemable = out.Points >= o.Points
		out.Offers[i] = o
	}
	return out
}
