package models

import (
	"fmt"
	"time"
)

// Plan is a subscription tier.
type Plan string

const (
	PlanFree      Plan = "FREE"
	PlanMonthly   Plan = "MONTHLY"
	PlanSixMonths Plan = "SIXMONTHS"
	PlanYearly    Plan = "YEARLY"
)

// Unlimited is returned by DailyProjectLimit for tiers without a cap.
const Unlimited = -1

var dailyProjectLimits = map[Plan]int{
	PlanFree:      5,
	PlanMonthly:   20,
	PlanSixMonths: Unlimited,
	PlanYearly:    Unlimited,
}

// ParsePlan validates a tier name.
func ParsePlan(s string) (Plan, error) {
	p := Plan(s)
	if _, ok := dailyProjectLimits[p]; !ok {
		return "", fmt.Errorf("unknown plan %q", s)
	}
	return p, nil
}

// DailyProjectLimit returns how many projects the tier may create per
// calendar day, or Unlimited. Unknown tiers get the FREE allowance.
func (p Plan) DailyProjectLimit() int {
	if n, ok := dailyProjectLimits[p]; ok {
		return n
	}
	return dailyProjectLimits[PlanFree]
}

// IsPaid reports whether the tier is anything above FREE.
func (p Plan) IsPaid() bool {
	_, ok := dailyProjectLimits[p]
	return ok && p != PlanFree
}

// ExpiryFrom returns when a tier bought at t lapses. FREE never expires.
func (p Plan) ExpiryFrom(t time.Time) *time.Time {
	var exp time.Time
	switch p {
	case PlanMonthly:
		exp = t.AddDate(0, 1, 0)
	case PlanSixMonths:
		exp = t.AddDate(0, 6, 0)
	case PlanYearly:
		exp = t.AddDate(1, 0, 0)
	default:
		return nil
	}
	return &exp
}

// Expired reports whether the user's paid tier has lapsed at now.
func (u *User) Expired(now time.Time) bool {
	return u.Plan != PlanFree && u.PlanExpiry != nil && now.After(*u.PlanExpiry)
}
