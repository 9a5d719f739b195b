package models

import (
	"testing"
	"time"
)

func TestPlan_DailyProjectLimit(t *testing.T) {
	tests := []struct {
		plan Plan
		want int
	}{
		{PlanFree, 5},
		{PlanMonthly, 20},
		{PlanSixMonths, Unlimited},
		{PlanYearly, Unlimited},
		{Plan("GOLD"), 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			if got := tt.plan.DailyProjectLimit(); got != tt.want {
				t.Errorf("DailyProjectLimit() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPlan_ExpiryFrom(t *testing.T) {
	start := time.Date(2024, time.January, 31, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		plan Plan
		want *time.Time
	}{
		{PlanFree, nil},
		{PlanMonthly, ptrTime(start.AddDate(0, 1, 0))},
		{PlanSixMonths, ptrTime(time.Date(2024, time.July, 31, 10, 0, 0, 0, time.UTC))},
		{PlanYearly, ptrTime(time.Date(2025, time.January, 31, 10, 0, 0, 0, time.UTC))},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			got := tt.plan.ExpiryFrom(start)
			if tt.want == nil {
				if got != nil {
					t.Errorf("ExpiryFrom() = %v, want nil", got)
				}
				return
			}
			if got == nil || !got.Equal(*tt.want) {
				t.Errorf("ExpiryFrom() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUser_Expired(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{"paid past expiry", User{Plan: PlanMonthly, PlanExpiry: &past}, true},
		{"paid before expiry", User{Plan: PlanYearly, PlanExpiry: &future}, false},
		{"paid without expiry", User{Plan: PlanMonthly}, false},
		{"free with stale expiry", User{Plan: PlanFree, PlanExpiry: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParsePlan(t *testing.T) {
	if _, err := ParsePlan("MONTHLY"); err != nil {
		t.Errorf("ParsePlan(MONTHLY): %v", err)
	}
	if _, err := ParsePlan("monthly"); err == nil {
		t.Error("ParsePlan should be case-sensitive")
	}
}

func TestFileSet_CloneIsIndependent(t *testing.T) {
	orig := FileSet{"main.tf": "a"}
	c := orig.Clone()
	c["main.tf"] = "b"
	c["outputs.tf"] = "c"

	if orig["main.tf"] != "a" || len(orig) != 1 {
		t.Errorf("original mutated: %v", orig)
	}
	if names := c.Names(); len(names) != 2 || names[0] != "main.tf" {
		t.Errorf("Names() = %v", names)
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
