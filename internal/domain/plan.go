package domain

import "strings"

// PlanLimits caps what a tenant can provision under its plan.
type PlanLimits struct {
	Locations int  `json:"locations"`
	Employees int  `json:"employees"`
	HasAI     bool `json:"has_ai"`
}

// Plan is one subscription tier. The registry is closed and code-defined,
// like the permission enumeration.
type Plan struct {
	PlanID string     `json:"plan_id"`
	Name   string     `json:"name"`
	Price  float64    `json:"price"`
	Limits PlanLimits `json:"limits"`
}

var plans = map[string]Plan{
	"trial":      {PlanID: "trial", Name: "Trial", Price: 0, Limits: PlanLimits{Locations: 1, Employees: 3, HasAI: false}},
	"basic":      {PlanID: "basic", Name: "Basic", Price: 0, Limits: PlanLimits{Locations: 1, Employees: 3, HasAI: false}},
	"pro":        {PlanID: "pro", Name: "Pro", Price: 99, Limits: PlanLimits{Locations: 5, Employees: 15, HasAI: true}},
	"enterprise": {PlanID: "enterprise", Name: "Enterprise", Price: 299, Limits: PlanLimits{Locations: 999, Employees: 999, HasAI: true}},
}

// PlanByName looks up a tier case-insensitively. Unknown plans fall back to
// Trial limits so a bad stored value never widens access.
func PlanByName(name string) Plan {
	if p, ok := plans[strings.ToLower(name)]; ok {
		return p
	}
	return plans["trial"]
}

// KnownPlan reports whether name is a registered tier.
func KnownPlan(name string) bool {
	_, ok := plans[strings.ToLower(name)]
	return ok
}
