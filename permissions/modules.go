package permissions

import "strings"

// ModuleKey names a functional area of the portal.
type ModuleKey string

const (
	ModuleDashboard      ModuleKey = "DASHBOARD"
	ModuleCases          ModuleKey = "CASES"
	ModuleEvidence       ModuleKey = "EVIDENCE"
	ModuleDetectiveBoard ModuleKey = "DETECTIVE_BOARD"
	ModuleMostWanted     ModuleKey = "MOST_WANTED"
	ModuleCaseStatus     ModuleKey = "CASE_STATUS"
	ModuleReports        ModuleKey = "REPORTS"
	ModuleAdmin          ModuleKey = "ADMIN"
	ModuleIntake         ModuleKey = "INTAKE"
)

// Module describes a module for navigation menus.
type Module struct {
	Key         ModuleKey `json:"key"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Route       string    `json:"route"`
}

var modules = []Module{
	{Key: ModuleDashboard, Title: "Dashboard", Description: "Overview of your modules.", Route: "/dashboard"},
	{Key: ModuleCases, Title: "Cases", Description: "Browse and manage cases.", Route: "/cases"},
	{Key: ModuleEvidence, Title: "Evidence", Description: "Register and review evidence.", Route: "/evidence"},
	{Key: ModuleDetectiveBoard, Title: "Detective Board", Description: "Connect clues and visualize links.", Route: "/detective-board"},
	{Key: ModuleCaseStatus, Title: "Case Status", Description: "Track the status of cases and complaints.", Route: "/case-status"},
	{Key: ModuleReports, Title: "Reports", Description: "Generate global case reports.", Route: "/reports"},
	{Key: ModuleMostWanted, Title: "Most Wanted", Description: "Severe tracking list and rewards.", Route: "/most-wanted"},
	{Key: ModuleIntake, Title: "Complaints", Description: "File and review complaints.", Route: "/intake"},
	{Key: ModuleAdmin, Title: "Admin", Description: "Manage users, roles, and settings.", Route: "/admin"},
}

// Modules returns a copy of the module registry in menu order.
func Modules() []Module {
	out := make([]Module, len(modules))
	copy(out, modules)
	return out
}

// ModuleByKey looks up a module descriptor.
func ModuleByKey(key ModuleKey) (Module, bool) {
	for _, m := range modules {
		if m.Key == key {
			return m, true
		}
	}
	return Module{}, false
}

// ModuleForRoute returns the module whose route is the longest prefix of
// path, matching on whole path segments.
func ModuleForRoute(path string) (Module, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	var (
		best  Module
		found bool
	)
	for _, m := range modules {
		if path != m.Route && !strings.HasPrefix(path, m.Route+"/") {
			continue
		}
		if !found || len(m.Route) > len(best.Route) {
			best, found = m, true
		}
	}
	return best, found
}
