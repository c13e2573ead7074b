package permissions

// roleModules is the authorization table, one row per role.
var roleModules = map[Role][]ModuleKey{
	RoleCitizen:       {ModuleDashboard, ModuleIntake, ModuleCaseStatus, ModuleMostWanted},
	RolePoliceOfficer: {ModuleDashboard, ModuleCases, ModuleEvidence, ModuleIntake, ModuleCaseStatus, ModuleMostWanted},
	RoleDetective:     {ModuleDashboard, ModuleCases, ModuleEvidence, ModuleDetectiveBoard, ModuleIntake, ModuleCaseStatus, ModuleMostWanted},
	RoleCaptain:       {ModuleDashboard, ModuleCases, ModuleEvidence, ModuleReports, ModuleIntake, ModuleCaseStatus, ModuleMostWanted},
	RoleJudge:         {ModuleDashboard, ModuleReports, ModuleCaseStatus, ModuleMostWanted},
	RoleChief:         {ModuleDashboard, ModuleReports, ModuleIntake, ModuleCaseStatus, ModuleMostWanted},
	RoleAdmin:         {ModuleDashboard, ModuleAdmin, ModuleCases, ModuleEvidence, ModuleReports, ModuleIntake, ModuleCaseStatus, ModuleMostWanted},
}

// CanAccess reports whether role may use module. Unknown roles have no
// access to anything.
func CanAccess(role Role, module ModuleKey) bool {
	for _, k := range roleModules[role] {
		if k == module {
			return true
		}
	}
	return false
}

// ModuleKeys returns the keys granted to role, nil for unknown roles.
func ModuleKeys(role Role) []ModuleKey {
	keys := roleModules[role]
	if keys == nil {
		return nil
	}
	out := make([]ModuleKey, len(keys))
	copy(out, keys)
	return out
}

// ModulesFor returns the descriptors visible to role in menu order.
func ModulesFor(role Role) []Module {
	var out []Module
	for _, m := range modules {
		if CanAccess(role, m.Key) {
			out = append(out, m)
		}
	}
	return out
}
