package server

import (
	"github.com/jrsteele09/go-case-portal/permissions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// exact stops a trailing-slash pattern from matching its whole subtree.
func exact(path string) string {
	return path + "{$}"
}

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteHandler("POST "+exact(RouteAuthLogin), ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+exact(RouteAuthRegister), ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+exact(RouteAuthRefresh), ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+exact(RouteAuthMe), ChainMiddleware(s.MeHandler(), s.AuthMiddleware()...))

	// INTAKE
	intake := s.AuthMiddleware(s.RequireModule(permissions.ModuleIntake))
	staff := s.AuthMiddleware(s.RequireModule(permissions.ModuleIntake), s.RequireStaff())
	s.RegisterRouteHandler("GET "+exact(RouteComplaints), ChainMiddleware(s.ListComplaintsHandler(), intake...))
	s.RegisterRouteHandler("POST "+exact(RouteComplaints), ChainMiddleware(s.CreateComplaintHandler(), intake...))
	s.RegisterRouteHandler("GET "+exact(RouteComplaintsCadet), ChainMiddleware(s.CadetInboxHandler(), staff...))
	s.RegisterRouteHandler("GET "+exact(RouteComplaintsOfficer), ChainMiddleware(s.OfficerInboxHandler(), staff...))
	s.RegisterRouteHandler("GET "+exact(RouteComplaint), ChainMiddleware(s.GetComplaintHandler(), intake...))
	s.RegisterRouteHandler("PUT "+exact(RouteComplaint), ChainMiddleware(s.UpdateComplaintHandler(true), intake...))
	s.RegisterRouteHandler("PATCH "+exact(RouteComplaint), ChainMiddleware(s.UpdateComplaintHandler(false), intake...))
	s.RegisterRouteHandler("DELETE "+exact(RouteComplaint), ChainMiddleware(s.DeleteComplaintHandler(), intake...))
	s.RegisterRouteHandler("POST "+exact(RouteComplaintCadetRev), ChainMiddleware(s.CadetReviewHandler(), staff...))
	s.RegisterRouteHandler("POST "+exact(RouteComplaintOfficerRev), ChainMiddleware(s.OfficerReviewHandler(), staff...))
	s.RegisterRouteHandler("POST "+exact(RouteComplaintResubmit), ChainMiddleware(s.ResubmitHandler(), intake...))

	// CASES
	casesChain := s.AuthMiddleware(s.RequireModule(permissions.ModuleCases))
	s.RegisterRouteHandler("GET "+exact(RouteCases), ChainMiddleware(s.ListCasesHandler(), casesChain...))
	s.RegisterRouteHandler("GET "+exact(RouteCase), ChainMiddleware(s.GetCaseHandler(), casesChain...))
	s.RegisterRouteHandler("GET "+exact(RouteCaseStatus), ChainMiddleware(s.CaseStatusHandler(), s.AuthMiddleware(s.RequireModule(permissions.ModuleCaseStatus))...))
	s.RegisterRouteHandler("GET "+exact(RouteStats), ChainMiddleware(s.StatsHandler(), s.APIMiddleware()...))

	// EVIDENCE
	evidenceChain := s.AuthMiddleware(s.RequireModule(permissions.ModuleEvidence))
	s.RegisterRouteHandler("GET "+exact(RouteEvidence), ChainMiddleware(s.ListEvidenceHandler(), evidenceChain...))
	s.RegisterRouteHandler("POST "+exact(RouteEvidence), ChainMiddleware(s.CreateEvidenceHandler(), evidenceChain...))
	s.RegisterRouteHandler("PATCH "+exact(RouteEvidenceItem), ChainMiddleware(s.EvidenceStatusHandler(), evidenceChain...))

	// SUSPECTS
	s.RegisterRouteHandler("GET "+exact(RouteMostWanted), ChainMiddleware(s.MostWantedHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}
