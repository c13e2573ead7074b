package server

// Route path constants. Everything lives under the /api root the client is
// configured with.
const (
	RouteAPI = "/api"

	// Auth
	RouteAuthLogin    = RouteAPI + "/auth/login/"
	RouteAuthRegister = RouteAPI + "/auth/register/"
	RouteAuthMe       = RouteAPI + "/auth/me/"
	RouteAuthRefresh  = RouteAPI + "/auth/token/refresh/"

	// Intake complaints
	RouteComplaints          = RouteAPI + "/intake/complaints/"
	RouteComplaint           = RouteComplaints + "{id}/"
	RouteComplaintsCadet     = RouteComplaints + "cadet_inbox/"
	RouteComplaintsOfficer   = RouteComplaints + "officer_inbox/"
	RouteComplaintCadetRev   = RouteComplaint + "cadet_review/"
	RouteComplaintOfficerRev = RouteComplaint + "officer_review/"
	RouteComplaintResubmit   = RouteComplaint + "resubmit/"

	// Cases
	RouteCases      = RouteAPI + "/cases/"
	RouteCase       = RouteCases + "{id}/"
	RouteCaseStatus = RouteCase + "status/"
	RouteStats      = RouteAPI + "/stats/"

	// Evidence
	RouteEvidence     = RouteAPI + "/evidence/"
	RouteEvidenceItem = RouteEvidence + "{id}/"

	// Suspects
	RouteMostWanted = RouteAPI + "/suspects/most-wanted/"

	RouteMetrics = "/metrics"
)
