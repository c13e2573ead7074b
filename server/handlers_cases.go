package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-case-portal/cases"
	"github.com/jrsteele09/go-case-portal/evidence"
)

// ListCasesHandler filters with ?q= and ?status= (ALL or empty for any).
func (s *Server) ListCasesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		status := cases.Status(strings.ToUpper(q.Get("status")))
		writeJSON(w, http.StatusOK, s.data.listCases(q.Get("q"), status))
	}
}

func (s *Server) GetCaseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := s.data.getCase(r.PathValue("id"))
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) CaseStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := s.data.trackCase(strings.TrimSpace(r.PathValue("id")))
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.getStats())
	}
}

// ListEvidenceHandler filters with ?case=.
func (s *Server) ListEvidenceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.listEvidence(r.URL.Query().Get("case")))
	}
}

func (s *Server) CreateEvidenceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e evidence.Evidence
		if err := decodeInto(r, &e); err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		if err := e.Validate(); err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		created, err := s.data.createEvidence(e)
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// EvidenceStatusHandler accepts {status: PENDING|VERIFIED|REJECTED}.
func (s *Server) EvidenceStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decodeBody(r)
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		status := evidence.Status(strings.ToUpper(stringField(body, "status")))
		switch status {
		case evidence.StatusPending, evidence.StatusVerified, evidence.StatusRejected:
		default:
			writeValidation(w, fieldErrors{"status": {"Not a valid choice."}})
			return
		}
		e, err := s.data.setEvidenceStatus(r.PathValue("id"), status)
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func (s *Server) MostWantedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.listMostWanted())
	}
}
