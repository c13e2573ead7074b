package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-case-portal/complaints"
	"github.com/jrsteele09/go-case-portal/internal/errors"
)

// Default review messages when the reviewer gives none.
const (
	defaultCadetMessage   = "Information is incomplete or incorrect."
	defaultOfficerMessage = "Requires cadet re-check."
)

func complaintID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// ListComplaintsHandler shows staff every complaint and citizens their own.
func (s *Server) ListComplaintsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFromContext(r.Context())
		staff := isStaff(user)
		writeJSON(w, http.StatusOK, s.data.listComplaints(func(c *complaintRecord) bool {
			return staff || c.CreatedBy == user.ID
		}))
	}
}

// CadetInboxHandler lists complaints waiting for a cadet.
func (s *Server) CadetInboxHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.listComplaints(func(c *complaintRecord) bool {
			return c.Status == complaints.StatusSubmitted || c.Status == complaints.StatusOfficerDefect
		}))
	}
}

// OfficerInboxHandler lists complaints a cadet approved.
func (s *Server) OfficerInboxHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.listComplaints(func(c *complaintRecord) bool {
			return c.Status == complaints.StatusCadetApproved
		}))
	}
}

func (s *Server) CreateComplaintHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decodeBody(r)
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		if stringField(body, "title") == "" {
			writeValidation(w, fieldErrors{"title": {"This field is required."}})
			return
		}
		writeJSON(w, http.StatusCreated, s.data.createComplaint(userFromContext(r.Context()).ID, body))
	}
}

func (s *Server) GetComplaintHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := complaintID(r)
		if !ok {
			writeNotFound(w)
			return
		}
		user := userFromContext(r.Context())
		out, err := s.data.updateComplaint(id, user.ID, isStaff(user), nil)
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// UpdateComplaintHandler serves PUT (replace) and PATCH (merge) of the
// complaint payload. The workflow status cannot be set this way.
func (s *Server) UpdateComplaintHandler(replace bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := complaintID(r)
		if !ok {
			writeNotFound(w)
			return
		}
		body, err := decodeBody(r)
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		delete(body, "status")

		user := userFromContext(r.Context())
		out, err := s.data.updateComplaint(id, user.ID, isStaff(user), func(c *complaintRecord) error {
			if replace {
				c.Payload = copyPayload(body)
				return nil
			}
			for k, v := range body {
				c.Payload[k] = v
			}
			return nil
		})
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) DeleteComplaintHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := complaintID(r)
		if !ok {
			writeNotFound(w)
			return
		}
		user := userFromContext(r.Context())
		if err := s.data.deleteComplaint(id, user.ID, isStaff(user)); err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// CadetReviewHandler takes {action: approve|reject, error_message}. A third
// rejection invalidates the complaint.
func (s *Server) CadetReviewHandler() http.HandlerFunc {
	return s.transition(func(body map[string]any, userID string, c *complaintRecord) error {
		if c.Status != complaints.StatusSubmitted && c.Status != complaints.StatusOfficerDefect {
			return errors.Wrapf(errors.ErrInvalidRequest, "Not in cadet-review state.")
		}
		c.CadetID = userID
		switch stringField(body, "action") {
		case "", "approve":
			c.Status = complaints.StatusCadetApproved
			c.CadetErrorMessage = ""
		case "reject", "return":
			c.Status = complaints.StatusNeedsFix
			c.CadetErrorMessage = stringField(body, "error_message")
			if c.CadetErrorMessage == "" {
				c.CadetErrorMessage = defaultCadetMessage
			}
			c.BadSubmissionCount++
			if c.BadSubmissionCount >= maxBadSubmissions {
				c.Status = complaints.StatusInvalidated
			}
		default:
			return errors.Wrapf(errors.ErrInvalidRequest, "Unknown action.")
		}
		return nil
	})
}

// OfficerReviewHandler takes {action: approve|defect, error_message}.
func (s *Server) OfficerReviewHandler() http.HandlerFunc {
	return s.transition(func(body map[string]any, userID string, c *complaintRecord) error {
		if c.Status != complaints.StatusCadetApproved {
			return errors.Wrapf(errors.ErrInvalidRequest, "Not in officer-review state.")
		}
		c.OfficerID = userID
		switch stringField(body, "action") {
		case "", "approve":
			c.Status = complaints.StatusOfficerApproved
			c.OfficerErrorMessage = ""
		case "defect":
			c.Status = complaints.StatusOfficerDefect
			c.OfficerErrorMessage = stringField(body, "error_message")
			if c.OfficerErrorMessage == "" {
				c.OfficerErrorMessage = defaultOfficerMessage
			}
		default:
			return errors.Wrapf(errors.ErrInvalidRequest, "Unknown action.")
		}
		return nil
	})
}

// ResubmitHandler lets the creator fix a returned complaint. The body is
// merged into the payload.
func (s *Server) ResubmitHandler() http.HandlerFunc {
	return s.transition(func(body map[string]any, userID string, c *complaintRecord) error {
		if c.Status == complaints.StatusInvalidated {
			return errors.Wrapf(errors.ErrInvalidRequest, "This complaint is invalidated and cannot be resubmitted.")
		}
		if c.Status != complaints.StatusNeedsFix {
			return errors.Wrapf(errors.ErrInvalidRequest, "Not in resubmission state.")
		}
		if c.CreatedBy != userID {
			return errors.ErrForbidden
		}
		delete(body, "status")
		for k, v := range body {
			c.Payload[k] = v
		}
		c.Status = complaints.StatusSubmitted
		c.CadetErrorMessage = ""
		return nil
	})
}

func (s *Server) transition(fn func(body map[string]any, userID string, c *complaintRecord) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := complaintID(r)
		if !ok {
			writeNotFound(w)
			return
		}
		body, err := decodeBody(r)
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		user := userFromContext(r.Context())
		out, err := s.data.updateComplaint(id, user.ID, isStaff(user), func(c *complaintRecord) error {
			return fn(body, user.ID, c)
		})
		if errors.Is(err, errors.ErrForbidden) {
			writeForbidden(w)
			return
		}
		if err != nil {
			writeStoreError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
