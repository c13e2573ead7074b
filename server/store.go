package server

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-case-portal/cases"
	"github.com/jrsteele09/go-case-portal/complaints"
	"github.com/jrsteele09/go-case-portal/evidence"
	"github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/jrsteele09/go-case-portal/suspects"
)

// maxBadSubmissions is how many times a cadet may return a complaint before
// it is invalidated.
const maxBadSubmissions = 3

type complaintRecord struct {
	ID                  int64
	CreatedBy           string
	Payload             map[string]any
	Status              complaints.Status
	BadSubmissionCount  int
	CadetErrorMessage   string
	OfficerErrorMessage string
	CadetID             string
	OfficerID           string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (c *complaintRecord) toJSON() map[string]any {
	out := map[string]any{
		"id":                    c.ID,
		"created_by":            c.CreatedBy,
		"payload":               c.Payload,
		"status":                c.Status,
		"bad_submission_count":  c.BadSubmissionCount,
		"cadet_error_message":   c.CadetErrorMessage,
		"officer_error_message": c.OfficerErrorMessage,
		"created_at":            c.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":            c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, k := range []string{"title", "description"} {
		if v, ok := c.Payload[k].(string); ok {
			out[k] = v
		}
	}
	return out
}

// store holds the backend's resources. Every method copies on the way in
// and out so handlers never share mutable state.
type store struct {
	lock sync.RWMutex
	now  func() time.Time

	complaints    map[int64]*complaintRecord
	nextComplaint int64

	cases     map[string]cases.Case
	timelines map[string][]cases.TimelineItem
	stats     cases.Stats

	evidence     map[string]evidence.Evidence
	nextEvidence int

	mostWanted []suspects.MostWanted
}

func newStore(now func() time.Time) *store {
	return &store{
		now:        now,
		complaints: make(map[int64]*complaintRecord),
		cases:      make(map[string]cases.Case),
		timelines:  make(map[string][]cases.TimelineItem),
		evidence:   make(map[string]evidence.Evidence),
	}
}

func copyPayload(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *store) createComplaint(userID string, payload map[string]any) map[string]any {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.nextComplaint++
	now := s.now()
	c := &complaintRecord{
		ID:        s.nextComplaint,
		CreatedBy: userID,
		Payload:   copyPayload(payload),
		Status:    complaints.StatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.complaints[c.ID] = c
	return c.toJSON()
}

// listComplaints returns the complaints matching keep, oldest first.
func (s *store) listComplaints(keep func(*complaintRecord) bool) []map[string]any {
	s.lock.RLock()
	defer s.lock.RUnlock()

	ids := make([]int64, 0, len(s.complaints))
	for id, c := range s.complaints {
		if keep(c) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.complaints[id].toJSON())
	}
	return out
}

// updateComplaint runs fn on the complaint under the write lock. Only the
// creator or staff may see a complaint; anyone else gets ErrNotFound.
func (s *store) updateComplaint(id int64, userID string, staff bool, fn func(*complaintRecord) error) (map[string]any, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	c, ok := s.complaints[id]
	if !ok || (!staff && c.CreatedBy != userID) {
		return nil, errors.ErrNotFound
	}
	if fn != nil {
		if err := fn(c); err != nil {
			return nil, err
		}
		c.UpdatedAt = s.now()
	}
	return c.toJSON(), nil
}

func (s *store) deleteComplaint(id int64, userID string, staff bool) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	c, ok := s.complaints[id]
	if !ok || (!staff && c.CreatedBy != userID) {
		return errors.ErrNotFound
	}
	delete(s.complaints, id)
	return nil
}

func (s *store) putCase(c cases.Case, timeline []cases.TimelineItem) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.cases[c.ID] = c
	if len(timeline) > 0 {
		s.timelines[c.ID] = timeline
	}
}

// listCases filters by query (id, title or complaint type, case-insensitive)
// and status, newest first.
func (s *store) listCases(query string, status cases.Status) []cases.Case {
	s.lock.RLock()
	defer s.lock.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]cases.Case, 0, len(s.cases))
	for _, c := range s.cases {
		if status != "" && status != cases.StatusAll && c.Status != status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(c.ID), q) &&
			!strings.Contains(strings.ToLower(c.Title), q) &&
			!strings.Contains(strings.ToLower(string(c.ComplaintType)), q) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *store) getCase(id string) (cases.Case, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	c, ok := s.cases[strings.ToUpper(id)]
	if !ok {
		return cases.Case{}, errors.ErrNotFound
	}
	return c, nil
}

// trackCase builds the status view. Cases without a recorded history get
// a single entry for their creation.
func (s *store) trackCase(id string) (*cases.Tracking, error) {
	c, err := s.getCase(id)
	if err != nil {
		return nil, err
	}

	s.lock.RLock()
	timeline := append([]cases.TimelineItem(nil), s.timelines[c.ID]...)
	s.lock.RUnlock()

	if len(timeline) == 0 {
		timeline = []cases.TimelineItem{{At: c.CreatedAt, Status: c.Status, Title: "Case created"}}
	}
	return &cases.Tracking{
		CaseID:        c.ID,
		Title:         c.Title,
		ComplaintType: c.ComplaintType,
		CurrentStatus: c.Status,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		Timeline:      timeline,
	}, nil
}

func (s *store) getStats() cases.Stats {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.stats
}

func (s *store) setStats(st cases.Stats) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.stats = st
}

func (s *store) putEvidence(e evidence.Evidence) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.evidence[e.ID] = e
}

func (s *store) listEvidence(caseID string) []evidence.Evidence {
	s.lock.RLock()
	defer s.lock.RUnlock()

	out := make([]evidence.Evidence, 0, len(s.evidence))
	for _, e := range s.evidence {
		if caseID == "" || strings.EqualFold(e.CaseID, caseID) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// createEvidence assigns an E-<n> id, PENDING status and creation time.
func (s *store) createEvidence(e evidence.Evidence) (evidence.Evidence, error) {
	if _, err := s.getCase(e.CaseID); err != nil {
		return evidence.Evidence{}, errors.Wrapf(errors.ErrInvalidRequest, "unknown case %q", e.CaseID)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.nextEvidence++
	e.ID = "E-" + strconv.Itoa(4000+s.nextEvidence)
	e.CaseID = strings.ToUpper(e.CaseID)
	e.Status = evidence.StatusPending
	e.CreatedAt = s.now().UTC()
	s.evidence[e.ID] = e
	return e, nil
}

func (s *store) setEvidenceStatus(id string, status evidence.Status) (evidence.Evidence, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	e, ok := s.evidence[id]
	if !ok {
		return evidence.Evidence{}, errors.ErrNotFound
	}
	e.Status = status
	s.evidence[id] = e
	return e, nil
}

func (s *store) addMostWanted(m suspects.MostWanted) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if m.ID == "" {
		m.ID = "MW-" + uuid.NewString()[:8]
	}
	s.mostWanted = append(s.mostWanted, m)
}

// listMostWanted orders by reward, highest first.
func (s *store) listMostWanted() []suspects.MostWanted {
	s.lock.RLock()
	defer s.lock.RUnlock()
	out := append([]suspects.MostWanted(nil), s.mostWanted...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].RewardAmount > out[j].RewardAmount })
	return out
}
