package complaints

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jrsteele09/go-case-portal/apiclient"
	"github.com/jrsteele09/go-case-portal/internal/utils"
)

// Status is the complaint workflow state. The backend may add states, so
// unknown values are kept as-is.
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusSubmitted       Status = "SUBMITTED"
	StatusNeedsFix        Status = "NEEDS_FIX"
	StatusCadetApproved   Status = "CADET_APPROVED"
	StatusOfficerDefect   Status = "OFFICER_DEFECT"
	StatusOfficerApproved Status = "OFFICER_APPROVED"
	StatusInvalidated     Status = "INVALIDATED"
)

const basePath = "/intake/complaints/"

// Complaint is the list view of a complaint. Raw keeps every field the
// backend sent.
type Complaint struct {
	ID          int64
	Title       string
	Status      Status
	Description string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	Raw         map[string]any
}

// Service talks to the intake complaints endpoints.
type Service struct {
	client *apiclient.Client
	now    func() time.Time
}

type ServiceOption func(*Service)

// WithNowTime sets the clock used for missing creation times (primarily
// for testing).
func WithNowTime(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(client *apiclient.Client, options ...ServiceOption) *Service {
	s := &Service{client: client, now: time.Now}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]Complaint, error) {
	return s.list(ctx, basePath)
}

// CadetInbox lists complaints waiting for a cadet's review.
func (s *Service) CadetInbox(ctx context.Context) ([]Complaint, error) {
	return s.list(ctx, basePath+"cadet_inbox/")
}

// OfficerInbox lists complaints forwarded by cadets.
func (s *Service) OfficerInbox(ctx context.Context) ([]Complaint, error) {
	return s.list(ctx, basePath+"officer_inbox/")
}

func (s *Service) Get(ctx context.Context, id int64) (*Complaint, error) {
	return s.call(ctx, http.MethodGet, itemPath(id, ""), nil)
}

func (s *Service) Create(ctx context.Context, body map[string]any) (*Complaint, error) {
	return s.call(ctx, http.MethodPost, basePath, body)
}

func (s *Service) Update(ctx context.Context, id int64, body map[string]any) (*Complaint, error) {
	return s.call(ctx, http.MethodPut, itemPath(id, ""), body)
}

func (s *Service) Patch(ctx context.Context, id int64, body map[string]any) (*Complaint, error) {
	return s.call(ctx, http.MethodPatch, itemPath(id, ""), body)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.client.Delete(ctx, itemPath(id, "")); err != nil {
		return fmt.Errorf("delete complaint %d: %w", id, err)
	}
	return nil
}

// CadetReview records a cadet's decision, e.g. {"action": "approve"} or
// {"action": "reject", "error_message": "..."}.
func (s *Service) CadetReview(ctx context.Context, id int64, body map[string]any) (*Complaint, error) {
	return s.call(ctx, http.MethodPost, itemPath(id, "cadet_review/"), orEmpty(body))
}

func (s *Service) OfficerReview(ctx context.Context, id int64, body map[string]any) (*Complaint, error) {
	return s.call(ctx, http.MethodPost, itemPath(id, "officer_review/"), orEmpty(body))
}

// Resubmit sends a returned complaint back into review.
func (s *Service) Resubmit(ctx context.Context, id int64, body map[string]any) (*Complaint, error) {
	return s.call(ctx, http.MethodPost, itemPath(id, "resubmit/"), orEmpty(body))
}

func (s *Service) list(ctx context.Context, path string) ([]Complaint, error) {
	var raw []map[string]any
	if err := s.client.Get(ctx, path, &raw); err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	out := make([]Complaint, 0, len(raw))
	for _, r := range raw {
		out = append(out, s.fromPayload(r))
	}
	return out, nil
}

func (s *Service) call(ctx context.Context, method, path string, body any) (*Complaint, error) {
	var raw map[string]any
	if err := s.client.Do(ctx, method, path, body, &raw); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c := s.fromPayload(raw)
	return &c, nil
}

// fromPayload fills gaps the backend may leave: a missing title becomes
// "Complaint #<id>", a missing status SUBMITTED, a missing creation time
// the current time.
func (s *Service) fromPayload(raw map[string]any) Complaint {
	c := Complaint{
		ID:          int64ID(raw["id"]),
		Title:       apiclient.FirstString(raw, "title"),
		Status:      Status(apiclient.FirstString(raw, "status")),
		Description: apiclient.FirstString(raw, "description"),
		Raw:         raw,
	}
	if c.Title == "" {
		c.Title = fmt.Sprintf("Complaint #%d", c.ID)
	}
	if c.Status == "" {
		c.Status = StatusSubmitted
	}
	c.CreatedAt = s.now().UTC()
	if t, ok := parseTime(apiclient.FirstString(raw, "created_at")); ok {
		c.CreatedAt = t
	}
	if t, ok := parseTime(apiclient.FirstString(raw, "updated_at")); ok {
		c.UpdatedAt = utils.Ptr(t)
	}
	return c
}

func itemPath(id int64, action string) string {
	return basePath + strconv.FormatInt(id, 10) + "/" + action
}

func orEmpty(body map[string]any) map[string]any {
	if body == nil {
		return map[string]any{}
	}
	return body
}

func int64ID(v any) int64 {
	switch id := v.(type) {
	case float64:
		return int64(id)
	case string:
		n, _ := strconv.ParseInt(id, 10, 64)
		return n
	}
	return 0
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
