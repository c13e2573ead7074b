package cases

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-case-portal/apiclient"
	"github.com/jrsteele09/go-case-portal/internal/errors"
)

type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusSubmitted   Status = "SUBMITTED"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusActive      Status = "ACTIVE"
	StatusClosed      Status = "CLOSED"
	StatusRejected    Status = "REJECTED"

	// StatusAll disables status filtering in List.
	StatusAll Status = "ALL"
)

type ComplaintType string

const (
	ComplaintTheft         ComplaintType = "THEFT"
	ComplaintFraud         ComplaintType = "FRAUD"
	ComplaintAssault       ComplaintType = "ASSAULT"
	ComplaintMurder        ComplaintType = "MURDER"
	ComplaintMissingPerson ComplaintType = "MISSING_PERSON"
	ComplaintCyberCrime    ComplaintType = "CYBER_CRIME"
	ComplaintOther         ComplaintType = "OTHER"
)

type Case struct {
	ID                  string        `json:"id"`
	Title               string        `json:"title"`
	Description         string        `json:"description,omitempty"`
	Status              Status        `json:"status"`
	ComplaintType       ComplaintType `json:"complaint_type"`
	CrimeLevel          string        `json:"crime_level,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           *time.Time    `json:"updated_at,omitempty"`
	ReporterName        string        `json:"reporter_name,omitempty"`
	ReporterContact     string        `json:"reporter_contact,omitempty"`
	AssignedDetectiveID string        `json:"assigned_detective_id,omitempty"`
	EvidenceIDs         []string      `json:"evidence_ids,omitempty"`
	SuspectIDs          []string      `json:"suspect_ids,omitempty"`
}

// Stats are the public headline numbers shown on the home page.
type Stats struct {
	SolvedCases int `json:"solved_cases"`
	TotalStaff  int `json:"total_staff"`
	ActiveCases int `json:"active_cases"`
}

type TimelineItem struct {
	At          time.Time `json:"at"`
	Status      Status    `json:"status"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
}

// Tracking is the status history a complainant sees for their case.
type Tracking struct {
	CaseID        string         `json:"case_id"`
	Title         string         `json:"title"`
	ComplaintType ComplaintType  `json:"complaint_type"`
	CurrentStatus Status         `json:"current_status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
	Timeline      []TimelineItem `json:"timeline"`
}

// ListParams filters List. Query matches id, title or complaint type.
type ListParams struct {
	Query  string
	Status Status
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Case, error) {
	query := url.Values{"q": {strings.TrimSpace(params.Query)}}
	if params.Status != "" && params.Status != StatusAll {
		query.Set("status", string(params.Status))
	}
	var out []Case
	if err := s.client.Get(ctx, apiclient.PathWithQuery("/cases/", query), &out); err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Case, error) {
	var c Case
	if err := s.client.Get(ctx, "/cases/"+url.PathEscape(id)+"/", &c); err != nil {
		return nil, fmt.Errorf("get case %s: %w", id, err)
	}
	return &c, nil
}

// Track looks a case up by id or tracking code, ignoring case and
// surrounding spaces. An unknown code yields errors.ErrNotFound.
func (s *Service) Track(ctx context.Context, idOrCode string) (*Tracking, error) {
	code := strings.ToUpper(strings.TrimSpace(idOrCode))
	if code == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "empty tracking code")
	}
	var t Tracking
	if err := s.client.Get(ctx, "/cases/"+url.PathEscape(code)+"/status/", &t); err != nil {
		return nil, fmt.Errorf("track case %s: %w", code, err)
	}
	return &t, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	if err := s.client.Get(ctx, "/stats/", &st); err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &st, nil
}

var statusLabels = map[Status]string{
	StatusDraft:       "Draft",
	StatusSubmitted:   "Submitted",
	StatusUnderReview: "Under review",
	StatusActive:      "Active",
	StatusClosed:      "Closed",
	StatusRejected:    "Rejected",
}

// FormatStatus returns a display label, or the raw value when unknown.
func FormatStatus(s Status) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

var complaintTypeLabels = map[ComplaintType]string{
	ComplaintTheft:         "Theft",
	ComplaintFraud:         "Fraud",
	ComplaintAssault:       "Assault",
	ComplaintMurder:        "Murder",
	ComplaintMissingPerson: "Missing person",
	ComplaintCyberCrime:    "Cyber crime",
	ComplaintOther:         "Other",
}

func FormatComplaintType(t ComplaintType) string {
	if label, ok := complaintTypeLabels[t]; ok {
		return label
	}
	return string(t)
}
