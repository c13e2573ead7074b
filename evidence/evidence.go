package evidence

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-case-portal/apiclient"
	"github.com/jrsteele09/go-case-portal/internal/errors"
)

type Kind string

const (
	KindIdentity Kind = "IDENTITY"
	KindVehicle  Kind = "VEHICLE"
	KindMedical  Kind = "MEDICAL"
	KindMedia    Kind = "MEDIA"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusVerified Status = "VERIFIED"
	StatusRejected Status = "REJECTED"
)

type MediaType string

const (
	MediaImage MediaType = "IMAGE"
	MediaVideo MediaType = "VIDEO"
	MediaAudio MediaType = "AUDIO"
)

// Evidence is one registered item. Only the detail fields matching Kind
// are set.
type Evidence struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"case"`
	Kind        Kind      `json:"evidence_type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`

	// IDENTITY
	Fields map[string]string `json:"fields,omitempty"`
	// VEHICLE
	PlateNumber string `json:"plate_number,omitempty"`
	VIN         string `json:"vin,omitempty"`
	Model       string `json:"model,omitempty"`
	Color       string `json:"color,omitempty"`
	// MEDICAL
	SampleType string `json:"sample_type,omitempty"`
	LabNotes   string `json:"lab_notes,omitempty"`
	// MEDIA
	MediaType MediaType `json:"media_type,omitempty"`
	URL       string    `json:"url,omitempty"`
}

// Validate checks the fields a new item needs before it is sent.
func (e *Evidence) Validate() error {
	if strings.TrimSpace(e.CaseID) == "" {
		return errors.Wrapf(errors.ErrInvalidRequest, "evidence needs a case")
	}
	if strings.TrimSpace(e.Title) == "" {
		return errors.Wrapf(errors.ErrInvalidRequest, "evidence needs a title")
	}
	switch e.Kind {
	case KindIdentity, KindVehicle, KindMedical:
	case KindMedia:
		switch e.MediaType {
		case MediaImage, MediaVideo, MediaAudio:
		default:
			return errors.Wrapf(errors.ErrInvalidRequest, "unknown media type %q", e.MediaType)
		}
		if e.URL == "" {
			return errors.Wrapf(errors.ErrInvalidRequest, "media evidence needs a url")
		}
	default:
		return errors.Wrapf(errors.ErrInvalidRequest, "unknown evidence type %q", e.Kind)
	}
	return nil
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// List returns all evidence, or only that of caseID when it is set.
func (s *Service) List(ctx context.Context, caseID string) ([]Evidence, error) {
	path := apiclient.PathWithQuery("/evidence/", url.Values{"case": {caseID}})
	var out []Evidence
	if err := s.client.Get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	return out, nil
}

// Create registers e. The backend assigns the id, status and creation time.
func (s *Service) Create(ctx context.Context, e Evidence) (*Evidence, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	e.ID, e.Status, e.CreatedAt = "", "", time.Time{}

	var out Evidence
	if err := s.client.Post(ctx, "/evidence/", newEvidenceBody(e), &out); err != nil {
		return nil, fmt.Errorf("create evidence: %w", err)
	}
	return &out, nil
}

func (s *Service) SetStatus(ctx context.Context, id string, status Status) (*Evidence, error) {
	switch status {
	case StatusPending, StatusVerified, StatusRejected:
	default:
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "unknown evidence status %q", status)
	}
	var out Evidence
	body := map[string]string{"status": string(status)}
	if err := s.client.Patch(ctx, "/evidence/"+url.PathEscape(id)+"/", body, &out); err != nil {
		return nil, fmt.Errorf("set evidence %s status: %w", id, err)
	}
	return &out, nil
}

// newEvidenceBody drops the zero-valued server-assigned fields.
func newEvidenceBody(e Evidence) map[string]any {
	body := map[string]any{
		"case":          e.CaseID,
		"evidence_type": e.Kind,
		"title":         e.Title,
	}
	optional := map[string]string{
		"description":  e.Description,
		"plate_number": e.PlateNumber,
		"vin":          e.VIN,
		"model":        e.Model,
		"color":        e.Color,
		"sample_type":  e.SampleType,
		"lab_notes":    e.LabNotes,
		"media_type":   string(e.MediaType),
		"url":          e.URL,
	}
	for k, v := range optional {
		if v != "" {
			body[k] = v
		}
	}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	return body
}

var kindLabels = map[Kind]string{
	KindIdentity: "Identity",
	KindVehicle:  "Vehicle",
	KindMedical:  "Medical",
	KindMedia:    "Media",
}

func FormatKind(k Kind) string {
	if label, ok := kindLabels[k]; ok {
		return label
	}
	return string(k)
}

var statusLabels = map[Status]string{
	StatusPending:  "Pending",
	StatusVerified: "Verified",
	StatusRejected: "Rejected",
}

func FormatStatus(s Status) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}
