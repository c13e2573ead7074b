package suspects

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-case-portal/apiclient"
)

type Level string

const (
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// MostWanted is an entry on the public most-wanted list.
type MostWanted struct {
	ID               string    `json:"id"`
	FullName         string    `json:"full_name"`
	Reason           string    `json:"reason"`
	Level            Level     `json:"level"`
	RewardAmount     int64     `json:"reward_amount"`
	LastSeenLocation string    `json:"last_seen_location,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) MostWanted(ctx context.Context) ([]MostWanted, error) {
	var out []MostWanted
	if err := s.client.Get(ctx, "/suspects/most-wanted/", &out); err != nil {
		return nil, fmt.Errorf("list most wanted: %w", err)
	}
	return out, nil
}

var levelLabels = map[Level]string{
	LevelLow:      "Low",
	LevelMedium:   "Medium",
	LevelHigh:     "High",
	LevelCritical: "Critical",
}

func FormatLevel(l Level) string {
	if label, ok := levelLabels[l]; ok {
		return label
	}
	return string(l)
}
