package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-case-portal/cases"
	"github.com/jrsteele09/go-case-portal/evidence"
	"github.com/jrsteele09/go-case-portal/internal/utils"
	"github.com/jrsteele09/go-case-portal/permissions"
	"github.com/jrsteele09/go-case-portal/suspects"
	"github.com/jrsteele09/go-case-portal/users"
)

// bootstrap seeds one demo account per role plus the sample cases,
// evidence and most-wanted entries. Every account shares the configured
// seed password and signs in with its lower-case role as username.
func (s *Server) bootstrap() error {
	hash, err := users.HashPassword(s.seedPassword)
	if err != nil {
		return fmt.Errorf("[server bootstrap] failed to hash seed password: %w", err)
	}

	now := s.nowFunc().UTC()
	for i, role := range permissions.Roles {
		name := strings.ToLower(string(role))
		u := &users.User{
			Username:     name,
			FirstName:    strings.ReplaceAll(name, "_", " "),
			LastName:     "Demo",
			Email:        name + "@pcs.local",
			Phone:        fmt.Sprintf("0900000%04d", i+1),
			NationalID:   fmt.Sprintf("100000%04d", i+1),
			Role:         role,
			PasswordHash: hash,
			DateJoined:   now,
		}
		if existing, err := s.users.GetByIdentifier(u.Username); err == nil && existing != nil {
			continue
		}
		if err := s.users.Upsert(u); err != nil {
			return fmt.Errorf("[server bootstrap] failed to create %s: %w", u.Username, err)
		}
	}
	s.logger.Debug().Int("accounts", len(permissions.Roles)).Msg("seeded demo accounts")

	s.seedCases(now)
	s.seedEvidence(now)
	s.seedMostWanted(now)
	return nil
}

func (s *Server) seedCases(now time.Time) {
	day := 24 * time.Hour
	s.data.putCase(cases.Case{
		ID:            "C-1001",
		Title:         "Stolen bicycle near central station",
		Description:   "Red road bike taken from the rack at platform 3.",
		Status:        cases.StatusUnderReview,
		ComplaintType: cases.ComplaintTheft,
		CrimeLevel:    "LEVEL_3",
		CreatedAt:     now.Add(-6 * day),
		UpdatedAt:     utils.Ptr(now.Add(-2 * day)),
		EvidenceIDs:   []string{"E-3001"},
	}, []cases.TimelineItem{
		{At: now.Add(-6 * day), Status: cases.StatusSubmitted, Title: "Complaint submitted"},
		{At: now.Add(-4 * day), Status: cases.StatusUnderReview, Title: "Assigned for review", Description: "A cadet is checking the report."},
	})
	s.data.putCase(cases.Case{
		ID:            "C-1002",
		Title:         "Online marketplace fraud",
		Description:   "Payment sent for a phone that never arrived.",
		Status:        cases.StatusActive,
		ComplaintType: cases.ComplaintFraud,
		CrimeLevel:    "LEVEL_2",
		CreatedAt:     now.Add(-12 * day),
		UpdatedAt:     utils.Ptr(now.Add(-day)),
		EvidenceIDs:   []string{"E-3002"},
	}, []cases.TimelineItem{
		{At: now.Add(-12 * day), Status: cases.StatusSubmitted, Title: "Complaint submitted"},
		{At: now.Add(-10 * day), Status: cases.StatusUnderReview, Title: "Complaint reviewed"},
		{At: now.Add(-day), Status: cases.StatusActive, Title: "Investigation opened", Description: "A detective has been assigned."},
	})
	s.data.putCase(cases.Case{
		ID:            "C-1003",
		Title:         "Assault outside nightclub",
		Status:        cases.StatusSubmitted,
		ComplaintType: cases.ComplaintAssault,
		CrimeLevel:    "LEVEL_2",
		CreatedAt:     now.Add(-2 * day),
	}, nil)
	s.data.putCase(cases.Case{
		ID:            "C-1004",
		Title:         "Missing teenager",
		Status:        cases.StatusClosed,
		ComplaintType: cases.ComplaintMissingPerson,
		CrimeLevel:    "CRITICAL",
		CreatedAt:     now.Add(-30 * day),
		UpdatedAt:     utils.Ptr(now.Add(-20 * day)),
	}, nil)

	s.data.setStats(cases.Stats{SolvedCases: 128, TotalStaff: 42, ActiveCases: 17})
}

func (s *Server) seedEvidence(now time.Time) {
	s.data.putEvidence(evidence.Evidence{
		ID:        "E-3001",
		CaseID:    "C-1001",
		Kind:      evidence.KindMedia,
		Title:     "Platform CCTV still",
		Status:    evidence.StatusPending,
		CreatedAt: now.Add(-5 * 24 * time.Hour),
		MediaType: evidence.MediaImage,
		URL:       "https://example.invalid/cctv/platform-3.jpg",
	})
	s.data.putEvidence(evidence.Evidence{
		ID:        "E-3002",
		CaseID:    "C-1002",
		Kind:      evidence.KindIdentity,
		Title:     "Seller identity details",
		Status:    evidence.StatusVerified,
		CreatedAt: now.Add(-9 * 24 * time.Hour),
		Fields:    map[string]string{"name": "J. Smith", "account": "seller-4471"},
	})
}

func (s *Server) seedMostWanted(now time.Time) {
	for _, m := range []suspects.MostWanted{
		{ID: "MW-2001", FullName: "Daniel Kraus", Reason: "Armed robbery", Level: suspects.LevelCritical, RewardAmount: 25000, LastSeenLocation: "Berlin"},
		{ID: "MW-2002", FullName: "Mila Novak", Reason: "Large scale fraud", Level: suspects.LevelHigh, RewardAmount: 15000, LastSeenLocation: "Hamburg"},
		{ID: "MW-2003", FullName: "Omar Haddad", Reason: "Aggravated assault", Level: suspects.LevelMedium, RewardAmount: 8000, LastSeenLocation: "Cologne"},
		{ID: "MW-2004", FullName: "Lea Schuster", Reason: "Vehicle theft ring", Level: suspects.LevelLow, RewardAmount: 3000, LastSeenLocation: "Munich"},
	} {
		m.CreatedAt = now
		s.data.addMostWanted(m)
	}
}
