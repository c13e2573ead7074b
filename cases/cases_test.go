package cases_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-case-portal/cases"
	"github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/jrsteele09/go-case-portal/server/servertest"
	"github.com/stretchr/testify/require"
)

func ids(list []cases.Case) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

func TestList_Filters(t *testing.T) {
	env := servertest.New(t)
	env.SignIn(t, "detective")
	svc := cases.NewService(env.Client)
	ctx := context.Background()

	all, err := svc.List(ctx, cases.ListParams{Status: cases.StatusAll})
	require.NoError(t, err)
	require.Equal(t, []string{"C-1003", "C-1001", "C-1002", "C-1004"}, ids(all))

	active, err := svc.List(ctx, cases.ListParams{Status: cases.StatusActive})
	require.NoError(t, err)
	require.Equal(t, []string{"C-1002"}, ids(active))

	found, err := svc.List(ctx, cases.ListParams{Query: "  fraud "})
	require.NoError(t, err)
	require.Equal(t, []string{"C-1002"}, ids(found))
	require.Equal(t, cases.ComplaintFraud, found[0].ComplaintType)
	require.NotNil(t, found[0].UpdatedAt)
}

func TestGet(t *testing.T) {
	env := servertest.New(t)
	env.SignIn(t, "captain")
	svc := cases.NewService(env.Client)

	c, err := svc.Get(context.Background(), "C-1001")
	require.NoError(t, err)
	require.Equal(t, "Stolen bicycle near central station", c.Title)
	require.Equal(t, []string{"E-3001"}, c.EvidenceIDs)

	_, err = svc.Get(context.Background(), "C-9999")
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestTrack(t *testing.T) {
	env := servertest.New(t)
	env.SignIn(t, "citizen")
	svc := cases.NewService(env.Client)
	ctx := context.Background()

	tr, err := svc.Track(ctx, "  c-1002 ")
	require.NoError(t, err)
	require.Equal(t, "C-1002", tr.CaseID)
	require.Equal(t, cases.StatusActive, tr.CurrentStatus)
	require.Len(t, tr.Timeline, 3)
	require.Equal(t, "Investigation opened", tr.Timeline[2].Title)

	tr, err = svc.Track(ctx, "C-1003")
	require.NoError(t, err)
	require.Len(t, tr.Timeline, 1)
	require.Equal(t, "Case created", tr.Timeline[0].Title)

	_, err = svc.Track(ctx, "nope")
	require.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = svc.Track(ctx, "   ")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestList_CitizenForbidden(t *testing.T) {
	env := servertest.New(t)
	env.SignIn(t, "citizen")

	_, err := cases.NewService(env.Client).List(context.Background(), cases.ListParams{})
	require.True(t, errors.Is(err, errors.ErrForbidden))
}

func TestStats_Public(t *testing.T) {
	env := servertest.New(t)

	st, err := cases.NewService(env.Client).Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, cases.Stats{SolvedCases: 128, TotalStaff: 42, ActiveCases: 17}, *st)
}

func TestFormat(t *testing.T) {
	require.Equal(t, "Under review", cases.FormatStatus(cases.StatusUnderReview))
	require.Equal(t, "ARCHIVED", cases.FormatStatus("ARCHIVED"))
	require.Equal(t, "Missing person", cases.FormatComplaintType(cases.ComplaintMissingPerson))
	require.Equal(t, "ARSON", cases.FormatComplaintType("ARSON"))
}
