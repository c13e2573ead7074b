package suspects_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-case-portal/server/servertest"
	"github.com/jrsteele09/go-case-portal/suspects"
	"github.com/stretchr/testify/require"
)

func TestMostWanted_OrderedByReward(t *testing.T) {
	env := servertest.New(t)

	list, err := suspects.NewService(env.Client).MostWanted(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 4)
	require.Equal(t, "MW-2001", list[0].ID)
	require.Equal(t, suspects.LevelCritical, list[0].Level)
	for i := 1; i < len(list); i++ {
		require.GreaterOrEqual(t, list[i-1].RewardAmount, list[i].RewardAmount)
	}
}

func TestFormatLevel(t *testing.T) {
	require.Equal(t, "High", suspects.FormatLevel(suspects.LevelHigh))
	require.Equal(t, "EXTREME", suspects.FormatLevel("EXTREME"))
}
