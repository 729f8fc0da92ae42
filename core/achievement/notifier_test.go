package achievement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanmukhasaireddy13/study-tracker/core/achievement"
	"github.com/shanmukhasaireddy13/study-tracker/storage/database/inmem"
)

type masteryCounter map[string]int

func (m masteryCounter) MasteredBySubject(context.Context, string) (map[string]int, error) {
	return m, nil
}

func TestNotifier_Check(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	n := achievement.NewNotifier(inmemdb.NewAchievementRepository(inmemdb.Open()), masteryCounter{"maths": 10})

	added, err := n.Check(ctx, "s1", achievement.Stats{CurrentStreak: 7}, now)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, achievement.TypeStreak7, added[0].Type)
	assert.Equal(t, achievement.SubjectMasterType("maths"), added[1].Type)
	assert.Equal(t, "s1", added[0].StudentID)

	// the same stats award nothing twice
	added, err = n.Check(ctx, "s1", achievement.Stats{CurrentStreak: 8}, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, added)

	all, err := n.List(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	others, err := n.List(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, others)
}
