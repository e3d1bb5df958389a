package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLevel(t *testing.T) {
	tests := []struct {
		level int
		tier  Tier
		title string
	}{
		{0, TierA, "10x Engineer"},
		{35, TierA, "10x Engineer"},
		{36, TierB, "Senior Architect"},
		{55, TierB, "Senior Architect"},
		// 56 is C under the <=55 cutoff, even though one written example
		// of the rating table lists 56 as B.
		{56, TierC, "Spaghetti Chef"},
		{85, TierC, "Spaghetti Chef"},
		{86, TierD, "Chaos Agent"},
		{100, TierD, "Chaos Agent"},
	}
	for _, tt := range tests {
		r := RateLevel(tt.level)
		assert.Equal(t, tt.tier, r.Tier, "level %d", tt.level)
		assert.Equal(t, tt.title, r.Title, "level %d", tt.level)
		assert.NotEmpty(t, r.Message)
	}
}

func TestResolve(t *testing.T) {
	script := testScript(t)
	st := newState()
	st.ResourceLevel = 40

	report := Resolve(script, st)
	assert.False(t, report.Complete())
	assert.Nil(t, report.Rating)
	assert.Equal(t, []MissingBattle{
		{ID: "quiz", Title: "Quiz", Index: 2},
		{ID: "debug", Title: "Debug", Index: 3},
		{ID: "term", Title: "Terminal", Index: 4},
	}, report.Missing)

	st.Completed.Add("debug")
	st.Completed.Add("nonsense")
	report = Resolve(script, st)
	require.Len(t, report.Missing, 2)
	assert.Equal(t, "quiz", report.Missing[0].ID)
	assert.Equal(t, "term", report.Missing[1].ID)

	st.Completed.Add("quiz")
	st.Completed.Add("term")
	report = Resolve(script, st)
	assert.True(t, report.Complete())
	require.NotNil(t, report.Rating)
	assert.Equal(t, TierB, report.Rating.Tier)
	assert.Equal(t, 40, report.Level)
}
