package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreHotLead(t *testing.T) {
	sub := &Submission{
		MonthlyRevenue:     120000,
		BusinessStage:      StageGrowth,
		Industry:           "Fashion & Apparel",
		Website:            "https://shop.example",
		Phone:              "+12345678901",
		MonthlyAdSpend:     10000,
		ManualHoursPerWeek: 25,
		Challenges:         []string{"Manual processes", "High cart abandonment"},
	}

	score, tier, breakdown := Score(sub)

	assert.GreaterOrEqual(t, score, hotThreshold)
	assert.Equal(t, TierHot, tier)
	assert.Equal(t, demographicCap, breakdown.Demographic, "55 revenue + 20 stage capped at 60")
	assert.Equal(t, behavioralCap, breakdown.Behavioral, "3x10 + 12 + 10 capped at 52")
	assert.Equal(t, 28, breakdown.Fit, "15 industry + 13 alignment")
}

func TestScoreColdLead(t *testing.T) {
	sub := &Submission{
		MonthlyRevenue:     5000,
		BusinessStage:      StageStartup,
		Industry:           "Other",
		ManualHoursPerWeek: 5,
	}

	score, tier, breakdown := Score(sub)

	assert.Less(t, score, warmThreshold)
	assert.Equal(t, TierCold, tier)
	assert.Equal(t, 20, breakdown.Demographic)
	assert.Equal(t, 0, breakdown.Behavioral)
	assert.Equal(t, 10, breakdown.Fit)
}

func TestScoreWarmLead(t *testing.T) {
	sub := &Submission{
		MonthlyRevenue:     25000,
		BusinessStage:      StageEstablished,
		Industry:           "Electronics",
		Website:            "https://gadgets.example",
		ManualHoursPerWeek: 10,
	}

	score, tier, _ := Score(sub)

	assert.GreaterOrEqual(t, score, warmThreshold)
	assert.Less(t, score, hotThreshold)
	assert.Equal(t, TierWarm, tier)
}

func TestAssignTierBoundaries(t *testing.T) {
	assert.Equal(t, TierHot, AssignTier(90))
	assert.Equal(t, TierWarm, AssignTier(89))
	assert.Equal(t, TierWarm, AssignTier(60))
	assert.Equal(t, TierCold, AssignTier(59))
	assert.Equal(t, TierCold, AssignTier(0))
}

func TestDetailedChallengePoints(t *testing.T) {
	assert.Equal(t, 12, detailedChallengePoints([]string{"Manual processes", "Low conversion rates"}))
	assert.Equal(t, 0, detailedChallengePoints([]string{"Manual processes"}))
	assert.Equal(t, 0, detailedChallengePoints(nil))

	long := "Other: we spend entire days reconciling spreadsheets across three storefronts"
	assert.Equal(t, 12, detailedChallengePoints([]string{long}))
	assert.Equal(t, 0, detailedChallengePoints([]string{"Other"}), "short Other text does not count")
}

func TestStagePointsCaseInsensitive(t *testing.T) {
	assert.Equal(t, 20, stagePoints("growth"))
	assert.Equal(t, 40, stagePoints("MATURE"))
	assert.Equal(t, 0, stagePoints("unknown"))
}

func TestLifecycleStageMapping(t *testing.T) {
	assert.Equal(t, "salesqualifiedlead", LifecycleStage(TierHot))
	assert.Equal(t, "marketingqualifiedlead", LifecycleStage(TierWarm))
	assert.Equal(t, "lead", LifecycleStage(TierCold))
}

func TestFollowUpHours(t *testing.T) {
	assert.Equal(t, 1, FollowUpHours(TierHot))
	assert.Equal(t, 24, FollowUpHours(TierWarm))
	assert.Equal(t, 72, FollowUpHours(TierCold))
}
