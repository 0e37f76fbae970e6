package leads

import "strings"

// Lead scoring on a 0-150 scale:
//   demographic max 60, behavioral max 52, fit max 38.
// Tiers: >=90 Hot, >=60 Warm, otherwise Cold.

const (
	demographicCap = 60
	behavioralCap  = 52
	fitCap         = 38

	hotThreshold  = 90
	warmThreshold = 60
)

// ScoreBreakdown carries the per-component scores plus the individual
// contributions, mirrored into the internal notification email.
type ScoreBreakdown struct {
	Demographic int            `json:"demographic"`
	Behavioral  int            `json:"behavioral"`
	Fit         int            `json:"fit"`
	Details     map[string]int `json:"details"`
}

// Score computes the lead score, tier and breakdown for a submission.
func Score(s *Submission) (int, Tier, ScoreBreakdown) {
	breakdown := ScoreBreakdown{Details: make(map[string]int)}

	// Demographic: revenue tier + business stage, capped.
	revenuePoints := revenueTierPoints(s.MonthlyRevenue)
	if revenuePoints > demographicCap {
		revenuePoints = demographicCap
	}
	breakdown.Details["revenue_tier"] = revenuePoints

	stagePoints := stagePoints(s.BusinessStage)
	breakdown.Details["business_stage"] = stagePoints

	demographic := revenuePoints + stagePoints
	if demographic > demographicCap {
		demographic = demographicCap
	}
	breakdown.Demographic = demographic

	// Behavioral: optional fields filled, detailed challenges, heavy
	// manual workload.
	behavioral := 0
	if s.Website != "" {
		behavioral += 10
		breakdown.Details["website_filled"] = 10
	}
	if s.Phone != "" {
		behavioral += 10
		breakdown.Details["phone_filled"] = 10
	}
	if s.MonthlyAdSpend > 0 {
		behavioral += 10
		breakdown.Details["monthly_ad_spend_filled"] = 10
	}

	challengePoints := detailedChallengePoints(s.Challenges)
	behavioral += challengePoints
	breakdown.Details["detailed_challenges"] = challengePoints

	if s.ManualHoursPerWeek >= 20 {
		behavioral += 10
		breakdown.Details["high_manual_hours"] = 10
	}
	if behavioral > behavioralCap {
		behavioral = behavioralCap
	}
	breakdown.Behavioral = behavioral

	// Fit: industry alignment + core challenge alignment.
	industryPoints := 10
	industry := strings.ToLower(s.Industry)
	for _, fit := range []string{"fashion", "beauty", "sports", "food-beverage", "food & beverage"} {
		if strings.Contains(industry, fit) {
			industryPoints = 15
			break
		}
	}
	breakdown.Details["industry_fit"] = industryPoints

	alignment := 0
	for _, challenge := range s.Challenges {
		c := strings.ToLower(challenge)
		if strings.Contains(c, "manual processes") ||
			strings.Contains(c, "low conversion") ||
			strings.Contains(c, "high cart abandonment") {
			alignment = 13
			break
		}
	}
	breakdown.Details["challenge_alignment"] = alignment

	fit := industryPoints + alignment
	if fit > fitCap {
		fit = fitCap
	}
	breakdown.Fit = fit

	total := demographic + behavioral + fit
	return total, AssignTier(total), breakdown
}

// AssignTier maps a score to its tier.
func AssignTier(score int) Tier {
	switch {
	case score >= hotThreshold:
		return TierHot
	case score >= warmThreshold:
		return TierWarm
	default:
		return TierCold
	}
}

// LifecycleStage maps a tier to the CRM lifecycle stage.
func LifecycleStage(t Tier) string {
	switch t {
	case TierHot:
		return "salesqualifiedlead"
	case TierWarm:
		return "marketingqualifiedlead"
	default:
		return "lead"
	}
}

// FollowUpHours returns the sales follow-up window in hours per tier.
func FollowUpHours(t Tier) int {
	switch t {
	case TierHot:
		return 1
	case TierWarm:
		return 24
	default:
		return 72
	}
}

func revenueTierPoints(monthlyRevenue float64) int {
	switch {
	case monthlyRevenue >= 500000:
		return 70
	case monthlyRevenue >= 100000:
		return 55
	case monthlyRevenue >= 50000:
		return 40
	case monthlyRevenue >= 10000:
		return 25
	default:
		return 10
	}
}

func stagePoints(stage BusinessStage) int {
	switch strings.ToLower(string(stage)) {
	case "startup":
		return 10
	case "growth":
		return 20
	case "established":
		return 30
	case "mature":
		return 40
	default:
		return 0
	}
}

// detailedChallengePoints rewards either two or more selections or a
// long free-text "Other" entry.
func detailedChallengePoints(challenges []string) int {
	if len(challenges) >= 2 {
		return 12
	}
	for _, c := range challenges {
		if strings.Contains(strings.ToLower(c), "other") && len(c) >= 50 {
			return 12
		}
	}
	return 0
}
