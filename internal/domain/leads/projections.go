package leads

// Projection is one growth scenario derived from monthly revenue.
type Projection struct {
	MonthlyRevenue  float64 `json:"monthly_revenue"`
	MonthlyIncrease float64 `json:"monthly_increase"`
	AnnualBenefit   float64 `json:"annual_benefit"`
	ROIPercentage   int     `json:"roi_percentage"`
	BreakEvenMonths int     `json:"break_even_months"`
}

// Projections bundles the three scenarios shown to the lead.
type Projections struct {
	Conservative Projection `json:"conservative"`
	Expected     Projection `json:"expected"`
	Optimistic   Projection `json:"optimistic"`
}

// Project derives the scenario projections. The uplift rates, ROI
// percentages and break-even months are fixed benchmark constants.
func Project(monthlyRevenue float64) Projections {
	return Projections{
		Conservative: scenario(monthlyRevenue, 0.10, 150, 6),
		Expected:     scenario(monthlyRevenue, 0.30, 400, 5),
		Optimistic:   scenario(monthlyRevenue, 0.50, 700, 4),
	}
}

func scenario(base, uplift float64, roi, breakEven int) Projection {
	increase := base * uplift
	return Projection{
		MonthlyRevenue:  base + increase,
		MonthlyIncrease: increase,
		AnnualBenefit:   increase * 12,
		ROIPercentage:   roi,
		BreakEvenMonths: breakEven,
	}
}
