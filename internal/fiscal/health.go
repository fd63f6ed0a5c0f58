package fiscal

import "time"

// Fixed benchmark values shown on the profitability dashboard.
const (
	TargetMargin          = 25.0
	IndustryAverageMargin = 20.0
)

// trailingAnalysisMonths is the horizon used for the best-window search,
// matching the dashboard's chart horizon.
const trailingAnalysisMonths = 6

// Margin returns profit as a percentage of revenue, 0 when revenue is 0.
func Margin(revenue, profit float64) float64 {
	if revenue == 0 {
		return 0
	}
	return profit / revenue * 100
}

// Trend returns the percentage change from previous to current, 0 when
// previous is 0.
func Trend(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	if previous < 0 {
		previous = -previous
	}
	return (current - previous) / previous * 100
}

// HealthScore combines margin, profit trend, revenue growth and cost control
// into a 0–100 score. Each signal contributes an independently capped tier;
// the sum is clamped to [0, 100].
func HealthScore(margin, profitTrend, revenueTrend, costTrend float64) int {
	score := 0

	switch {
	case margin >= 30:
		score += 40
	case margin >= 20:
		score += 30
	case margin >= 10:
		score += 20
	case margin >= 0:
		score += 10
	}

	switch {
	case profitTrend >= 10:
		score += 30
	case profitTrend >= 0:
		score += 20
	case profitTrend >= -10:
		score += 10
	}

	switch {
	case revenueTrend >= 15:
		score += 20
	case revenueTrend >= 5:
		score += 15
	case revenueTrend >= 0:
		score += 10
	}

	switch {
	case costTrend <= 0:
		score += 10
	case costTrend <= 5:
		score += 5
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Recommendations evaluates the advice rules top to bottom and returns the
// first three that fire. Rule order is the ranking.
func Recommendations(margin float64, trends Trends, healthScore int, targetMargin float64) []string {
	rules := []struct {
		applies bool
		text    string
	}{
		{margin < 15, "Il margine è sotto il 15%: rivedi i prezzi o riduci i costi ricorrenti."},
		{trends.ProfitTrend < -10, "L'utile è in calo di oltre il 10% rispetto al periodo precedente: verifica cosa è cambiato."},
		{trends.CostTrend > 15, "I costi stanno crescendo rapidamente (oltre il 15%): controlla le spese recenti."},
		{margin < targetMargin, "Il margine è sotto il tuo obiettivo: punta ad avvicinarti al target configurato."},
		{margin < IndustryAverageMargin, "Il margine è sotto la media di settore (20%)."},
		{healthScore < 50, "Indicatore di salute critico: una revisione dei prezzi è urgente."},
	}

	recommendations := make([]string, 0, 3)
	for _, r := range rules {
		if !r.applies {
			continue
		}
		recommendations = append(recommendations, r.text)
		if len(recommendations) == 3 {
			break
		}
	}
	return recommendations
}

// figures derives the full per-window snapshot from raw totals.
func figures(t WindowTotals) WindowFigures {
	profit := t.Profit()
	return WindowFigures{
		Revenue: t.Revenue,
		Costs:   t.Costs,
		Profit:  profit,
		Margin:  Margin(t.Revenue, profit),
	}
}

// ComputeProfit is the top-level profitability computation: window figures,
// trends versus the previous month, benchmarks with the best trailing month,
// the health score and up to three ranked recommendations.
func ComputeProfit(revenues []RevenueRecord, costs []CostRecord, ref time.Time) ProfitComputationResult {
	current := figures(Aggregate(revenues, costs, ref, WindowCurrentMonth))
	previous := figures(Aggregate(revenues, costs, ref, WindowPreviousMonth))
	yearToDate := figures(Aggregate(revenues, costs, ref, WindowYearToDate))

	trends := Trends{
		ProfitTrend:  Trend(current.Profit, previous.Profit),
		MarginTrend:  current.Margin - previous.Margin,
		RevenueTrend: Trend(current.Revenue, previous.Revenue),
		CostTrend:    Trend(current.Costs, previous.Costs),
	}

	labels, monthly := MonthlyTotals(revenues, costs, ref, trailingAnalysisMonths)
	bestWindow, bestProfit := "", 0.0
	for i, t := range monthly {
		profit := t.Profit()
		if bestWindow == "" || profit > bestProfit {
			bestWindow, bestProfit = labels[i], profit
		}
	}

	score := HealthScore(current.Margin, trends.ProfitTrend, trends.RevenueTrend, trends.CostTrend)

	return ProfitComputationResult{
		Current:    current,
		Previous:   previous,
		YearToDate: yearToDate,
		Trends:     trends,
		Benchmarks: Benchmarks{
			TargetMargin:    TargetMargin,
			IndustryAverage: IndustryAverageMargin,
			BestWindow:      bestWindow,
			BestProfit:      bestProfit,
		},
		HealthScore:     score,
		Recommendations: Recommendations(current.Margin, trends, score, TargetMargin),
	}
}
