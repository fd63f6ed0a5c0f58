package fiscal

import (
	"testing"
	"time"
)

func TestMargin_ZeroRevenue(t *testing.T) {
	for _, costs := range []float64{0, 100, 1e9} {
		if m := Margin(0, -costs); m != 0 {
			t.Errorf("expected margin 0 with zero revenue (costs %.0f), got %.2f", costs, m)
		}
	}
}

func TestTrend(t *testing.T) {
	if tr := Trend(120, 100); !almostEqual(tr, 20) {
		t.Errorf("expected +20%%, got %.2f", tr)
	}
	if tr := Trend(80, 100); !almostEqual(tr, -20) {
		t.Errorf("expected -20%%, got %.2f", tr)
	}
	if tr := Trend(500, 0); tr != 0 {
		t.Errorf("expected 0 when previous is 0, got %.2f", tr)
	}
	// Negative previous uses the absolute value as denominator.
	if tr := Trend(50, -100); !almostEqual(tr, 150) {
		t.Errorf("expected +150%% recovering from a loss, got %.2f", tr)
	}
}

func TestHealthScore_PerfectInputs(t *testing.T) {
	// margin=35, profit trend=12, revenue growth=18, cost trend=-2 → 100
	if score := HealthScore(35, 12, 18, -2); score != 100 {
		t.Errorf("expected 100, got %d", score)
	}
}

func TestHealthScore_Tiers(t *testing.T) {
	tests := []struct {
		margin, profit, revenue, cost float64
		want                          int
	}{
		{30, 10, 15, 0, 100}, // every tier boundary inclusive
		{20, 0, 5, 5, 70},    // 30+20+15+5
		{10, -10, 0, 6, 40},  // 20+10+10+0
		{-5, -50, -20, 50, 0},
	}

	for _, tc := range tests {
		if got := HealthScore(tc.margin, tc.profit, tc.revenue, tc.cost); got != tc.want {
			t.Errorf("HealthScore(%.0f, %.0f, %.0f, %.0f): expected %d, got %d",
				tc.margin, tc.profit, tc.revenue, tc.cost, got, tc.want)
		}
	}
}

func TestHealthScore_AlwaysInRange(t *testing.T) {
	values := []float64{-1e12, -1e9, -100, -0.0001, 0, 0.0001, 100, 1e9, 1e12}

	for _, m := range values {
		for _, p := range values {
			for _, r := range values {
				for _, c := range values {
					score := HealthScore(m, p, r, c)
					if score < 0 || score > 100 {
						t.Fatalf("score %d out of range for (%g, %g, %g, %g)", score, m, p, r, c)
					}
				}
			}
		}
	}
}

func TestRecommendations_OrderAndTruncation(t *testing.T) {
	// Everything is wrong: all six rules fire, only the first three survive.
	trends := Trends{ProfitTrend: -50, CostTrend: 40}
	recs := Recommendations(5, trends, 20, TargetMargin)
	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(recs))
	}
	if recs[0] != "Il margine è sotto il 15%: rivedi i prezzi o riduci i costi ricorrenti." {
		t.Errorf("unexpected first recommendation %q", recs[0])
	}
}

func TestRecommendations_HealthyBusiness(t *testing.T) {
	recs := Recommendations(40, Trends{ProfitTrend: 5, CostTrend: -1}, 90, TargetMargin)
	if len(recs) != 0 {
		t.Errorf("expected no recommendations for a healthy business, got %v", recs)
	}
}

func TestComputeProfit_EndToEnd(t *testing.T) {
	ref := day(2025, time.May, 14)
	revenues := []RevenueRecord{
		{IssueDate: day(2025, time.May, 2), Amount: 4000},
		{IssueDate: day(2025, time.April, 10), Amount: 3000},
		{IssueDate: day(2025, time.February, 5), Amount: 2000},
	}
	costs := []CostRecord{
		{Date: day(2025, time.May, 3), Amount: 1000, Description: "Office rent"},
		{Date: day(2025, time.April, 12), Amount: 1500, Description: "Fuel"},
	}

	result := ComputeProfit(revenues, costs, ref)

	if !almostEqual(result.Current.Profit, 3000) {
		t.Errorf("expected current profit 3000, got %.2f", result.Current.Profit)
	}
	if !almostEqual(result.Current.Margin, 75) {
		t.Errorf("expected current margin 75, got %.2f", result.Current.Margin)
	}
	if !almostEqual(result.Previous.Profit, 1500) {
		t.Errorf("expected previous profit 1500, got %.2f", result.Previous.Profit)
	}
	if !almostEqual(result.Trends.ProfitTrend, 100) {
		t.Errorf("expected profit trend +100%%, got %.2f", result.Trends.ProfitTrend)
	}
	if !almostEqual(result.Trends.MarginTrend, 25) {
		t.Errorf("expected margin trend +25 points, got %.2f", result.Trends.MarginTrend)
	}
	if result.Benchmarks.BestWindow != "2025-05" {
		t.Errorf("expected best window 2025-05, got %s", result.Benchmarks.BestWindow)
	}
	if result.HealthScore < 0 || result.HealthScore > 100 {
		t.Errorf("health score out of range: %d", result.HealthScore)
	}
	if result.Benchmarks.TargetMargin != 25 || result.Benchmarks.IndustryAverage != 20 {
		t.Errorf("unexpected benchmarks %+v", result.Benchmarks)
	}
}

func TestComputeProfit_BestWindowTieBreaksEarliest(t *testing.T) {
	ref := day(2025, time.June, 15)
	// February and April have identical profit; February should win.
	revenues := []RevenueRecord{
		{IssueDate: day(2025, time.February, 5), Amount: 1000},
		{IssueDate: day(2025, time.April, 5), Amount: 1000},
	}

	result := ComputeProfit(revenues, nil, ref)
	if result.Benchmarks.BestWindow != "2025-02" {
		t.Errorf("expected earliest tied window 2025-02, got %s", result.Benchmarks.BestWindow)
	}
}

func TestComputeProfit_EmptyInput(t *testing.T) {
	result := ComputeProfit(nil, nil, day(2025, time.May, 14))
	if result.Current.Margin != 0 || result.HealthScore < 0 || result.HealthScore > 100 {
		t.Errorf("expected well-defined result for empty input, got %+v", result)
	}
}
