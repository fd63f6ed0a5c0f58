package fiscal

import "time"

// Window identifies one of the fixed analysis windows.
type Window int

const (
	WindowCurrentMonth Window = iota
	WindowPreviousMonth
	WindowYearToDate
	WindowCurrentQuarter
)

// WindowBounds returns the inclusive [start, end] day range for a fixed
// window relative to ref. Bounds are at day granularity: a record dated
// exactly on either bound is inside the window.
func WindowBounds(ref time.Time, w Window) (start, end time.Time) {
	y, m, _ := ref.Date()
	day := time.Date(y, m, ref.Day(), 0, 0, 0, 0, ref.Location())

	switch w {
	case WindowCurrentMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, ref.Location()), day
	case WindowPreviousMonth:
		firstOfMonth := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
		start = firstOfMonth.AddDate(0, -1, 0)
		end = firstOfMonth.AddDate(0, 0, -1)
		return start, end
	case WindowYearToDate:
		return time.Date(y, 1, 1, 0, 0, 0, 0, ref.Location()), day
	case WindowCurrentQuarter:
		qm := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, qm, 1, 0, 0, 0, 0, ref.Location()), day
	}
	return day, day
}

// TrailingBounds returns the inclusive range covering the n months ending at
// ref: from the first day of the month n-1 months back through ref.
func TrailingBounds(ref time.Time, n int) (start, end time.Time) {
	if n < 1 {
		n = 1
	}
	y, m, _ := ref.Date()
	start = time.Date(y, m, 1, 0, 0, 0, 0, ref.Location()).AddDate(0, -(n - 1), 0)
	end = time.Date(y, m, ref.Day(), 0, 0, 0, 0, ref.Location())
	return start, end
}

// inRange reports whether the date falls inside [start, end], comparing at
// day granularity so timestamps on the boundary days are included.
func inRange(d, start, end time.Time) bool {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, start.Location())
	return !day.Before(start) && !day.After(end)
}

// SumRevenue totals revenue records whose issue date falls in [start, end].
func SumRevenue(records []RevenueRecord, start, end time.Time) float64 {
	var total float64
	for _, r := range records {
		if inRange(r.IssueDate, start, end) {
			total += r.Amount
		}
	}
	return total
}

// SumCosts totals cost records whose date falls in [start, end].
func SumCosts(records []CostRecord, start, end time.Time) float64 {
	var total float64
	for _, c := range records {
		if inRange(c.Date, start, end) {
			total += c.Amount
		}
	}
	return total
}

// Aggregate sums both collections over a fixed window relative to ref.
func Aggregate(revenues []RevenueRecord, costs []CostRecord, ref time.Time, w Window) WindowTotals {
	start, end := WindowBounds(ref, w)
	return WindowTotals{
		Revenue: SumRevenue(revenues, start, end),
		Costs:   SumCosts(costs, start, end),
	}
}

// MonthlyTotals aggregates per calendar month over the trailing n months
// ending at ref, oldest month first. Labels use the YYYY-MM form the
// dashboard charts expect.
func MonthlyTotals(revenues []RevenueRecord, costs []CostRecord, ref time.Time, n int) ([]string, []WindowTotals) {
	if n < 1 {
		n = 1
	}
	labels := make([]string, 0, n)
	totals := make([]WindowTotals, 0, n)

	y, m, _ := ref.Date()
	firstOfMonth := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
	for i := n - 1; i >= 0; i-- {
		start := firstOfMonth.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, -1)
		if end.After(ref) {
			end = time.Date(y, m, ref.Day(), 0, 0, 0, 0, ref.Location())
		}
		labels = append(labels, start.Format("2006-01"))
		totals = append(totals, WindowTotals{
			Revenue: SumRevenue(revenues, start, end),
			Costs:   SumCosts(costs, start, end),
		})
	}
	return labels, totals
}
