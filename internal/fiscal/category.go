package fiscal

import (
	"math"
	"strings"
)

// categoryGroup binds a category name to the keywords that select it.
type categoryGroup struct {
	name     string
	keywords []string
}

// Ordered keyword groups for cost categorization. Evaluation order is part
// of the observable behavior: the first group containing a matching keyword
// wins, so reordering changes category totals. Do not reorder.
var categoryGroups = []categoryGroup{
	{"Office", []string{"office", "rent", "utilities"}},
	{"Transport", []string{"vehicle", "fuel", "transport"}},
	{"Technology", []string{"phone", "internet", "software"}},
	{"Training", []string{"training", "course", "book"}},
	{"Marketing", []string{"marketing", "advertising", "website"}},
	{"Consulting", []string{"consulting", "accountant"}},
}

// CategoryOther collects every cost no keyword group claims.
const CategoryOther = "Other"

// CategorizeCost assigns a single category by scanning the free-text
// description case-insensitively against the ordered keyword groups.
func CategorizeCost(description string) string {
	desc := strings.ToLower(description)
	for _, g := range categoryGroups {
		for _, kw := range g.keywords {
			if strings.Contains(desc, kw) {
				return g.name
			}
		}
	}
	return CategoryOther
}

// CategorizeCosts groups costs into category totals with each category's
// percentage of the categorized total. Percentages sum to 100 across the
// categories present, and are 0 when the total is 0. Categories are returned
// in group evaluation order, "Other" last, empty categories omitted.
func CategorizeCosts(costs []CostRecord) []CategoryTotal {
	amounts := make(map[string]float64)
	var total float64
	for _, c := range costs {
		cat := CategorizeCost(c.Description)
		amounts[cat] += c.Amount
		total += c.Amount
	}

	order := make([]string, 0, len(categoryGroups)+1)
	for _, g := range categoryGroups {
		order = append(order, g.name)
	}
	order = append(order, CategoryOther)

	result := make([]CategoryTotal, 0, len(amounts))
	for _, name := range order {
		amount, ok := amounts[name]
		if !ok {
			continue
		}
		percent := 0.0
		if total != 0 {
			percent = round2(amount / total * 100)
		}
		result = append(result, CategoryTotal{Category: name, Amount: amount, Percent: percent})
	}
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
