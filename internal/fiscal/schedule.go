package fiscal

import "time"

// NextDueDate returns the 16th of the first month of the quarter following
// the reference date's quarter.
func NextDueDate(ref time.Time) time.Time {
	quarter := (int(ref.Month()) - 1) / 3
	year := ref.Year()
	month := time.Month(quarter*3 + 4)
	if month > 12 {
		month -= 12
		year++
	}
	return time.Date(year, month, 16, 0, 0, 0, 0, ref.Location())
}

// NextPayments projects the upcoming payment obligations for a period
// liability: at most one per non-zero component, all sharing the next
// quarterly due date. Zero components are omitted entirely. IsPaid starts
// false; marking payments done is the persistence layer's job.
func NextPayments(liability PeriodLiability, ref time.Time) []PaymentObligation {
	due := NextDueDate(ref)
	payments := make([]PaymentObligation, 0, 2)

	if liability.Tax > 0 {
		description := "Imposta sostitutiva"
		if liability.Regime == RegimeOrdinario {
			description = "IRPEF"
		}
		payments = append(payments, PaymentObligation{
			Description: description,
			Amount:      liability.Tax,
			DueDate:     due,
			Type:        PaymentTax,
		})
	}

	if contribution := liability.PensionContribution + liability.FundContribution; contribution > 0 {
		description := "Contributi previdenziali"
		if liability.FundContribution > 0 {
			description = "Contributi cassa professionale"
		}
		payments = append(payments, PaymentObligation{
			Description: description,
			Amount:      contribution,
			DueDate:     due,
			Type:        PaymentPension,
		})
	}

	return payments
}
