package payments

// CommissionRatePercent is the platform's share of a completed campaign
// budget, in whole percent.
const CommissionRatePercent = 20

// SplitBudget divides an escrowed budget between the creator payout and the
// platform commission. The creator share is floored on non-divisible budgets
// and the remainder goes to commission, so the two parts always sum exactly
// to the budget.
func SplitBudget(budget int64) (creatorShare, commission int64) {
	creatorShare = budget * int64(100-CommissionRatePercent) / 100
	commission = budget - creatorShare
	return creatorShare, commission
}
