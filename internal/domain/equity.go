package domain

import (
	"github.com/shopspring/decimal"
)

// adminFeeRate is the per-admin cut taken from every earnings
// distribution, mirroring the AdminEquityBps grant rate.
var adminFeeRate = decimal.NewFromFloat(0.015)

// InvestorGrantBps converts an investment amount into basis points of the
// investor pool, proportional to the share of the funding goal the amount
// represents. Result is floored; a tiny investment against a large goal can
// legitimately grant 0 bps.
func InvestorGrantBps(investorPoolBps int32, amount, fundingGoal int64) int32 {
	if fundingGoal <= 0 || amount <= 0 {
		return 0
	}
	granted := decimal.NewFromInt(int64(investorPoolBps)).
		Mul(decimal.NewFromInt(amount)).
		Div(decimal.NewFromInt(fundingGoal))
	return int32(granted.IntPart())
}

// AdminFeePerAdmin computes the fixed 1.5% fee each active admin receives
// from a gross earnings amount, floored to whole Astras.
func AdminFeePerAdmin(grossAmount int64) int64 {
	return decimal.NewFromInt(grossAmount).Mul(adminFeeRate).IntPart()
}

// HolderPayout apportions the distributable remainder to one equity holder
// by basis points. totalBps is the sum over every holder, eligible or not;
// the denominator is total issued equity, not just payable equity.
func HolderPayout(holderBps, totalBps int32, distributable int64) int64 {
	if totalBps <= 0 || holderBps <= 0 || distributable <= 0 {
		return 0
	}
	payout := decimal.NewFromInt(int64(holderBps)).
		Mul(decimal.NewFromInt(distributable)).
		Div(decimal.NewFromInt(int64(totalBps)))
	return payout.IntPart()
}

// ValidateCapTable checks that founder allocations, the investor pool and
// the automatic admin grants fit within 100% ownership. The 1-bp tolerance
// absorbs floor-rounding noise from percentage conversions done by callers.
func ValidateCapTable(founderBps []int32, investorPoolBps int32, adminCount int) bool {
	var total int64
	for _, bps := range founderBps {
		total += int64(bps)
	}
	total += int64(investorPoolBps)
	total += int64(AdminEquityBps) * int64(adminCount)
	return total <= FullEquityBps+EquityToleranceBps
}
