package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvestorGrantBps(t *testing.T) {
	tests := []struct {
		name        string
		poolBps     int32
		amount      int64
		fundingGoal int64
		want        int32
	}{
		{"tenth of goal", 5000, 1000, 10000, 500},
		{"full goal takes whole pool", 5000, 10000, 10000, 5000},
		{"floors fractional grant", 5000, 333, 10000, 166},
		{"tiny investment grants zero", 100, 1, 1000000, 0},
		{"zero goal", 5000, 100, 0, 0},
		{"zero amount", 5000, 0, 10000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InvestorGrantBps(tt.poolBps, tt.amount, tt.fundingGoal))
		})
	}
}

func TestAdminFeePerAdmin(t *testing.T) {
	assert.Equal(t, int64(15), AdminFeePerAdmin(1000))
	assert.Equal(t, int64(0), AdminFeePerAdmin(66)) // 0.99 floors to 0
	assert.Equal(t, int64(1), AdminFeePerAdmin(67))
	assert.Equal(t, int64(0), AdminFeePerAdmin(0))
}

func TestHolderPayout(t *testing.T) {
	// sole holder with 100% takes everything
	assert.Equal(t, int64(1000), HolderPayout(10000, 10000, 1000))
	// half ownership
	assert.Equal(t, int64(500), HolderPayout(5000, 10000, 1000))
	// floors the fractional share
	assert.Equal(t, int64(333), HolderPayout(1, 3, 1000))
	// denominator includes ineligible holders, so shares shrink
	assert.Equal(t, int64(250), HolderPayout(2500, 10000, 1000))
	assert.Equal(t, int64(0), HolderPayout(0, 10000, 1000))
	assert.Equal(t, int64(0), HolderPayout(100, 0, 1000))
}

func TestHolderPayoutNeverExceedsDistributable(t *testing.T) {
	// Sum of floored shares must never exceed the distributable amount.
	distributable := int64(997)
	holders := []int32{150, 150, 3000, 1200, 777}
	var totalBps int32
	for _, bps := range holders {
		totalBps += bps
	}
	var paid int64
	for _, bps := range holders {
		paid += HolderPayout(bps, totalBps, distributable)
	}
	assert.LessOrEqual(t, paid, distributable)
}

func TestValidateCapTable(t *testing.T) {
	// 3000 founder + 5000 pool + no admins = 8000
	assert.True(t, ValidateCapTable([]int32{3000}, 5000, 0))
	// exactly 10000
	assert.True(t, ValidateCapTable([]int32{4850}, 5000, 1))
	// the 1-bp tolerance is permitted
	assert.True(t, ValidateCapTable([]int32{4851}, 5000, 1))
	// 2 bps over is rejected
	assert.False(t, ValidateCapTable([]int32{4852}, 5000, 1))
	// admin grants count against the cap
	assert.False(t, ValidateCapTable([]int32{3000}, 5000, 15))
}
