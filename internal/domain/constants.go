package domain

// Transaction types recorded in the ledger.
const (
	TxTypeTransfer    = "transfer"
	TxTypeInvest      = "invest"
	TxTypeEarn        = "earn"
	TxTypeRefund      = "refund"
	TxTypeAdminAdjust = "admin_adjust"
)

// Payout types for company earnings distributions.
const (
	PayoutTypeAdmin    = "admin"
	PayoutTypeInvestor = "investor"
	PayoutTypeWithheld = "withheld"
)

// Friendship statuses.
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipBlocked  = "blocked"
)

const (
	// FullEquityBps is 100% ownership expressed in basis points.
	FullEquityBps = 10000

	// EquityToleranceBps is the slack permitted above FullEquityBps when
	// validating a cap table. Callers converting percentages to basis
	// points floor independently, so a cumulative sum can land 1 bp high.
	EquityToleranceBps = 1

	// AdminEquityBps is the fixed grant every active admin receives when
	// a company is created (1.5%).
	AdminEquityBps = 150
)
