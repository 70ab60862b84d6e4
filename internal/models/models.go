package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Balance   int64     `json:"balance"`
	IsAdmin   bool      `json:"is_admin"`
	IsBanned  bool      `json:"is_banned"`
	IsFounder bool      `json:"is_founder"`
	CreatedAt time.Time `json:"created_at"`
}

// Transaction is an immutable record of one value movement. FromUserID is
// nil for system-originated movements; CompanyID is set for company-scoped
// types (invest, earn, refund).
type Transaction struct {
	ID          uuid.UUID  `json:"id"`
	FromUserID  *uuid.UUID `json:"from_user_id"`
	ToUserID    uuid.UUID  `json:"to_user_id"`
	Amount      int64      `json:"amount"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	CompanyID   *uuid.UUID `json:"company_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UserTransaction is a transaction projected from one user's perspective.
type UserTransaction struct {
	Transaction
	Direction          string `json:"direction"` // "sent" or "received"
	CounterpartEmail   string `json:"counterpart_email"`
	CounterpartIsAdmin bool   `json:"counterpart_is_admin"`
}

type Company struct {
	ID                       uuid.UUID `json:"id"`
	Name                     string    `json:"name"`
	Description              string    `json:"description"`
	Category                 string    `json:"category"`
	FundingGoal              int64     `json:"funding_goal"`
	CurrentFunding           int64     `json:"current_funding"`
	TreasuryBalance          int64     `json:"treasury_balance"`
	InvestorPoolBps          int32     `json:"investor_pool_bps"`
	AllocatedInvestorBps     int32     `json:"allocated_investor_bps"`
	TotalEarningsDistributed int64     `json:"total_earnings_distributed"`
	IsDeleted                bool      `json:"is_deleted"`
	CreatedByID              uuid.UUID `json:"created_by_id"`
	FoundedAt                time.Time `json:"founded_at"`
}

// CompanySummary is a listing row joined with the creator's email.
type CompanySummary struct {
	Company
	CreatorEmail string `json:"creator_email"`
}

type EquityAllocation struct {
	ID                uuid.UUID `json:"id"`
	CompanyID         uuid.UUID `json:"company_id"`
	UserID            uuid.UUID `json:"user_id"`
	BasisPoints       int32     `json:"basis_points"`
	CanReceivePayouts bool      `json:"can_receive_payouts"`
	CreatedAt         time.Time `json:"created_at"`
}

// CompanyEquity is an equity allocation joined with the holder's email.
type CompanyEquity struct {
	EquityAllocation
	UserEmail string `json:"user_email"`
}

// UserEquity is an equity allocation joined with the company's name.
type UserEquity struct {
	EquityAllocation
	CompanyName string `json:"company_name"`
}

// Investment is the per-event audit record behind an equity grant.
type Investment struct {
	ID                  uuid.UUID `json:"id"`
	CompanyID           uuid.UUID `json:"company_id"`
	UserID              uuid.UUID `json:"user_id"`
	Amount              int64     `json:"amount"`
	BasisPointsReceived int32     `json:"basis_points_received"`
	CreatedAt           time.Time `json:"created_at"`
}

// Earnings captures one distribution event against a company treasury.
type Earnings struct {
	ID                  uuid.UUID `json:"id"`
	CompanyID           uuid.UUID `json:"company_id"`
	GrossAmount         int64     `json:"gross_amount"`
	AdminShare          int64     `json:"admin_share"`
	DistributableAmount int64     `json:"distributable_amount"`
	DistributedByID     uuid.UUID `json:"distributed_by_id"`
	CreatedAt           time.Time `json:"created_at"`
}

// Payout is one pay event within a distribution. UserID is nil when the
// amount was withheld from an ineligible holder.
type Payout struct {
	ID         uuid.UUID  `json:"id"`
	EarningsID uuid.UUID  `json:"earnings_id"`
	CompanyID  uuid.UUID  `json:"company_id"`
	UserID     *uuid.UUID `json:"user_id"`
	Amount     int64      `json:"amount"`
	PayoutType string     `json:"payout_type"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CompanyPayout is a payout joined with the holder email and earnings date.
type CompanyPayout struct {
	Payout
	UserEmail    *string   `json:"user_email"`
	EarningsDate time.Time `json:"earnings_date"`
}

// UserPayout is a payout joined with the company name and earnings date.
type UserPayout struct {
	Payout
	CompanyName  string    `json:"company_name"`
	EarningsDate time.Time `json:"earnings_date"`
}

type Friendship struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	FriendID  uuid.UUID `json:"friend_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Friend is a friendship row projected from one user's perspective.
type Friend struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	Balance            int64     `json:"balance"`
	IsAdmin            bool      `json:"is_admin"`
	FriendshipStatus   string    `json:"friendship_status"`
	RequestedByCurrent bool      `json:"requested_by_current"`
}

// UserProfile is the public view of one account: who they are, their
// accepted friends, recent activity, holdings and the companies they
// founded. FriendshipStatus is nil when no friendship row links the
// viewer to the profiled user.
type UserProfile struct {
	ID                 uuid.UUID         `json:"id"`
	Email              string            `json:"email"`
	Balance            int64             `json:"balance"`
	IsAdmin            bool              `json:"is_admin"`
	CreatedAt          time.Time         `json:"created_at"`
	FriendshipStatus   *string           `json:"friendship_status"`
	RequestedByViewer  bool              `json:"requested_by_viewer"`
	Friends            []Friend          `json:"friends"`
	RecentTransactions []UserTransaction `json:"recent_transactions"`
	Equity             []UserEquity      `json:"equity"`
	CreatedCompanies   []Company         `json:"created_companies"`
}

// FriendRequest is an incoming pending friendship.
type FriendRequest struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Balance      int64     `json:"balance"`
	IsAdmin      bool      `json:"is_admin"`
	FriendshipID uuid.UUID `json:"friendship_id"`
}
