package models

import (
	"errors"
	"fmt"
)

// Business failures surfaced by the ledger engines. Handlers map each kind
// to a distinct response; nothing here implies partial state.
var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrRecipientNotFound     = errors.New("recipient not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrCompanyNotFound       = errors.New("company not found")
	ErrEquityOverallocated   = errors.New("total equity cannot exceed 100%")
	ErrPoolExhausted         = errors.New("insufficient investor pool remaining")
	ErrWouldGoNegative       = errors.New("adjustment would result in negative balance")
	ErrUnknownFounderEmail   = errors.New("founder allocation email does not match any account")
	ErrSelfFriendship        = errors.New("cannot add yourself as a friend")
	ErrFriendshipExists      = errors.New("friendship already exists")
	ErrFriendRequestNotFound = errors.New("no pending friend request")
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid email or password")
)

// FundingCapError reports an investment that would push current funding
// past the goal, with the exact headroom still available.
type FundingCapError struct {
	Requested int64
	Remaining int64
}

func (e *FundingCapError) Error() string {
	return fmt.Sprintf("cannot invest %d Astras: only %d Astras remaining to reach funding goal", e.Requested, e.Remaining)
}

// InsufficientTreasuryError reports a distribution that exceeds the
// company treasury.
type InsufficientTreasuryError struct {
	Available int64
	Required  int64
}

func (e *InsufficientTreasuryError) Error() string {
	return fmt.Sprintf("insufficient company treasury: available %d Astras, required %d Astras", e.Available, e.Required)
}
