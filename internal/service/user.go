package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/astraschool/astra-platform/internal/domain"
	"github.com/astraschool/astra-platform/internal/models"
	"github.com/astraschool/astra-platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration, credential checks and the read
// projections a user sees about themselves.
type UserService struct {
	store           QueryStore
	startingBalance int64
}

func NewUserService(store QueryStore, startingBalance int64) *UserService {
	return &UserService{store: store, startingBalance: startingBalance}
}

// Register creates an account with the configured starting balance.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.Queries().CreateUser(ctx, repository.CreateUserParams{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Balance:      s.startingBalance,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Authenticate verifies an email/password pair. Both unknown email and
// wrong password return ErrInvalidCredentials, never which of the two.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.Queries().GetUserByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.Queries().GetUser(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	return user, err
}

// profileRecentTransactions caps the activity excerpt shown on a profile.
const profileRecentTransactions = 10

// Profile assembles the public view of a user for a viewer: the account
// basics, the friendship state between the two, the user's accepted
// friends, their ten most recent transactions, their holdings and the
// active companies they founded. Banned users have no profile.
func (s *UserService) Profile(ctx context.Context, targetID, viewerID uuid.UUID) (*models.UserProfile, error) {
	q := s.store.Queries()

	user, err := q.GetUser(ctx, targetID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.IsBanned {
		return nil, models.ErrUserNotFound
	}

	profile := &models.UserProfile{
		ID:        user.ID,
		Email:     user.Email,
		Balance:   user.Balance,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
	}

	if targetID != viewerID {
		status, requested, err := q.GetFriendshipStatus(ctx, viewerID, targetID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// No link between viewer and target.
		case err != nil:
			return nil, fmt.Errorf("load friendship status: %w", err)
		default:
			profile.FriendshipStatus = &status
			profile.RequestedByViewer = requested
		}
	}

	all, err := q.ListFriends(ctx, targetID)
	if err != nil {
		return nil, err
	}
	for _, f := range all {
		if f.FriendshipStatus == domain.FriendshipAccepted {
			profile.Friends = append(profile.Friends, f)
		}
	}

	if profile.RecentTransactions, err = q.ListUserTransactions(ctx, targetID, profileRecentTransactions); err != nil {
		return nil, err
	}
	if profile.Equity, err = q.ListUserEquity(ctx, targetID); err != nil {
		return nil, err
	}
	if profile.CreatedCompanies, err = q.ListCompaniesCreatedBy(ctx, targetID); err != nil {
		return nil, err
	}
	return profile, nil
}

// History returns the user's transaction history, newest first, with the
// sent/received direction derived relative to the user.
func (s *UserService) History(ctx context.Context, userID uuid.UUID, limit int32) ([]models.UserTransaction, error) {
	if limit < 1 {
		limit = 50
	}
	return s.store.Queries().ListUserTransactions(ctx, userID, limit)
}

func (s *UserService) Equity(ctx context.Context, userID uuid.UUID) ([]models.UserEquity, error) {
	return s.store.Queries().ListUserEquity(ctx, userID)
}

func (s *UserService) Payouts(ctx context.Context, userID uuid.UUID) ([]models.UserPayout, error) {
	return s.store.Queries().ListUserPayouts(ctx, userID)
}
