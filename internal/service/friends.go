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
)

// FriendService manages the friendship graph. Transfers are gated on an
// accepted friendship at the HTTP edge via AreFriends.
type FriendService struct {
	store QueryStore
}

func NewFriendService(store QueryStore) *FriendService {
	return &FriendService{store: store}
}

// Add sends a friend request to the account behind the given email.
func (s *FriendService) Add(ctx context.Context, userID uuid.UUID, friendEmail string) error {
	return s.store.RunInTx(ctx, func(q *repository.Queries) error {
		friend, err := q.GetUserByEmail(ctx, friendEmail)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("resolve friend email: %w", err)
		}
		if friend.ID == userID {
			return models.ErrSelfFriendship
		}

		exists, err := q.FriendshipExists(ctx, userID, friend.ID)
		if err != nil {
			return err
		}
		if exists {
			return models.ErrFriendshipExists
		}
		return q.InsertFriendship(ctx, userID, friend.ID)
	})
}

// Respond resolves a pending request addressed to recipientID. Only the
// recipient can act; a rejected request is marked blocked so the sender
// cannot immediately re-request.
func (s *FriendService) Respond(ctx context.Context, recipientID, senderID uuid.UUID, accept bool) error {
	status := domain.FriendshipAccepted
	if !accept {
		status = domain.FriendshipBlocked
	}
	rows, err := s.store.Queries().UpdateFriendshipStatus(ctx, recipientID, senderID, status)
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrFriendRequestNotFound
	}
	return nil
}

// AreFriends reports whether an accepted friendship links the two users.
func (s *FriendService) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	return s.store.Queries().AreFriends(ctx, a, b)
}

func (s *FriendService) List(ctx context.Context, userID uuid.UUID) ([]models.Friend, error) {
	return s.store.Queries().ListFriends(ctx, userID)
}

func (s *FriendService) Requests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequest, error) {
	return s.store.Queries().ListFriendRequests(ctx, userID)
}

func (s *FriendService) Recommended(ctx context.Context, userID uuid.UUID, limit int32) ([]models.User, error) {
	if limit < 1 {
		limit = 10
	}
	return s.store.Queries().ListRecommendedUsers(ctx, userID, limit)
}
