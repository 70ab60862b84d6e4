package repository

import (
	"context"
	"fmt"

	"github.com/astraschool/astra-platform/internal/models"
	"github.com/google/uuid"
)

func (q *Queries) InsertFriendship(ctx context.Context, userID, friendID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO friendships (id, user_id, friend_id, status, created_at)
		VALUES ($1, $2, $3, 'pending', NOW())
	`, uuid.New(), userID, friendID)
	if err != nil {
		return fmt.Errorf("insert friendship: %w", err)
	}
	return nil
}

// FriendshipExists reports whether any friendship row links the two users
// in either direction.
func (q *Queries) FriendshipExists(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM friendships
			WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
		)
	`, a, b).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}
	return exists, nil
}

// GetFriendshipStatus returns the status of the friendship row linking
// the two users, and whether userID is the one who requested it. The
// error is pgx.ErrNoRows when no row links them.
func (q *Queries) GetFriendshipStatus(ctx context.Context, userID, otherID uuid.UUID) (string, bool, error) {
	var status string
	var requestedByUser bool
	err := q.db.QueryRow(ctx, `
		SELECT status, user_id = $1
		FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`, userID, otherID).Scan(&status, &requestedByUser)
	if err != nil {
		return "", false, err
	}
	return status, requestedByUser, nil
}

// AreFriends reports whether an accepted friendship links the two users.
func (q *Queries) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM friendships
			WHERE status = 'accepted'
			AND ((user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1))
		)
	`, a, b).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check accepted friendship: %w", err)
	}
	return exists, nil
}

// UpdateFriendshipStatus resolves a pending request. Only the recipient
// may act on it, enforced in the statement itself. Returns rows updated.
func (q *Queries) UpdateFriendshipStatus(ctx context.Context, recipientID, senderID uuid.UUID, status string) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE friendships SET status = $1
		WHERE friend_id = $2 AND user_id = $3 AND status = 'pending'
	`, status, recipientID, senderID)
	if err != nil {
		return 0, fmt.Errorf("update friendship status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListFriends returns every friendship of a user, banned users filtered.
func (q *Queries) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error) {
	rows, err := q.db.Query(ctx, `
		SELECT u.id, u.email, u.balance, u.is_admin, f.status, f.user_id = $1
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
		WHERE (f.user_id = $1 OR f.friend_id = $1) AND NOT u.is_banned
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends for user %s: %w", userID, err)
	}
	defer rows.Close()

	var friends []models.Friend
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.ID, &f.Email, &f.Balance, &f.IsAdmin, &f.FriendshipStatus, &f.RequestedByCurrent); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

// ListFriendRequests returns pending requests addressed to a user.
func (q *Queries) ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequest, error) {
	rows, err := q.db.Query(ctx, `
		SELECT u.id, u.email, u.balance, u.is_admin, f.id
		FROM friendships f
		JOIN users u ON u.id = f.user_id
		WHERE f.friend_id = $1 AND f.status = 'pending' AND NOT u.is_banned
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list friend requests for user %s: %w", userID, err)
	}
	defer rows.Close()

	var requests []models.FriendRequest
	for rows.Next() {
		var r models.FriendRequest
		if err := rows.Scan(&r.ID, &r.Email, &r.Balance, &r.IsAdmin, &r.FriendshipID); err != nil {
			return nil, fmt.Errorf("scan friend request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// ListRecommendedUsers suggests users with no friendship link to the
// given user, banned users excluded.
func (q *Queries) ListRecommendedUsers(ctx context.Context, userID uuid.UUID, limit int32) ([]models.User, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users u
		WHERE u.id != $1 AND NOT u.is_banned
		AND NOT EXISTS (
			SELECT 1 FROM friendships f
			WHERE (f.user_id = $1 AND f.friend_id = u.id) OR (f.user_id = u.id AND f.friend_id = $1)
		)
		ORDER BY u.email
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recommended users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scan recommended user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
