package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type IdempotencyKey struct {
	IdempotencyKey string
	RequestHash    string
	Method         string
	Path           string
	ResponseStatus int32
	ResponseBody   []byte
	ContentType    string
	InProgress     bool
	CreatedAt      time.Time
}

const idempotencyColumns = `idempotency_key, request_hash, method, path, response_status, response_body, content_type, in_progress, created_at`

func scanIdempotencyKey(row pgx.Row, k *IdempotencyKey) error {
	return row.Scan(&k.IdempotencyKey, &k.RequestHash, &k.Method, &k.Path,
		&k.ResponseStatus, &k.ResponseBody, &k.ContentType, &k.InProgress, &k.CreatedAt)
}

func (q *Queries) GetIdempotencyKey(ctx context.Context, key string) (*IdempotencyKey, error) {
	var k IdempotencyKey
	err := scanIdempotencyKey(q.db.QueryRow(ctx,
		`SELECT `+idempotencyColumns+` FROM idempotency_keys WHERE idempotency_key = $1`, key), &k)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

type ReserveIdempotencyKeyParams struct {
	IdempotencyKey string
	RequestHash    string
	Method         string
	Path           string
}

// ReserveIdempotencyKey claims a key for the first request that presents
// it. Returns pgx.ErrNoRows when the key is already claimed.
func (q *Queries) ReserveIdempotencyKey(ctx context.Context, arg ReserveIdempotencyKeyParams) (*IdempotencyKey, error) {
	var k IdempotencyKey
	err := scanIdempotencyKey(q.db.QueryRow(ctx, `
		INSERT INTO idempotency_keys (idempotency_key, request_hash, method, path, in_progress, created_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW())
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING `+idempotencyColumns,
		arg.IdempotencyKey, arg.RequestHash, arg.Method, arg.Path), &k)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

type FinalizeIdempotencyKeyParams struct {
	IdempotencyKey string
	RequestHash    string
	ResponseStatus int32
	ResponseBody   []byte
	ContentType    string
}

func (q *Queries) FinalizeIdempotencyKey(ctx context.Context, arg FinalizeIdempotencyKeyParams) (*IdempotencyKey, error) {
	var k IdempotencyKey
	err := scanIdempotencyKey(q.db.QueryRow(ctx, `
		UPDATE idempotency_keys
		SET response_status = $1, response_body = $2, content_type = $3, in_progress = FALSE
		WHERE idempotency_key = $4 AND request_hash = $5
		RETURNING `+idempotencyColumns,
		arg.ResponseStatus, arg.ResponseBody, arg.ContentType, arg.IdempotencyKey, arg.RequestHash), &k)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// DeleteExpiredIdempotencyKeys prunes keys older than the TTL.
func (q *Queries) DeleteExpiredIdempotencyKeys(ctx context.Context, ttl time.Duration) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM idempotency_keys WHERE created_at < NOW() - make_interval(secs => $1)`, ttl.Seconds())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
