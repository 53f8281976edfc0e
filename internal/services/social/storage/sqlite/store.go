// Package sqlite provides a SQLite-backed social storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/campuscommons/campuscommons/internal/platform/storage/sqlitemigrate"
	"github.com/campuscommons/campuscommons/internal/services/social/storage"
	"github.com/campuscommons/campuscommons/internal/services/social/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists social graph state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite social store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// PutFriendship inserts one canonical friendship edge.
func (s *Store) PutFriendship(ctx context.Context, friendship storage.Friendship) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	userAID, userBID := storage.CanonicalPair(
		strings.TrimSpace(friendship.UserAID),
		strings.TrimSpace(friendship.UserBID),
	)
	if userAID == "" || userBID == "" {
		return fmt.Errorf("user ids are required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO friendships (user_a_id, user_b_id, created_at)
		 VALUES (?, ?, ?)`,
		userAID,
		userBID,
		toMillis(friendship.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put friendship: %w", err)
	}
	return nil
}

// GetFriendship returns the friendship edge between two users in either order.
func (s *Store) GetFriendship(ctx context.Context, userAID string, userBID string) (storage.Friendship, error) {
	if err := ctx.Err(); err != nil {
		return storage.Friendship{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Friendship{}, fmt.Errorf("storage is not configured")
	}
	userAID, userBID = storage.CanonicalPair(strings.TrimSpace(userAID), strings.TrimSpace(userBID))
	if userAID == "" || userBID == "" {
		return storage.Friendship{}, fmt.Errorf("user ids are required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT user_a_id, user_b_id, created_at
		 FROM friendships
		 WHERE user_a_id = ? AND user_b_id = ?`,
		userAID,
		userBID,
	)
	var friendship storage.Friendship
	var createdAt int64
	err := row.Scan(&friendship.UserAID, &friendship.UserBID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Friendship{}, storage.ErrNotFound
		}
		return storage.Friendship{}, fmt.Errorf("get friendship: %w", err)
	}
	friendship.CreatedAt = fromMillis(createdAt)
	return friendship, nil
}

// DeleteFriendship removes the friendship edge between two users.
func (s *Store) DeleteFriendship(ctx context.Context, userAID string, userBID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	userAID, userBID = storage.CanonicalPair(strings.TrimSpace(userAID), strings.TrimSpace(userBID))
	if userAID == "" || userBID == "" {
		return fmt.Errorf("user ids are required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM friendships
		 WHERE user_a_id = ? AND user_b_id = ?`,
		userAID,
		userBID,
	)
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListFriendships returns one page of a user's friendships ordered by the
// other user's id.
func (s *Store) ListFriendships(ctx context.Context, userID string, pageSize int, pageToken string) (storage.FriendshipPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.FriendshipPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.FriendshipPage{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.FriendshipPage{}, fmt.Errorf("user id is required")
	}
	if pageSize <= 0 {
		return storage.FriendshipPage{}, fmt.Errorf("page size must be greater than zero")
	}

	page := storage.FriendshipPage{
		Friendships: make([]storage.Friendship, 0, pageSize),
	}
	pageToken = strings.TrimSpace(pageToken)

	// The edge is stored once per pair, so the user may sit on either side.
	query := `SELECT user_a_id, user_b_id, created_at,
		 CASE WHEN user_a_id = ? THEN user_b_id ELSE user_a_id END AS other_id
		 FROM friendships
		 WHERE (user_a_id = ? OR user_b_id = ?)`
	args := []any{userID, userID, userID}
	if pageToken != "" {
		query += ` AND other_id > ?`
		args = append(args, pageToken)
	}
	query += ` ORDER BY other_id ASC LIMIT ?`
	args = append(args, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return storage.FriendshipPage{}, fmt.Errorf("list friendships: %w", err)
	}
	defer rows.Close()

	var lastOtherID string
	for rows.Next() {
		var friendship storage.Friendship
		var createdAt int64
		var otherID string
		if err := rows.Scan(&friendship.UserAID, &friendship.UserBID, &createdAt, &otherID); err != nil {
			return storage.FriendshipPage{}, fmt.Errorf("list friendships: %w", err)
		}
		friendship.CreatedAt = fromMillis(createdAt)
		if len(page.Friendships) == pageSize {
			page.NextPageToken = lastOtherID
			return page, nil
		}
		page.Friendships = append(page.Friendships, friendship)
		lastOtherID = otherID
	}
	if err := rows.Err(); err != nil {
		return storage.FriendshipPage{}, fmt.Errorf("list friendships: %w", err)
	}

	return page, nil
}

// CreateFriendRequest inserts one directed friend request.
func (s *Store) CreateFriendRequest(ctx context.Context, request storage.FriendRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(request.ID) == "" {
		return fmt.Errorf("request id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO friend_requests (id, sender_id, receiver_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		request.ID,
		request.SenderID,
		request.ReceiverID,
		int(request.Status),
		toMillis(request.CreatedAt),
		toMillis(request.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create friend request: %w", err)
	}
	return nil
}

// GetFriendRequest returns one friend request by id.
func (s *Store) GetFriendRequest(ctx context.Context, requestID string) (storage.FriendRequest, error) {
	if err := ctx.Err(); err != nil {
		return storage.FriendRequest{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.FriendRequest{}, fmt.Errorf("storage is not configured")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return storage.FriendRequest{}, fmt.Errorf("request id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, sender_id, receiver_id, status, created_at, updated_at
		 FROM friend_requests
		 WHERE id = ?`,
		requestID,
	)
	return scanFriendRequest(row)
}

// GetPendingRequestBetween returns the pending request from sender to receiver.
func (s *Store) GetPendingRequestBetween(ctx context.Context, senderID string, receiverID string) (storage.FriendRequest, error) {
	if err := ctx.Err(); err != nil {
		return storage.FriendRequest{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.FriendRequest{}, fmt.Errorf("storage is not configured")
	}
	senderID = strings.TrimSpace(senderID)
	receiverID = strings.TrimSpace(receiverID)
	if senderID == "" || receiverID == "" {
		return storage.FriendRequest{}, fmt.Errorf("user ids are required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, sender_id, receiver_id, status, created_at, updated_at
		 FROM friend_requests
		 WHERE sender_id = ? AND receiver_id = ? AND status = ?
		 LIMIT 1`,
		senderID,
		receiverID,
		int(storage.RequestStatusPending),
	)
	return scanFriendRequest(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFriendRequest(row rowScanner) (storage.FriendRequest, error) {
	var request storage.FriendRequest
	var status int
	var createdAt, updatedAt int64
	err := row.Scan(
		&request.ID,
		&request.SenderID,
		&request.ReceiverID,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.FriendRequest{}, storage.ErrNotFound
		}
		return storage.FriendRequest{}, fmt.Errorf("scan friend request: %w", err)
	}
	request.Status = storage.RequestStatus(status)
	request.CreatedAt = fromMillis(createdAt)
	request.UpdatedAt = fromMillis(updatedAt)
	return request, nil
}

// UpdateFriendRequestStatus changes the status on one friend request.
func (s *Store) UpdateFriendRequestStatus(ctx context.Context, requestID string, status storage.RequestStatus, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return fmt.Errorf("request id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE friend_requests SET status = ?, updated_at = ?
		 WHERE id = ?`,
		int(status),
		toMillis(updatedAt),
		requestID,
	)
	if err != nil {
		return fmt.Errorf("update friend request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update friend request: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteFriendRequest removes one friend request.
func (s *Store) DeleteFriendRequest(ctx context.Context, requestID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return fmt.Errorf("request id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM friend_requests WHERE id = ?`,
		requestID,
	)
	if err != nil {
		return fmt.Errorf("delete friend request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete friend request: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListPendingRequestsByReceiver returns one page of pending requests ordered by id.
func (s *Store) ListPendingRequestsByReceiver(ctx context.Context, receiverID string, pageSize int, pageToken string) (storage.FriendRequestPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.FriendRequestPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.FriendRequestPage{}, fmt.Errorf("storage is not configured")
	}
	receiverID = strings.TrimSpace(receiverID)
	if receiverID == "" {
		return storage.FriendRequestPage{}, fmt.Errorf("receiver id is required")
	}
	if pageSize <= 0 {
		return storage.FriendRequestPage{}, fmt.Errorf("page size must be greater than zero")
	}

	page := storage.FriendRequestPage{
		Requests: make([]storage.FriendRequest, 0, pageSize),
	}
	pageToken = strings.TrimSpace(pageToken)

	query := `SELECT id, sender_id, receiver_id, status, created_at, updated_at
		 FROM friend_requests
		 WHERE receiver_id = ? AND status = ?`
	args := []any{receiverID, int(storage.RequestStatusPending)}
	if pageToken != "" {
		query += ` AND id > ?`
		args = append(args, pageToken)
	}
	query += ` ORDER BY id ASC LIMIT ?`
	args = append(args, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return storage.FriendRequestPage{}, fmt.Errorf("list friend requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		request, err := scanFriendRequest(rows)
		if err != nil {
			return storage.FriendRequestPage{}, fmt.Errorf("list friend requests: %w", err)
		}
		page.Requests = append(page.Requests, request)
	}
	if err := rows.Err(); err != nil {
		return storage.FriendRequestPage{}, fmt.Errorf("list friend requests: %w", err)
	}
	if len(page.Requests) > pageSize {
		page.NextPageToken = page.Requests[pageSize-1].ID
		page.Requests = page.Requests[:pageSize]
	}

	return page, nil
}

// PutBlock upserts one directed block edge.
func (s *Store) PutBlock(ctx context.Context, block storage.Block) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	ownerUserID := strings.TrimSpace(block.OwnerUserID)
	blockedUserID := strings.TrimSpace(block.BlockedUserID)
	if ownerUserID == "" || blockedUserID == "" {
		return fmt.Errorf("user ids are required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO blocks (owner_user_id, blocked_user_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(owner_user_id, blocked_user_id) DO NOTHING`,
		ownerUserID,
		blockedUserID,
		toMillis(block.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put block: %w", err)
	}
	return nil
}

// GetBlock returns one directed block edge.
func (s *Store) GetBlock(ctx context.Context, ownerUserID string, blockedUserID string) (storage.Block, error) {
	if err := ctx.Err(); err != nil {
		return storage.Block{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Block{}, fmt.Errorf("storage is not configured")
	}
	ownerUserID = strings.TrimSpace(ownerUserID)
	blockedUserID = strings.TrimSpace(blockedUserID)
	if ownerUserID == "" || blockedUserID == "" {
		return storage.Block{}, fmt.Errorf("user ids are required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT owner_user_id, blocked_user_id, created_at
		 FROM blocks
		 WHERE owner_user_id = ? AND blocked_user_id = ?`,
		ownerUserID,
		blockedUserID,
	)
	var block storage.Block
	var createdAt int64
	err := row.Scan(&block.OwnerUserID, &block.BlockedUserID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Block{}, storage.ErrNotFound
		}
		return storage.Block{}, fmt.Errorf("get block: %w", err)
	}
	block.CreatedAt = fromMillis(createdAt)
	return block, nil
}

// DeleteBlock removes one directed block edge.
func (s *Store) DeleteBlock(ctx context.Context, ownerUserID string, blockedUserID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	ownerUserID = strings.TrimSpace(ownerUserID)
	blockedUserID = strings.TrimSpace(blockedUserID)
	if ownerUserID == "" || blockedUserID == "" {
		return fmt.Errorf("user ids are required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM blocks
		 WHERE owner_user_id = ? AND blocked_user_id = ?`,
		ownerUserID,
		blockedUserID,
	)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

var _ storage.FriendshipStore = (*Store)(nil)
var _ storage.FriendRequestStore = (*Store)(nil)
var _ storage.BlockStore = (*Store)(nil)
