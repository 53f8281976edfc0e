// Package sqlite provides a SQLite-backed spaces storage implementation.
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
	"github.com/campuscommons/campuscommons/internal/services/spaces/storage"
	"github.com/campuscommons/campuscommons/internal/services/spaces/storage/sqlite/migrations"
	"github.com/campuscommons/campuscommons/internal/space"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists spaces state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite spaces store and applies embedded migrations.
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

// PutSpace upserts one space record.
func (s *Store) PutSpace(ctx context.Context, record space.Space) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	spaceID := strings.TrimSpace(record.ID)
	if spaceID == "" {
		return fmt.Errorf("space id is required")
	}

	var deletedAt any
	if record.DeletedAt != nil {
		deletedAt = toMillis(*record.DeletedAt)
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO spaces (id, name, kind, privacy, created_at, updated_at, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   kind = excluded.kind,
		   privacy = excluded.privacy,
		   updated_at = excluded.updated_at,
		   deleted_at = excluded.deleted_at`,
		spaceID,
		record.Name,
		int(record.Kind),
		int(record.Privacy),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
		deletedAt,
	)
	if err != nil {
		return fmt.Errorf("put space: %w", err)
	}
	return nil
}

// GetSpace returns one space record by id.
func (s *Store) GetSpace(ctx context.Context, spaceID string) (space.Space, error) {
	if err := ctx.Err(); err != nil {
		return space.Space{}, err
	}
	if s == nil || s.sqlDB == nil {
		return space.Space{}, fmt.Errorf("storage is not configured")
	}
	spaceID = strings.TrimSpace(spaceID)
	if spaceID == "" {
		return space.Space{}, fmt.Errorf("space id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, kind, privacy, created_at, updated_at, deleted_at
		 FROM spaces
		 WHERE id = ?`,
		spaceID,
	)
	var record space.Space
	var kind, privacy int
	var createdAt, updatedAt int64
	var deletedAt sql.NullInt64
	err := row.Scan(
		&record.ID,
		&record.Name,
		&kind,
		&privacy,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return space.Space{}, storage.ErrNotFound
		}
		return space.Space{}, fmt.Errorf("get space: %w", err)
	}
	record.Kind = space.Kind(kind)
	record.Privacy = space.Privacy(privacy)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	if deletedAt.Valid {
		value := fromMillis(deletedAt.Int64)
		record.DeletedAt = &value
	}
	return record, nil
}

// ListSpaces returns one page of spaces ordered by id.
func (s *Store) ListSpaces(ctx context.Context, pageSize int, pageToken string) (storage.SpacePage, error) {
	if err := ctx.Err(); err != nil {
		return storage.SpacePage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.SpacePage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.SpacePage{}, fmt.Errorf("page size must be greater than zero")
	}

	page := storage.SpacePage{
		Spaces: make([]space.Space, 0, pageSize),
	}
	pageToken = strings.TrimSpace(pageToken)

	var (
		rows *sql.Rows
		err  error
	)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, name, kind, privacy, created_at, updated_at, deleted_at
			 FROM spaces
			 ORDER BY id ASC
			 LIMIT ?`,
			pageSize+1,
		)
	} else {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, name, kind, privacy, created_at, updated_at, deleted_at
			 FROM spaces
			 WHERE id > ?
			 ORDER BY id ASC
			 LIMIT ?`,
			pageToken,
			pageSize+1,
		)
	}
	if err != nil {
		return storage.SpacePage{}, fmt.Errorf("list spaces: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var record space.Space
		var kind, privacy int
		var createdAt, updatedAt int64
		var deletedAt sql.NullInt64
		if err := rows.Scan(
			&record.ID,
			&record.Name,
			&kind,
			&privacy,
			&createdAt,
			&updatedAt,
			&deletedAt,
		); err != nil {
			return storage.SpacePage{}, fmt.Errorf("list spaces: %w", err)
		}
		record.Kind = space.Kind(kind)
		record.Privacy = space.Privacy(privacy)
		record.CreatedAt = fromMillis(createdAt)
		record.UpdatedAt = fromMillis(updatedAt)
		if deletedAt.Valid {
			value := fromMillis(deletedAt.Int64)
			record.DeletedAt = &value
		}
		page.Spaces = append(page.Spaces, record)
	}
	if err := rows.Err(); err != nil {
		return storage.SpacePage{}, fmt.Errorf("list spaces: %w", err)
	}
	if len(page.Spaces) > pageSize {
		page.NextPageToken = page.Spaces[pageSize-1].ID
		page.Spaces = page.Spaces[:pageSize]
	}

	return page, nil
}

// CreateMembership inserts one membership record.
func (s *Store) CreateMembership(ctx context.Context, record space.Membership) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	spaceID := strings.TrimSpace(record.SpaceID)
	userID := strings.TrimSpace(record.UserID)
	if spaceID == "" {
		return fmt.Errorf("space id is required")
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO memberships (id, space_id, user_id, role, status, joined_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		spaceID,
		userID,
		int(record.Role),
		int(record.Status),
		toMillis(record.JoinedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create membership: %w", err)
	}
	return nil
}

// GetMembership returns one membership by space and user id.
func (s *Store) GetMembership(ctx context.Context, spaceID string, userID string) (space.Membership, error) {
	if err := ctx.Err(); err != nil {
		return space.Membership{}, err
	}
	if s == nil || s.sqlDB == nil {
		return space.Membership{}, fmt.Errorf("storage is not configured")
	}
	spaceID = strings.TrimSpace(spaceID)
	userID = strings.TrimSpace(userID)
	if spaceID == "" {
		return space.Membership{}, fmt.Errorf("space id is required")
	}
	if userID == "" {
		return space.Membership{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, space_id, user_id, role, status, joined_at, updated_at
		 FROM memberships
		 WHERE space_id = ? AND user_id = ?`,
		spaceID,
		userID,
	)
	return scanMembership(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMembership(row rowScanner) (space.Membership, error) {
	var record space.Membership
	var role, status int
	var joinedAt, updatedAt int64
	err := row.Scan(
		&record.ID,
		&record.SpaceID,
		&record.UserID,
		&role,
		&status,
		&joinedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return space.Membership{}, storage.ErrNotFound
		}
		return space.Membership{}, fmt.Errorf("scan membership: %w", err)
	}
	record.Role = space.Role(role)
	record.Status = space.Status(status)
	record.JoinedAt = fromMillis(joinedAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// UpdateMembershipRole changes the role on one membership.
func (s *Store) UpdateMembershipRole(ctx context.Context, spaceID string, userID string, role space.Role, updatedAt time.Time) error {
	return s.updateMembershipColumn(ctx, spaceID, userID, "role", int(role), updatedAt)
}

// UpdateMembershipStatus changes the status on one membership.
func (s *Store) UpdateMembershipStatus(ctx context.Context, spaceID string, userID string, status space.Status, updatedAt time.Time) error {
	return s.updateMembershipColumn(ctx, spaceID, userID, "status", int(status), updatedAt)
}

func (s *Store) updateMembershipColumn(ctx context.Context, spaceID string, userID string, column string, value int, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	spaceID = strings.TrimSpace(spaceID)
	userID = strings.TrimSpace(userID)
	if spaceID == "" {
		return fmt.Errorf("space id is required")
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE memberships SET `+column+` = ?, updated_at = ?
		 WHERE space_id = ? AND user_id = ?`,
		value,
		toMillis(updatedAt),
		spaceID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("update membership %s: %w", column, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update membership %s: %w", column, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteMembership removes one membership record.
func (s *Store) DeleteMembership(ctx context.Context, spaceID string, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	spaceID = strings.TrimSpace(spaceID)
	userID = strings.TrimSpace(userID)
	if spaceID == "" {
		return fmt.Errorf("space id is required")
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM memberships
		 WHERE space_id = ? AND user_id = ?`,
		spaceID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListMembershipsBySpace returns one page of memberships in a space ordered by user id.
func (s *Store) ListMembershipsBySpace(ctx context.Context, spaceID string, pageSize int, pageToken string) (storage.MembershipPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.MembershipPage{}, err
	}
	spaceID = strings.TrimSpace(spaceID)
	if spaceID == "" {
		return storage.MembershipPage{}, fmt.Errorf("space id is required")
	}
	return s.listMemberships(ctx, "space_id", spaceID, "user_id", pageSize, pageToken)
}

// ListMembershipsByUser returns one page of a user's memberships ordered by space id.
func (s *Store) ListMembershipsByUser(ctx context.Context, userID string, pageSize int, pageToken string) (storage.MembershipPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.MembershipPage{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.MembershipPage{}, fmt.Errorf("user id is required")
	}
	return s.listMemberships(ctx, "user_id", userID, "space_id", pageSize, pageToken)
}

func (s *Store) listMemberships(ctx context.Context, filterColumn string, filterValue string, orderColumn string, pageSize int, pageToken string) (storage.MembershipPage, error) {
	if s == nil || s.sqlDB == nil {
		return storage.MembershipPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.MembershipPage{}, fmt.Errorf("page size must be greater than zero")
	}

	page := storage.MembershipPage{
		Memberships: make([]space.Membership, 0, pageSize),
	}
	pageToken = strings.TrimSpace(pageToken)

	query := `SELECT id, space_id, user_id, role, status, joined_at, updated_at
		 FROM memberships
		 WHERE ` + filterColumn + ` = ?`
	args := []any{filterValue}
	if pageToken != "" {
		query += ` AND ` + orderColumn + ` > ?`
		args = append(args, pageToken)
	}
	query += ` ORDER BY ` + orderColumn + ` ASC LIMIT ?`
	args = append(args, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return storage.MembershipPage{}, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanMembership(rows)
		if err != nil {
			return storage.MembershipPage{}, fmt.Errorf("list memberships: %w", err)
		}
		page.Memberships = append(page.Memberships, record)
	}
	if err := rows.Err(); err != nil {
		return storage.MembershipPage{}, fmt.Errorf("list memberships: %w", err)
	}
	if len(page.Memberships) > pageSize {
		last := page.Memberships[pageSize-1]
		if orderColumn == "user_id" {
			page.NextPageToken = last.UserID
		} else {
			page.NextPageToken = last.SpaceID
		}
		page.Memberships = page.Memberships[:pageSize]
	}

	return page, nil
}

// SwapOwnership moves the owner role between two members in one transaction.
func (s *Store) SwapOwnership(ctx context.Context, spaceID string, fromUserID string, toUserID string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	spaceID = strings.TrimSpace(spaceID)
	fromUserID = strings.TrimSpace(fromUserID)
	toUserID = strings.TrimSpace(toUserID)
	if spaceID == "" {
		return fmt.Errorf("space id is required")
	}
	if fromUserID == "" || toUserID == "" {
		return fmt.Errorf("user ids are required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ownership swap: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	millis := toMillis(updatedAt)
	result, err := tx.ExecContext(
		ctx,
		`UPDATE memberships SET role = ?, updated_at = ?
		 WHERE space_id = ? AND user_id = ? AND role = ?`,
		int(space.RoleAdmin),
		millis,
		spaceID,
		fromUserID,
		int(space.RoleOwner),
	)
	if err != nil {
		return fmt.Errorf("demote outgoing owner: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("demote outgoing owner: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	result, err = tx.ExecContext(
		ctx,
		`UPDATE memberships SET role = ?, updated_at = ?
		 WHERE space_id = ? AND user_id = ?`,
		int(space.RoleOwner),
		millis,
		spaceID,
		toUserID,
	)
	if err != nil {
		return fmt.Errorf("promote incoming owner: %w", err)
	}
	affected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("promote incoming owner: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ownership swap: %w", err)
	}
	return nil
}

// AppendAuditEvent records one moderation outcome.
func (s *Store) AppendAuditEvent(ctx context.Context, event storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(event.ID) == "" {
		return fmt.Errorf("event id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO audit_events (id, space_id, actor_user_id, target_user_id, command, outcome, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.SpaceID,
		event.ActorUserID,
		event.TargetUserID,
		event.Command,
		event.Outcome,
		toMillis(event.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns one page of audit events for a space ordered by id.
func (s *Store) ListAuditEvents(ctx context.Context, spaceID string, pageSize int, pageToken string) (storage.AuditPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.AuditPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AuditPage{}, fmt.Errorf("storage is not configured")
	}
	spaceID = strings.TrimSpace(spaceID)
	if spaceID == "" {
		return storage.AuditPage{}, fmt.Errorf("space id is required")
	}
	if pageSize <= 0 {
		return storage.AuditPage{}, fmt.Errorf("page size must be greater than zero")
	}

	page := storage.AuditPage{
		Events: make([]storage.AuditEvent, 0, pageSize),
	}
	pageToken = strings.TrimSpace(pageToken)

	query := `SELECT id, space_id, actor_user_id, target_user_id, command, outcome, created_at
		 FROM audit_events
		 WHERE space_id = ?`
	args := []any{spaceID}
	if pageToken != "" {
		query += ` AND id > ?`
		args = append(args, pageToken)
	}
	query += ` ORDER BY id ASC LIMIT ?`
	args = append(args, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return storage.AuditPage{}, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var event storage.AuditEvent
		var createdAt int64
		if err := rows.Scan(
			&event.ID,
			&event.SpaceID,
			&event.ActorUserID,
			&event.TargetUserID,
			&event.Command,
			&event.Outcome,
			&createdAt,
		); err != nil {
			return storage.AuditPage{}, fmt.Errorf("list audit events: %w", err)
		}
		event.CreatedAt = fromMillis(createdAt)
		page.Events = append(page.Events, event)
	}
	if err := rows.Err(); err != nil {
		return storage.AuditPage{}, fmt.Errorf("list audit events: %w", err)
	}
	if len(page.Events) > pageSize {
		page.NextPageToken = page.Events[pageSize-1].ID
		page.Events = page.Events[:pageSize]
	}

	return page, nil
}

var _ storage.SpaceStore = (*Store)(nil)
var _ storage.MembershipStore = (*Store)(nil)
var _ storage.AuditStore = (*Store)(nil)
