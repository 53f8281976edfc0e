// Package storage defines persistence contracts for spaces service state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/campuscommons/campuscommons/internal/space"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
var ErrAlreadyExists = errors.New("record already exists")

// SpacePage stores a page of spaces.
type SpacePage struct {
	Spaces        []space.Space
	NextPageToken string
}

// MembershipPage stores a page of memberships.
type MembershipPage struct {
	Memberships   []space.Membership
	NextPageToken string
}

// AuditEvent records one moderation command outcome.
type AuditEvent struct {
	ID           string
	SpaceID      string
	ActorUserID  string
	TargetUserID string
	Command      string
	// Outcome is "OK" for applied commands or the rejection code otherwise.
	Outcome   string
	CreatedAt time.Time
}

// AuditPage stores a page of audit events.
type AuditPage struct {
	Events        []AuditEvent
	NextPageToken string
}

// SpaceStore persists space metadata.
type SpaceStore interface {
	PutSpace(ctx context.Context, record space.Space) error
	GetSpace(ctx context.Context, spaceID string) (space.Space, error)
	ListSpaces(ctx context.Context, pageSize int, pageToken string) (SpacePage, error)
}

// MembershipStore persists membership records.
//
// This is a dumb ledger: it enforces pair uniqueness and nothing else.
// Role-hierarchy rules live in the moderation command set, which is the only
// caller allowed to mutate records. In particular DeleteMembership will
// happily drop an owner row; the MODERATION_OWNER_REMOVAL guard sits in that
// layer, not here.
type MembershipStore interface {
	CreateMembership(ctx context.Context, record space.Membership) error
	GetMembership(ctx context.Context, spaceID string, userID string) (space.Membership, error)
	UpdateMembershipRole(ctx context.Context, spaceID string, userID string, role space.Role, updatedAt time.Time) error
	UpdateMembershipStatus(ctx context.Context, spaceID string, userID string, status space.Status, updatedAt time.Time) error
	DeleteMembership(ctx context.Context, spaceID string, userID string) error
	ListMembershipsBySpace(ctx context.Context, spaceID string, pageSize int, pageToken string) (MembershipPage, error)
	ListMembershipsByUser(ctx context.Context, userID string, pageSize int, pageToken string) (MembershipPage, error)
	// SwapOwnership atomically moves the owner seat from one member to
	// another: the current owner becomes admin and the target becomes owner
	// in a single transaction, so no reader ever observes zero or two owners.
	SwapOwnership(ctx context.Context, spaceID string, fromUserID string, toUserID string, updatedAt time.Time) error
}

// AuditStore persists moderation audit events.
type AuditStore interface {
	AppendAuditEvent(ctx context.Context, event AuditEvent) error
	ListAuditEvents(ctx context.Context, spaceID string, pageSize int, pageToken string) (AuditPage, error)
}
