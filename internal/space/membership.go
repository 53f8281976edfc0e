package space

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/campuscommons/campuscommons/internal/platform/errors"
	"github.com/campuscommons/campuscommons/internal/platform/id"
)

// Role describes a member's rank inside a space.
type Role int

// Status describes a membership's visibility/participation state.
type Status int

const (
	// RoleUnspecified represents an invalid role value.
	RoleUnspecified Role = iota
	// RoleMember indicates a plain member.
	RoleMember
	// RoleModerator indicates a moderator. Rooms never assign this role.
	RoleModerator
	// RoleAdmin indicates an administrator.
	RoleAdmin
	// RoleOwner indicates the space owner. Exactly one per space.
	RoleOwner
)

const (
	// StatusUnspecified represents a missing status value.
	// Readers treat it as StatusActive (historical records omit status).
	StatusUnspecified Status = iota
	// StatusActive indicates a live membership (rooms call this "open").
	StatusActive
	// StatusPending indicates a group join request awaiting approval.
	StatusPending
	// StatusBlocked indicates a banned group member.
	StatusBlocked
	// StatusHidden indicates a room the member tucked out of their lists.
	// The role is untouched; this is a personal visibility toggle.
	StatusHidden
)

var (
	// ErrEmptySpaceID indicates a missing space ID.
	ErrEmptySpaceID = apperrors.New(apperrors.CodeMembershipEmptySpaceID, "space id is required")
	// ErrEmptyUserID indicates a missing user ID.
	ErrEmptyUserID = apperrors.New(apperrors.CodeMembershipEmptyUserID, "user id is required")
	// ErrInvalidRole indicates a missing or invalid role value.
	ErrInvalidRole = apperrors.New(apperrors.CodeMembershipInvalidRole, "membership role is invalid")
	// ErrInvalidStatus indicates an invalid status value.
	ErrInvalidStatus = apperrors.New(apperrors.CodeMembershipInvalidStatus, "membership status is invalid")
)

// Membership is the per-user-per-space record of role and status.
// The (SpaceID, UserID) pair is unique within the store.
type Membership struct {
	ID      string
	SpaceID string
	UserID  string
	Role    Role
	Status  Status
	// JoinedAt is the timestamp when the membership was created.
	JoinedAt time.Time
	// UpdatedAt is the timestamp when role or status last changed.
	UpdatedAt time.Time
}

// CreateMembershipInput describes the data needed to create a membership.
type CreateMembershipInput struct {
	SpaceID string
	UserID  string
	Role    Role
	Status  Status
}

// CreateMembership creates a membership record with a generated ID and timestamps.
// Role defaults to member and status to active when unspecified.
func CreateMembership(input CreateMembershipInput, now func() time.Time, idGenerator func() (string, error)) (Membership, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateMembershipInput(input)
	if err != nil {
		return Membership{}, err
	}

	membershipID, err := idGenerator()
	if err != nil {
		return Membership{}, fmt.Errorf("generate membership id: %w", err)
	}

	joinedAt := now().UTC()
	return Membership{
		ID:        membershipID,
		SpaceID:   normalized.SpaceID,
		UserID:    normalized.UserID,
		Role:      normalized.Role,
		Status:    normalized.Status,
		JoinedAt:  joinedAt,
		UpdatedAt: joinedAt,
	}, nil
}

// NormalizeCreateMembershipInput trims and validates membership input.
func NormalizeCreateMembershipInput(input CreateMembershipInput) (CreateMembershipInput, error) {
	input.SpaceID = strings.TrimSpace(input.SpaceID)
	if input.SpaceID == "" {
		return CreateMembershipInput{}, ErrEmptySpaceID
	}
	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return CreateMembershipInput{}, ErrEmptyUserID
	}
	if input.Role == RoleUnspecified {
		input.Role = RoleMember
	}
	switch input.Role {
	case RoleMember, RoleModerator, RoleAdmin, RoleOwner:
	default:
		return CreateMembershipInput{}, ErrInvalidRole
	}
	if input.Status == StatusUnspecified {
		input.Status = StatusActive
	}
	switch input.Status {
	case StatusActive, StatusPending, StatusBlocked, StatusHidden:
	default:
		return CreateMembershipInput{}, ErrInvalidStatus
	}
	return input, nil
}

// RoleValidForKind reports whether a role may be assigned in a space kind.
// Rooms use the collapsed owner/admin/member model.
func RoleValidForKind(kind Kind, role Role) bool {
	switch role {
	case RoleMember, RoleAdmin, RoleOwner:
		return kind == KindGroup || kind == KindRoom
	case RoleModerator:
		return kind == KindGroup
	default:
		return false
	}
}

// RoleLabel returns a stable label for a role.
func RoleLabel(role Role) string {
	switch role {
	case RoleMember:
		return "MEMBER"
	case RoleModerator:
		return "MODERATOR"
	case RoleAdmin:
		return "ADMIN"
	case RoleOwner:
		return "OWNER"
	default:
		return "UNSPECIFIED"
	}
}

// RoleFromLabel converts a role label to a Role value.
func RoleFromLabel(label string) Role {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "MEMBER":
		return RoleMember
	case "MODERATOR":
		return RoleModerator
	case "ADMIN":
		return RoleAdmin
	case "OWNER":
		return RoleOwner
	default:
		return RoleUnspecified
	}
}

// StatusLabel returns a stable label for a status.
func StatusLabel(status Status) string {
	switch status {
	case StatusActive:
		return "ACTIVE"
	case StatusPending:
		return "PENDING"
	case StatusBlocked:
		return "BLOCKED"
	case StatusHidden:
		return "HIDDEN"
	default:
		return "UNSPECIFIED"
	}
}

// StatusFromLabel converts a status label to a Status value.
func StatusFromLabel(label string) Status {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "ACTIVE":
		return StatusActive
	case "PENDING":
		return StatusPending
	case "BLOCKED":
		return StatusBlocked
	case "HIDDEN":
		return StatusHidden
	default:
		return StatusUnspecified
	}
}
