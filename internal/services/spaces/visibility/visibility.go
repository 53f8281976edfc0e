// Package visibility partitions a user's memberships for listing surfaces.
//
// The resolver is a pure function of the membership snapshot: the same store
// state always yields the same partitions. Hiding is a personal, reversible
// toggle that never touches roles.
package visibility

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/campuscommons/campuscommons/internal/platform/errors"
	"github.com/campuscommons/campuscommons/internal/services/spaces/storage"
	"github.com/campuscommons/campuscommons/internal/space"
)

const listPageSize = 100

// Service resolves membership visibility for one user at a time.
type Service struct {
	memberships storage.MembershipStore
	clock       func() time.Time
}

// NewService creates a visibility service with default dependencies.
func NewService(memberships storage.MembershipStore) *Service {
	return &Service{memberships: memberships, clock: time.Now}
}

// effectiveStatus reads an unspecified status as active. Memberships created
// before the status column existed default on, never off.
func effectiveStatus(membership space.Membership) space.Status {
	if membership.Status == space.StatusUnspecified {
		return space.StatusActive
	}
	return membership.Status
}

func (s *Service) collect(ctx context.Context, userID string, keep space.Status) ([]space.Membership, error) {
	if s.memberships == nil {
		return nil, fmt.Errorf("membership store is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, space.ErrEmptyUserID
	}

	var matched []space.Membership
	pageToken := ""
	for {
		page, err := s.memberships.ListMembershipsByUser(ctx, userID, listPageSize, pageToken)
		if err != nil {
			return nil, fmt.Errorf("list memberships: %w", err)
		}
		for _, membership := range page.Memberships {
			if effectiveStatus(membership) == keep {
				matched = append(matched, membership)
			}
		}
		if page.NextPageToken == "" {
			return matched, nil
		}
		pageToken = page.NextPageToken
	}
}

// VisibleSpaces returns the user's active memberships.
func (s *Service) VisibleSpaces(ctx context.Context, userID string) ([]space.Membership, error) {
	return s.collect(ctx, userID, space.StatusActive)
}

// HiddenSpaces returns the memberships the user has hidden.
func (s *Service) HiddenSpaces(ctx context.Context, userID string) ([]space.Membership, error) {
	return s.collect(ctx, userID, space.StatusHidden)
}

// PendingSpaces returns the user's not-yet-approved group memberships.
func (s *Service) PendingSpaces(ctx context.Context, userID string) ([]space.Membership, error) {
	return s.collect(ctx, userID, space.StatusPending)
}

// BlockedSpaces returns the memberships where the user has been banned.
func (s *Service) BlockedSpaces(ctx context.Context, userID string) ([]space.Membership, error) {
	return s.collect(ctx, userID, space.StatusBlocked)
}

// HideSpace hides one of the user's own memberships. Hiding an already
// hidden membership is a no-op.
func (s *Service) HideSpace(ctx context.Context, userID string, spaceID string) error {
	return s.toggle(ctx, userID, spaceID, space.StatusHidden)
}

// ShowSpace reverses HideSpace. Showing a visible membership is a no-op.
func (s *Service) ShowSpace(ctx context.Context, userID string, spaceID string) error {
	return s.toggle(ctx, userID, spaceID, space.StatusActive)
}

func (s *Service) toggle(ctx context.Context, userID string, spaceID string, toStatus space.Status) error {
	if s.memberships == nil {
		return fmt.Errorf("membership store is not configured")
	}
	userID = strings.TrimSpace(userID)
	spaceID = strings.TrimSpace(spaceID)
	if userID == "" {
		return space.ErrEmptyUserID
	}
	if spaceID == "" {
		return space.ErrEmptySpaceID
	}

	membership, err := s.memberships.GetMembership(ctx, spaceID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.WithMetadata(
				apperrors.CodeMembershipNotFound,
				"membership not found",
				map[string]string{"SpaceID": spaceID, "UserID": userID},
			)
		}
		return fmt.Errorf("get membership: %w", err)
	}

	current := effectiveStatus(membership)
	if current == toStatus {
		return nil
	}
	// The toggle only moves between active and hidden. Pending and blocked
	// states belong to the moderation command set.
	if current != space.StatusActive && current != space.StatusHidden {
		return apperrors.WithMetadata(
			apperrors.CodeMembershipInvalidStatus,
			"membership status cannot be toggled",
			map[string]string{"Status": space.StatusLabel(current)},
		)
	}

	now := s.clock().UTC()
	if err := s.memberships.UpdateMembershipStatus(ctx, spaceID, userID, toStatus, now); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// IsMemberOfGroup reports whether the user holds a non-blocked membership.
// Banned users are not members for any access decision.
func (s *Service) IsMemberOfGroup(ctx context.Context, userID string, spaceID string) (bool, error) {
	if s.memberships == nil {
		return false, fmt.Errorf("membership store is not configured")
	}
	userID = strings.TrimSpace(userID)
	spaceID = strings.TrimSpace(spaceID)
	if userID == "" {
		return false, space.ErrEmptyUserID
	}
	if spaceID == "" {
		return false, space.ErrEmptySpaceID
	}

	membership, err := s.memberships.GetMembership(ctx, spaceID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get membership: %w", err)
	}
	return effectiveStatus(membership) != space.StatusBlocked, nil
}
