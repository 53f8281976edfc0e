// Package moderation is the exclusive mutation chokepoint for memberships.
//
// Every role or status change flows through one of its commands. Commands
// validate against the role hierarchy first and commit only when every
// precondition holds, so a rejected command leaves no partial mutation.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campuscommons/campuscommons/internal/audit"
	apperrors "github.com/campuscommons/campuscommons/internal/platform/errors"
	"github.com/campuscommons/campuscommons/internal/platform/id"
	"github.com/campuscommons/campuscommons/internal/services/spaces/storage"
	"github.com/campuscommons/campuscommons/internal/space"
)

// Stores groups the persistence dependencies of the command set.
type Stores struct {
	Spaces      storage.SpaceStore
	Memberships storage.MembershipStore
}

// Prompt describes a destructive command awaiting confirmation.
type Prompt struct {
	Command      space.ModerationCommand
	SpaceID      string
	ActorUserID  string
	TargetUserID string
}

// Confirmer approves destructive commands before they commit.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (bool, error)
}

// Notification describes a command that validated and committed.
type Notification struct {
	Command      space.ModerationCommand
	SpaceID      string
	ActorUserID  string
	TargetUserID string
	// Role is the target's resulting role for role-changing commands.
	Role space.Role
}

// Notifier is told about applied commands.
type Notifier interface {
	CommandApplied(ctx context.Context, notification Notification)
}

// Service applies moderation commands against the membership store.
type Service struct {
	stores      Stores
	audit       *audit.Emitter
	confirmer   Confirmer
	notifier    Notifier
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewService creates a moderation service with default dependencies.
func NewService(stores Stores, auditEmitter *audit.Emitter) *Service {
	return &Service{
		stores:      stores,
		audit:       auditEmitter,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// SetConfirmer installs an optional confirmation hook for destructive commands.
func (s *Service) SetConfirmer(confirmer Confirmer) {
	s.confirmer = confirmer
}

// SetNotifier installs an optional hook told about applied commands.
func (s *Service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// CreateSpaceInput carries the fields needed to found a space.
type CreateSpaceInput struct {
	Name        string
	Kind        space.Kind
	Privacy     space.Privacy
	OwnerUserID string
}

// CreateSpace creates a space together with its founding owner membership.
func (s *Service) CreateSpace(ctx context.Context, input CreateSpaceInput) (space.Space, space.Membership, error) {
	if err := ctx.Err(); err != nil {
		return space.Space{}, space.Membership{}, err
	}
	if s.stores.Spaces == nil || s.stores.Memberships == nil {
		return space.Space{}, space.Membership{}, fmt.Errorf("stores are not configured")
	}
	ownerUserID := strings.TrimSpace(input.OwnerUserID)
	if ownerUserID == "" {
		return space.Space{}, space.Membership{}, space.ErrEmptyUserID
	}

	record, err := space.CreateSpace(space.CreateSpaceInput{
		Name:    input.Name,
		Kind:    input.Kind,
		Privacy: input.Privacy,
	}, s.clock, s.idGenerator)
	if err != nil {
		return space.Space{}, space.Membership{}, err
	}
	membership, err := space.CreateMembership(space.CreateMembershipInput{
		SpaceID: record.ID,
		UserID:  ownerUserID,
		Role:    space.RoleOwner,
		Status:  space.StatusActive,
	}, s.clock, s.idGenerator)
	if err != nil {
		return space.Space{}, space.Membership{}, err
	}

	if err := s.stores.Spaces.PutSpace(ctx, record); err != nil {
		return space.Space{}, space.Membership{}, fmt.Errorf("persist space: %w", err)
	}
	if err := s.stores.Memberships.CreateMembership(ctx, membership); err != nil {
		return space.Space{}, space.Membership{}, fmt.Errorf("persist owner membership: %w", err)
	}
	return record, membership, nil
}

// AddMemberInput carries the fields needed to seat a member.
type AddMemberInput struct {
	SpaceID     string
	ActorUserID string
	UserID      string
	Role        space.Role
	Status      space.Status
}

// AddMember seats a new member in a space.
//
// The actor needs the admin threshold, except that any user may seat
// themselves in a public group. The owner seat is never grantable here.
func (s *Service) AddMember(ctx context.Context, input AddMemberInput) (space.Membership, error) {
	if err := ctx.Err(); err != nil {
		return space.Membership{}, err
	}
	record, err := s.loadSpace(ctx, input.SpaceID)
	if err != nil {
		return space.Membership{}, err
	}
	actorUserID := strings.TrimSpace(input.ActorUserID)
	targetUserID := strings.TrimSpace(input.UserID)
	if actorUserID == "" || targetUserID == "" {
		return space.Membership{}, space.ErrEmptyUserID
	}

	if input.Role == space.RoleOwner {
		err := apperrors.WithMetadata(
			apperrors.CodeModerationInvalidTransition,
			"the owner seat is granted only at creation or by ownership transfer",
			map[string]string{"FromRole": space.RoleLabel(space.RoleUnspecified), "ToRole": space.RoleLabel(space.RoleOwner)},
		)
		s.recordOutcome(ctx, "ADD", record.ID, actorUserID, targetUserID, err)
		return space.Membership{}, err
	}
	if input.Role != space.RoleUnspecified && !space.RoleValidForKind(record.Kind, input.Role) {
		s.recordOutcome(ctx, "ADD", record.ID, actorUserID, targetUserID, space.ErrInvalidRole)
		return space.Membership{}, space.ErrInvalidRole
	}

	selfJoin := actorUserID == targetUserID &&
		record.Kind == space.KindGroup &&
		record.Privacy == space.PrivacyPublic
	if selfJoin {
		if input.Role != space.RoleUnspecified && input.Role != space.RoleMember {
			s.recordOutcome(ctx, "ADD", record.ID, actorUserID, targetUserID, space.ErrInvalidRole)
			return space.Membership{}, space.ErrInvalidRole
		}
	} else {
		actor, err := s.loadMembership(ctx, record.ID, actorUserID)
		if err != nil {
			return space.Membership{}, err
		}
		if !space.MeetsThreshold(actor.Role, space.RoleAdmin) {
			err := apperrors.WithMetadata(
				apperrors.CodeModerationPermissionDenied,
				"actor rank does not allow seating members",
				map[string]string{"Command": "ADD"},
			)
			s.recordOutcome(ctx, "ADD", record.ID, actorUserID, targetUserID, err)
			return space.Membership{}, err
		}
	}

	membership, err := space.CreateMembership(space.CreateMembershipInput{
		SpaceID: record.ID,
		UserID:  targetUserID,
		Role:    input.Role,
		Status:  input.Status,
	}, s.clock, s.idGenerator)
	if err != nil {
		return space.Membership{}, err
	}
	if err := s.stores.Memberships.CreateMembership(ctx, membership); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			err := apperrors.WithMetadata(
				apperrors.CodeMembershipDuplicate,
				"user already has a membership in this space",
				map[string]string{"SpaceID": record.ID, "UserID": targetUserID},
			)
			s.recordOutcome(ctx, "ADD", record.ID, actorUserID, targetUserID, err)
			return space.Membership{}, err
		}
		return space.Membership{}, fmt.Errorf("persist membership: %w", err)
	}

	s.recordOutcome(ctx, "ADD", record.ID, actorUserID, targetUserID, nil)
	return membership, nil
}

func (s *Service) loadSpace(ctx context.Context, spaceID string) (space.Space, error) {
	if s.stores.Spaces == nil {
		return space.Space{}, fmt.Errorf("space store is not configured")
	}
	spaceID = strings.TrimSpace(spaceID)
	if spaceID == "" {
		return space.Space{}, space.ErrEmptySpaceID
	}
	record, err := s.stores.Spaces.GetSpace(ctx, spaceID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return space.Space{}, apperrors.WithMetadata(
				apperrors.CodeSpaceNotFound,
				"space not found",
				map[string]string{"SpaceID": spaceID},
			)
		}
		return space.Space{}, fmt.Errorf("get space: %w", err)
	}
	if record.IsDeleted() {
		return space.Space{}, apperrors.WithMetadata(
			apperrors.CodeSpaceDeleted,
			"space has been deleted",
			map[string]string{"SpaceID": spaceID},
		)
	}
	return record, nil
}

func (s *Service) loadMembership(ctx context.Context, spaceID string, userID string) (space.Membership, error) {
	if s.stores.Memberships == nil {
		return space.Membership{}, fmt.Errorf("membership store is not configured")
	}
	membership, err := s.stores.Memberships.GetMembership(ctx, spaceID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return space.Membership{}, apperrors.WithMetadata(
				apperrors.CodeMembershipNotFound,
				"membership not found",
				map[string]string{"SpaceID": spaceID, "UserID": userID},
			)
		}
		return space.Membership{}, fmt.Errorf("get membership: %w", err)
	}
	return membership, nil
}

// confirm consults the optional confirmer. A nil confirmer proceeds.
func (s *Service) confirm(ctx context.Context, prompt Prompt) error {
	if s.confirmer == nil {
		return nil
	}
	approved, err := s.confirmer.Confirm(ctx, prompt)
	if err != nil {
		return fmt.Errorf("confirm %s: %w", space.ModerationCommandLabel(prompt.Command), err)
	}
	if !approved {
		return apperrors.WithMetadata(
			apperrors.CodeModerationCancelled,
			"command was cancelled before commit",
			map[string]string{"Command": space.ModerationCommandLabel(prompt.Command)},
		)
	}
	return nil
}

// recordOutcome emits one audit event. A non-nil commandErr with a structured
// code records the rejection; plain errors are not audited.
func (s *Service) recordOutcome(ctx context.Context, command string, spaceID, actorUserID, targetUserID string, commandErr error) {
	if s.audit == nil {
		return
	}
	outcome := audit.OutcomeOK
	if commandErr != nil {
		code := apperrors.GetCode(commandErr)
		if code == apperrors.CodeUnknown {
			return
		}
		outcome = string(code)
	}
	_ = s.audit.Emit(ctx, storage.AuditEvent{
		SpaceID:      spaceID,
		ActorUserID:  actorUserID,
		TargetUserID: targetUserID,
		Command:      command,
		Outcome:      outcome,
	})
}

func (s *Service) notify(ctx context.Context, notification Notification) {
	if s.notifier == nil {
		return
	}
	s.notifier.CommandApplied(ctx, notification)
}
