package moderation

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/campuscommons/campuscommons/internal/platform/errors"
	"github.com/campuscommons/campuscommons/internal/space"
)

// Command carries the actor/target addressing shared by moderation commands.
type Command struct {
	SpaceID      string
	ActorUserID  string
	TargetUserID string
}

func (c Command) normalize() (Command, error) {
	c.SpaceID = strings.TrimSpace(c.SpaceID)
	c.ActorUserID = strings.TrimSpace(c.ActorUserID)
	c.TargetUserID = strings.TrimSpace(c.TargetUserID)
	if c.SpaceID == "" {
		return Command{}, space.ErrEmptySpaceID
	}
	if c.ActorUserID == "" || c.TargetUserID == "" {
		return Command{}, space.ErrEmptyUserID
	}
	return c, nil
}

func newSelfTargetError(command space.ModerationCommand) error {
	return apperrors.WithMetadata(
		apperrors.CodeModerationSelfTarget,
		"command cannot target the acting user",
		map[string]string{"Command": space.ModerationCommandLabel(command)},
	)
}

// requireActiveActor rejects actors whose own membership is not in good
// standing. A banned admin keeps their row but loses every privilege.
func requireActiveActor(command space.ModerationCommand, actor space.Membership) error {
	switch actor.Status {
	case space.StatusActive, space.StatusUnspecified, space.StatusHidden:
		return nil
	default:
		return apperrors.WithMetadata(
			apperrors.CodeModerationPermissionDenied,
			"actor membership is not in good standing",
			map[string]string{"Command": space.ModerationCommandLabel(command)},
		)
	}
}

// Promote raises the target's role by exactly one rank.
func (s *Service) Promote(ctx context.Context, cmd Command, toRole space.Role) (space.Membership, error) {
	return s.changeRole(ctx, space.CommandPromote, cmd, toRole)
}

// Demote lowers the target's role by exactly one rank.
func (s *Service) Demote(ctx context.Context, cmd Command, toRole space.Role) (space.Membership, error) {
	return s.changeRole(ctx, space.CommandDemote, cmd, toRole)
}

func (s *Service) changeRole(ctx context.Context, command space.ModerationCommand, cmd Command, toRole space.Role) (space.Membership, error) {
	if err := ctx.Err(); err != nil {
		return space.Membership{}, err
	}
	cmd, err := cmd.normalize()
	if err != nil {
		return space.Membership{}, err
	}
	record, err := s.loadSpace(ctx, cmd.SpaceID)
	if err != nil {
		return space.Membership{}, err
	}
	if cmd.ActorUserID == cmd.TargetUserID {
		err := newSelfTargetError(command)
		s.recordOutcome(ctx, space.ModerationCommandLabel(command), record.ID, cmd.ActorUserID, cmd.TargetUserID, err)
		return space.Membership{}, err
	}
	actor, err := s.loadMembership(ctx, record.ID, cmd.ActorUserID)
	if err != nil {
		return space.Membership{}, err
	}
	target, err := s.loadMembership(ctx, record.ID, cmd.TargetUserID)
	if err != nil {
		return space.Membership{}, err
	}
	if err := requireActiveActor(command, actor); err != nil {
		s.recordOutcome(ctx, space.ModerationCommandLabel(command), record.ID, cmd.ActorUserID, cmd.TargetUserID, err)
		return space.Membership{}, err
	}
	if !space.RoleValidForKind(record.Kind, toRole) {
		s.recordOutcome(ctx, space.ModerationCommandLabel(command), record.ID, cmd.ActorUserID, cmd.TargetUserID, space.ErrInvalidRole)
		return space.Membership{}, space.ErrInvalidRole
	}

	switch command {
	case space.CommandPromote:
		err = space.ValidatePromotion(record.Kind, actor.Role, target.Role, toRole)
	case space.CommandDemote:
		err = space.ValidateDemotion(record.Kind, actor.Role, target.Role, toRole)
	default:
		return space.Membership{}, fmt.Errorf("unsupported role command %d", command)
	}
	if err != nil {
		s.recordOutcome(ctx, space.ModerationCommandLabel(command), record.ID, cmd.ActorUserID, cmd.TargetUserID, err)
		return space.Membership{}, err
	}

	now := s.clock().UTC()
	if err := s.stores.Memberships.UpdateMembershipRole(ctx, record.ID, cmd.TargetUserID, toRole, now); err != nil {
		return space.Membership{}, fmt.Errorf("update role: %w", err)
	}
	target.Role = toRole
	target.UpdatedAt = now

	s.recordOutcome(ctx, space.ModerationCommandLabel(command), record.ID, cmd.ActorUserID, cmd.TargetUserID, nil)
	s.notify(ctx, Notification{
		Command:      command,
		SpaceID:      record.ID,
		ActorUserID:  cmd.ActorUserID,
		TargetUserID: cmd.TargetUserID,
		Role:         toRole,
	})
	return target, nil
}

// TransferOwnership atomically swaps the owner seat to an admin target.
func (s *Service) TransferOwnership(ctx context.Context, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd, err := cmd.normalize()
	if err != nil {
		return err
	}
	record, err := s.loadSpace(ctx, cmd.SpaceID)
	if err != nil {
		return err
	}
	if cmd.ActorUserID == cmd.TargetUserID {
		err := newSelfTargetError(space.CommandTransferOwnership)
		s.recordOutcome(ctx, space.ModerationCommandLabel(space.CommandTransferOwnership), record.ID, cmd.ActorUserID, cmd.TargetUserID, err)
		return err
	}
	actor, err := s.loadMembership(ctx, record.ID, cmd.ActorUserID)
	if err != nil {
		return err
	}
	target, err := s.loadMembership(ctx, record.ID, cmd.TargetUserID)
	if err != nil {
		return err
	}
	if err := requireActiveActor(space.CommandTransferOwnership, actor); err != nil {
		s.recordOutcome(ctx, space.ModerationCommandLabel(space.CommandTransferOwnership), record.ID, cmd.ActorUserID, cmd.TargetUserID, err)
		return err
	}
	if err := space.ValidateOwnershipTransfer(actor.Role, target.Role); err != nil {
		s.recordOutcome(ctx, space.ModerationCommandLabel(space.CommandTransferOwnership), record.ID, cmd.ActorUserID, cmd.TargetUserID, err)
		return err
	}
	if err := s.confirm(ctx, Prompt{
		Command:      space.CommandTransferOwnership,
		SpaceID:      record.ID,
		ActorUserID:  cmd.ActorUserID,
		TargetUserID: cmd.TargetUserID,
	}); err != nil {
		s.recordOutcome(ctx, space.ModerationCommandLabel(space.CommandTransferOwnership), record.ID, cmd.ActorUserID, cmd.TargetUserID, err)
		return err
	}

	now := s.clock().UTC()
	if err := s.stores.Memberships.SwapOwnership(ctx, record.ID, cmd.ActorUserID, cmd.TargetUserID, now); err != nil {
		return fmt.Errorf("swap ownership: %w", err)
	}

	s.recordOutcome(ctx, space.ModerationCommandLabel(space.CommandTransferOwnership), record.ID, cmd.ActorUserID, cmd.TargetUserID, nil)
	s.notify(ctx, Notification{
		Command:      space.CommandTransferOwnership,
		SpaceID:      record.ID,
		ActorUserID:  cmd.ActorUserID,
		TargetUserID: cmd.TargetUserID,
		Role:         space.RoleOwner,
	})
	return nil
}

// RemoveMember deletes the target's membership.
func (s *Service) RemoveMember(ctx context.Context, cmd Command) error {
	return s.removeOrBan(ctx, space.CommandRemove, cmd)
}

// BanMember marks the target's membership blocked without deleting it, so a
// ban is distinguishable from a leave and gates re-joins.
func (s *Service) BanMember(ctx context.Context, cmd Command) error {
	return s.removeOrBan(ctx, space.CommandBan, cmd)
}

func (s *Service) removeOrBan(ctx context.Context, command space.ModerationCommand, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd, err := cmd.normalize()
	if err != nil {
		return err
	}
	record, err := s.loadSpace(ctx, cmd.SpaceID)
	if err != nil {
		return err
	}
	if cmd.ActorUserID == cmd.TargetUserID {
		err := newSelfTargetError(command)
		s.recordOutcome(ctx, space.ModerationCommandLabel(command), record.ID, cmd.ActorUserID, cmd.TargetUserID, err)
		return err
	}
	actor, err := s.loadMembership(ctx, record.ID, cmd.ActorUserID)
	if err != nil {
		return err
	}
	target, err := s.loadMembership(ctx, record.ID, cmd.TargetUserID)
	if err != nil {
		return err
	}
	if err := requireActiveActor(command, actor); err != nil {
		s.recordOutcome(ctx, space.ModerationCommandLabel(command), record.ID, cmd.ActorUserID, cmd.TargetUserID, err)
		return err
	}
	if err := space.ValidateRemoval(command, actor.Role, target.Role); err != nil {
		s.recordOutcome(ctx, space.ModerationCommandLabel(command), record.ID, cmd.ActorUserID, cmd.TargetUserID, err)
		return err
	}
	if err := s.confirm(ctx, Prompt{
		Command:      command,
		SpaceID:      record.ID,
		ActorUserID:  cmd.ActorUserID,
		TargetUserID: cmd.TargetUserID,
	}); err != nil {
		s.recordOutcome(ctx, space.ModerationCommandLabel(command), record.ID, cmd.ActorUserID, cmd.TargetUserID, err)
		return err
	}

	now := s.clock().UTC()
	switch command {
	case space.CommandRemove:
		if err := s.stores.Memberships.DeleteMembership(ctx, record.ID, cmd.TargetUserID); err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
	case space.CommandBan:
		if err := s.stores.Memberships.UpdateMembershipStatus(ctx, record.ID, cmd.TargetUserID, space.StatusBlocked, now); err != nil {
			return fmt.Errorf("block membership: %w", err)
		}
	}

	s.recordOutcome(ctx, space.ModerationCommandLabel(command), record.ID, cmd.ActorUserID, cmd.TargetUserID, nil)
	s.notify(ctx, Notification{
		Command:      command,
		SpaceID:      record.ID,
		ActorUserID:  cmd.ActorUserID,
		TargetUserID: cmd.TargetUserID,
	})
	return nil
}

// LeaveSpace removes the acting user's own membership. The owner must
// transfer ownership before leaving.
func (s *Service) LeaveSpace(ctx context.Context, spaceID string, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	spaceID = strings.TrimSpace(spaceID)
	userID = strings.TrimSpace(userID)
	if spaceID == "" {
		return space.ErrEmptySpaceID
	}
	if userID == "" {
		return space.ErrEmptyUserID
	}
	record, err := s.loadSpace(ctx, spaceID)
	if err != nil {
		return err
	}
	membership, err := s.loadMembership(ctx, record.ID, userID)
	if err != nil {
		return err
	}
	if membership.Role == space.RoleOwner {
		err := apperrors.WithMetadata(
			apperrors.CodeModerationOwnerMustTransfer,
			"the owner must transfer ownership before leaving",
			map[string]string{"SpaceID": record.ID},
		)
		s.recordOutcome(ctx, space.ModerationCommandLabel(space.CommandLeave), record.ID, userID, userID, err)
		return err
	}
	if err := s.confirm(ctx, Prompt{
		Command:      space.CommandLeave,
		SpaceID:      record.ID,
		ActorUserID:  userID,
		TargetUserID: userID,
	}); err != nil {
		s.recordOutcome(ctx, space.ModerationCommandLabel(space.CommandLeave), record.ID, userID, userID, err)
		return err
	}

	if err := s.stores.Memberships.DeleteMembership(ctx, record.ID, userID); err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}

	s.recordOutcome(ctx, space.ModerationCommandLabel(space.CommandLeave), record.ID, userID, userID, nil)
	s.notify(ctx, Notification{
		Command:      space.CommandLeave,
		SpaceID:      record.ID,
		ActorUserID:  userID,
		TargetUserID: userID,
	})
	return nil
}
