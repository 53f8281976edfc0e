package space

import (
	"fmt"

	apperrors "github.com/campuscommons/campuscommons/internal/platform/errors"
)

// ModerationCommand describes a category of membership mutation for policy checks.
type ModerationCommand int

const (
	// CommandUnspecified represents an invalid command.
	CommandUnspecified ModerationCommand = iota
	// CommandPromote raises a member's role by one rank.
	CommandPromote
	// CommandDemote lowers a member's role by one rank.
	CommandDemote
	// CommandTransferOwnership swaps the owner seat with an admin.
	CommandTransferOwnership
	// CommandRemove deletes a membership.
	CommandRemove
	// CommandBan marks a membership blocked without deleting it.
	CommandBan
	// CommandLeave removes the actor's own membership.
	CommandLeave
)

// ValidatePromotion checks the role-hierarchy preconditions for a promotion.
//
// Promotions are always single-step on the kind's ladder: toRole must sit
// exactly one rung above the target's current role, so in a room member
// promotes straight to admin. Only the owner seats admins; the admin
// threshold is enough to seat moderators. The owner seat is never reachable
// by promotion.
func ValidatePromotion(kind Kind, actorRole, targetRole, toRole Role) error {
	if toRole == RoleOwner {
		return newTransitionError(targetRole, toRole)
	}
	if LadderRankOf(kind, toRole) != LadderRankOf(kind, targetRole)+1 {
		return newTransitionError(targetRole, toRole)
	}
	switch toRole {
	case RoleAdmin:
		if actorRole != RoleOwner {
			return newPermissionError(CommandPromote)
		}
	case RoleModerator, RoleMember:
		if !MeetsThreshold(actorRole, RoleAdmin) {
			return newPermissionError(CommandPromote)
		}
	default:
		return newTransitionError(targetRole, toRole)
	}
	return nil
}

// ValidateDemotion checks the role-hierarchy preconditions for a demotion.
//
// Demotions mirror promotions: single step down the kind's ladder, and the
// actor must both outrank the target and meet the threshold that manages the
// target's tier (owner manages admins, admin manages moderators). The owner
// cannot be demoted; ownership moves only via transfer.
func ValidateDemotion(kind Kind, actorRole, targetRole, toRole Role) error {
	if targetRole == RoleOwner {
		return newTransitionError(targetRole, toRole)
	}
	if LadderRankOf(kind, toRole) != LadderRankOf(kind, targetRole)-1 || toRole == RoleUnspecified {
		return newTransitionError(targetRole, toRole)
	}
	if !Outranks(actorRole, targetRole) {
		return newPermissionError(CommandDemote)
	}
	switch targetRole {
	case RoleAdmin:
		if actorRole != RoleOwner {
			return newPermissionError(CommandDemote)
		}
	case RoleModerator:
		if !MeetsThreshold(actorRole, RoleAdmin) {
			return newPermissionError(CommandDemote)
		}
	}
	return nil
}

// ValidateOwnershipTransfer checks the preconditions for transferring the
// owner seat. Only the current owner may transfer, and only to an existing
// admin, so the space can never be left without a ready owner.
func ValidateOwnershipTransfer(actorRole, targetRole Role) error {
	if actorRole != RoleOwner {
		return newPermissionError(CommandTransferOwnership)
	}
	if targetRole != RoleAdmin {
		return newTransitionError(targetRole, RoleOwner)
	}
	return nil
}

// ValidateRemoval checks the preconditions shared by remove and ban.
//
// The actor must strictly outrank the target. Non-owners may only act on
// plain members: an admin cannot purge fellow admins or moderators, and a
// moderator cannot touch a peer. The owner may act on anyone below them.
func ValidateRemoval(command ModerationCommand, actorRole, targetRole Role) error {
	if targetRole == RoleOwner {
		return apperrors.WithMetadata(
			apperrors.CodeModerationOwnerRemoval,
			"the owner seat cannot be removed",
			map[string]string{"Command": ModerationCommandLabel(command)},
		)
	}
	if !Outranks(actorRole, targetRole) {
		return newPermissionError(command)
	}
	if actorRole != RoleOwner && targetRole != RoleMember {
		return newPermissionError(command)
	}
	return nil
}

// newPermissionError creates a structured error for a rank-gated rejection.
func newPermissionError(command ModerationCommand) *apperrors.Error {
	commandLabel := ModerationCommandLabel(command)
	return apperrors.WithMetadata(
		apperrors.CodeModerationPermissionDenied,
		fmt.Sprintf("actor rank does not allow %s", commandLabel),
		map[string]string{"Command": commandLabel},
	)
}

// newTransitionError creates a structured error for a disallowed role change.
func newTransitionError(fromRole, toRole Role) *apperrors.Error {
	fromLabel := RoleLabel(fromRole)
	toLabel := RoleLabel(toRole)
	return apperrors.WithMetadata(
		apperrors.CodeModerationInvalidTransition,
		fmt.Sprintf("role transition not allowed: %s -> %s", fromLabel, toLabel),
		map[string]string{"FromRole": fromLabel, "ToRole": toLabel},
	)
}

// ModerationCommandLabel returns a stable label for a moderation command.
func ModerationCommandLabel(command ModerationCommand) string {
	switch command {
	case CommandPromote:
		return "PROMOTE"
	case CommandDemote:
		return "DEMOTE"
	case CommandTransferOwnership:
		return "TRANSFER_OWNERSHIP"
	case CommandRemove:
		return "REMOVE"
	case CommandBan:
		return "BAN"
	case CommandLeave:
		return "LEAVE"
	default:
		return "UNSPECIFIED"
	}
}
