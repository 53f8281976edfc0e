package space

import (
	"testing"

	apperrors "github.com/campuscommons/campuscommons/internal/platform/errors"
)

func TestValidatePromotionSingleStep(t *testing.T) {
	// Owner promotes member to moderator, moderator to admin: both single steps.
	if err := ValidatePromotion(KindGroup, RoleOwner, RoleMember, RoleModerator); err != nil {
		t.Fatalf("owner member->moderator: %v", err)
	}
	if err := ValidatePromotion(KindGroup, RoleOwner, RoleModerator, RoleAdmin); err != nil {
		t.Fatalf("owner moderator->admin: %v", err)
	}

	// Skipping ranks is rejected regardless of actor rank.
	err := ValidatePromotion(KindGroup, RoleOwner, RoleMember, RoleAdmin)
	if !apperrors.IsCode(err, apperrors.CodeModerationInvalidTransition) {
		t.Fatalf("member->admin err = %v, want invalid transition", err)
	}
}

func TestValidatePromotionActorGates(t *testing.T) {
	// Only the owner seats admins.
	err := ValidatePromotion(KindGroup, RoleAdmin, RoleModerator, RoleAdmin)
	if !apperrors.IsCode(err, apperrors.CodeModerationPermissionDenied) {
		t.Fatalf("admin seating admin err = %v, want permission denied", err)
	}

	// Admins may seat moderators; moderators may not.
	if err := ValidatePromotion(KindGroup, RoleAdmin, RoleMember, RoleModerator); err != nil {
		t.Fatalf("admin member->moderator: %v", err)
	}
	err = ValidatePromotion(KindGroup, RoleModerator, RoleMember, RoleModerator)
	if !apperrors.IsCode(err, apperrors.CodeModerationPermissionDenied) {
		t.Fatalf("moderator seating moderator err = %v, want permission denied", err)
	}
}

func TestValidatePromotionNeverReachesOwner(t *testing.T) {
	err := ValidatePromotion(KindGroup, RoleOwner, RoleAdmin, RoleOwner)
	if !apperrors.IsCode(err, apperrors.CodeModerationInvalidTransition) {
		t.Fatalf("admin->owner err = %v, want invalid transition", err)
	}
}

func TestValidateDemotionSingleStep(t *testing.T) {
	if err := ValidateDemotion(KindGroup, RoleOwner, RoleAdmin, RoleModerator); err != nil {
		t.Fatalf("owner admin->moderator: %v", err)
	}
	if err := ValidateDemotion(KindGroup, RoleAdmin, RoleModerator, RoleMember); err != nil {
		t.Fatalf("admin moderator->member: %v", err)
	}

	err := ValidateDemotion(KindGroup, RoleOwner, RoleAdmin, RoleMember)
	if !apperrors.IsCode(err, apperrors.CodeModerationInvalidTransition) {
		t.Fatalf("admin->member err = %v, want invalid transition", err)
	}
}

func TestValidateDemotionTierManagement(t *testing.T) {
	// Admins cannot demote fellow admins; that tier belongs to the owner.
	err := ValidateDemotion(KindGroup, RoleAdmin, RoleAdmin, RoleModerator)
	if !apperrors.IsCode(err, apperrors.CodeModerationPermissionDenied) {
		t.Fatalf("admin demoting admin err = %v, want permission denied", err)
	}

	// Moderators manage no tier at all.
	err = ValidateDemotion(KindGroup, RoleModerator, RoleMember, RoleUnspecified)
	if !apperrors.IsCode(err, apperrors.CodeModerationInvalidTransition) {
		t.Fatalf("member->unspecified err = %v, want invalid transition", err)
	}
}

func TestValidateRoomRolesSingleStep(t *testing.T) {
	// Rooms collapse the moderator tier, so member and admin are adjacent.
	if err := ValidatePromotion(KindRoom, RoleOwner, RoleMember, RoleAdmin); err != nil {
		t.Fatalf("room member->admin: %v", err)
	}
	if err := ValidateDemotion(KindRoom, RoleOwner, RoleAdmin, RoleMember); err != nil {
		t.Fatalf("room admin->member: %v", err)
	}

	// The moderator rung does not exist on the room ladder.
	err := ValidatePromotion(KindRoom, RoleOwner, RoleMember, RoleModerator)
	if !apperrors.IsCode(err, apperrors.CodeModerationInvalidTransition) {
		t.Fatalf("room member->moderator err = %v, want invalid transition", err)
	}

	// Seating a room admin is still owner-only.
	err = ValidatePromotion(KindRoom, RoleAdmin, RoleMember, RoleAdmin)
	if !apperrors.IsCode(err, apperrors.CodeModerationPermissionDenied) {
		t.Fatalf("room admin seating admin err = %v, want permission denied", err)
	}

	// And demoting a room admin is owner-only too.
	err = ValidateDemotion(KindRoom, RoleAdmin, RoleAdmin, RoleMember)
	if !apperrors.IsCode(err, apperrors.CodeModerationPermissionDenied) {
		t.Fatalf("room admin demoting admin err = %v, want permission denied", err)
	}
}

func TestValidateDemotionOwnerImmovable(t *testing.T) {
	err := ValidateDemotion(KindGroup, RoleOwner, RoleOwner, RoleAdmin)
	if !apperrors.IsCode(err, apperrors.CodeModerationInvalidTransition) {
		t.Fatalf("owner demotion err = %v, want invalid transition", err)
	}
}

func TestValidateOwnershipTransfer(t *testing.T) {
	if err := ValidateOwnershipTransfer(RoleOwner, RoleAdmin); err != nil {
		t.Fatalf("owner->admin transfer: %v", err)
	}

	// Only admins can receive the seat.
	err := ValidateOwnershipTransfer(RoleOwner, RoleMember)
	if !apperrors.IsCode(err, apperrors.CodeModerationInvalidTransition) {
		t.Fatalf("transfer to member err = %v, want invalid transition", err)
	}

	// Only the owner can give it away.
	err = ValidateOwnershipTransfer(RoleAdmin, RoleAdmin)
	if !apperrors.IsCode(err, apperrors.CodeModerationPermissionDenied) {
		t.Fatalf("transfer by admin err = %v, want permission denied", err)
	}
}

func TestValidateRemovalAsymmetry(t *testing.T) {
	// Owner removes anyone below them.
	for _, target := range []Role{RoleMember, RoleModerator, RoleAdmin} {
		if err := ValidateRemoval(CommandRemove, RoleOwner, target); err != nil {
			t.Fatalf("owner removing %v: %v", target, err)
		}
	}

	// Admin removes plain members only; no lateral purges.
	if err := ValidateRemoval(CommandRemove, RoleAdmin, RoleMember); err != nil {
		t.Fatalf("admin removing member: %v", err)
	}
	for _, target := range []Role{RoleModerator, RoleAdmin} {
		err := ValidateRemoval(CommandRemove, RoleAdmin, target)
		if !apperrors.IsCode(err, apperrors.CodeModerationPermissionDenied) {
			t.Fatalf("admin removing %v err = %v, want permission denied", target, err)
		}
	}

	// A moderator can remove members but never a peer moderator.
	if err := ValidateRemoval(CommandBan, RoleModerator, RoleMember); err != nil {
		t.Fatalf("moderator banning member: %v", err)
	}
	err := ValidateRemoval(CommandBan, RoleModerator, RoleModerator)
	if !apperrors.IsCode(err, apperrors.CodeModerationPermissionDenied) {
		t.Fatalf("moderator banning moderator err = %v, want permission denied", err)
	}

	// A member can remove nobody.
	err = ValidateRemoval(CommandRemove, RoleMember, RoleMember)
	if !apperrors.IsCode(err, apperrors.CodeModerationPermissionDenied) {
		t.Fatalf("member removing member err = %v, want permission denied", err)
	}
}

func TestValidateRemovalProtectsOwnerSeat(t *testing.T) {
	for _, actor := range []Role{RoleOwner, RoleAdmin, RoleModerator, RoleMember} {
		err := ValidateRemoval(CommandRemove, actor, RoleOwner)
		if !apperrors.IsCode(err, apperrors.CodeModerationOwnerRemoval) {
			t.Fatalf("%v removing owner err = %v, want owner removal", actor, err)
		}
	}
}

func TestPermissionErrorCarriesCommandMetadata(t *testing.T) {
	err := ValidateRemoval(CommandBan, RoleMember, RoleMember)
	metadata := apperrors.GetMetadata(err)
	if metadata["Command"] != "BAN" {
		t.Fatalf("metadata command = %q, want BAN", metadata["Command"])
	}
}

func TestModerationCommandLabels(t *testing.T) {
	labels := map[ModerationCommand]string{
		CommandPromote:           "PROMOTE",
		CommandDemote:            "DEMOTE",
		CommandTransferOwnership: "TRANSFER_OWNERSHIP",
		CommandRemove:            "REMOVE",
		CommandBan:               "BAN",
		CommandLeave:             "LEAVE",
		CommandUnspecified:       "UNSPECIFIED",
	}
	for command, want := range labels {
		if got := ModerationCommandLabel(command); got != want {
			t.Fatalf("label for %v = %q, want %q", command, got, want)
		}
	}
}
