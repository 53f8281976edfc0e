package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Space errors
	CodeSpaceNameEmpty      Code = "SPACE_NAME_EMPTY"
	CodeSpaceInvalidKind    Code = "SPACE_INVALID_KIND"
	CodeSpaceInvalidPrivacy Code = "SPACE_INVALID_PRIVACY"
	CodeSpaceNotFound       Code = "SPACE_NOT_FOUND"
	CodeSpaceDeleted        Code = "SPACE_DELETED"

	// Membership errors
	CodeMembershipDuplicate     Code = "MEMBERSHIP_DUPLICATE"
	CodeMembershipNotFound      Code = "MEMBERSHIP_NOT_FOUND"
	CodeMembershipInvalidRole   Code = "MEMBERSHIP_INVALID_ROLE"
	CodeMembershipInvalidStatus Code = "MEMBERSHIP_INVALID_STATUS"
	CodeMembershipEmptySpaceID  Code = "MEMBERSHIP_EMPTY_SPACE_ID"
	CodeMembershipEmptyUserID   Code = "MEMBERSHIP_EMPTY_USER_ID"

	// Moderation errors
	CodeModerationPermissionDenied  Code = "MODERATION_PERMISSION_DENIED"
	CodeModerationSelfTarget        Code = "MODERATION_SELF_TARGET"
	CodeModerationInvalidTransition Code = "MODERATION_INVALID_TRANSITION"
	CodeModerationOwnerRemoval      Code = "MODERATION_OWNER_REMOVAL"
	CodeModerationOwnerMustTransfer Code = "MODERATION_OWNER_MUST_TRANSFER"
	CodeModerationCancelled         Code = "MODERATION_CANCELLED"

	// Friendship errors
	CodeFriendSelfTarget           Code = "FRIEND_SELF_TARGET"
	CodeFriendRequestDuplicate     Code = "FRIEND_REQUEST_DUPLICATE"
	CodeFriendRequestNotFound      Code = "FRIEND_REQUEST_NOT_FOUND"
	CodeFriendRequestInvalidStatus Code = "FRIEND_REQUEST_INVALID_STATUS"
	CodeFriendshipExists           Code = "FRIENDSHIP_EXISTS"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeSpaceNameEmpty,
		CodeSpaceInvalidKind,
		CodeSpaceInvalidPrivacy,
		CodeMembershipInvalidRole,
		CodeMembershipInvalidStatus,
		CodeMembershipEmptySpaceID,
		CodeMembershipEmptyUserID,
		CodeModerationSelfTarget,
		CodeFriendSelfTarget,
		CodeFriendRequestInvalidStatus:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeSpaceDeleted,
		CodeModerationInvalidTransition,
		CodeModerationOwnerRemoval,
		CodeModerationOwnerMustTransfer:
		return codes.FailedPrecondition

	// PermissionDenied - actor rank insufficient
	case CodeModerationPermissionDenied:
		return codes.PermissionDenied

	// Canceled - user declined confirmation
	case CodeModerationCancelled:
		return codes.Canceled

	// AlreadyExists - uniqueness violations
	case CodeMembershipDuplicate,
		CodeFriendRequestDuplicate,
		CodeFriendshipExists:
		return codes.AlreadyExists

	// NotFound - missing records
	case CodeSpaceNotFound,
		CodeMembershipNotFound,
		CodeFriendRequestNotFound,
		CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
