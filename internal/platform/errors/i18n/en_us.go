package i18n

import "golang.org/x/text/language"

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeSpaceNameEmpty      = "SPACE_NAME_EMPTY"
	CodeSpaceInvalidKind    = "SPACE_INVALID_KIND"
	CodeSpaceInvalidPrivacy = "SPACE_INVALID_PRIVACY"
	CodeSpaceNotFound       = "SPACE_NOT_FOUND"
	CodeSpaceDeleted        = "SPACE_DELETED"

	CodeMembershipDuplicate     = "MEMBERSHIP_DUPLICATE"
	CodeMembershipNotFound      = "MEMBERSHIP_NOT_FOUND"
	CodeMembershipInvalidRole   = "MEMBERSHIP_INVALID_ROLE"
	CodeMembershipInvalidStatus = "MEMBERSHIP_INVALID_STATUS"
	CodeMembershipEmptySpaceID  = "MEMBERSHIP_EMPTY_SPACE_ID"
	CodeMembershipEmptyUserID   = "MEMBERSHIP_EMPTY_USER_ID"

	CodeModerationPermissionDenied  = "MODERATION_PERMISSION_DENIED"
	CodeModerationSelfTarget        = "MODERATION_SELF_TARGET"
	CodeModerationInvalidTransition = "MODERATION_INVALID_TRANSITION"
	CodeModerationOwnerRemoval      = "MODERATION_OWNER_REMOVAL"
	CodeModerationOwnerMustTransfer = "MODERATION_OWNER_MUST_TRANSFER"
	CodeModerationCancelled         = "MODERATION_CANCELLED"

	CodeFriendSelfTarget           = "FRIEND_SELF_TARGET"
	CodeFriendRequestDuplicate     = "FRIEND_REQUEST_DUPLICATE"
	CodeFriendRequestNotFound      = "FRIEND_REQUEST_NOT_FOUND"
	CodeFriendRequestInvalidStatus = "FRIEND_REQUEST_INVALID_STATUS"
	CodeFriendshipExists           = "FRIENDSHIP_EXISTS"

	CodeNotFound = "NOT_FOUND"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	tag:    language.AmericanEnglish,
	messages: map[string]string{
		// Space errors
		CodeSpaceNameEmpty:      "Space name cannot be empty",
		CodeSpaceInvalidKind:    "Space kind must be group or room",
		CodeSpaceInvalidPrivacy: "Space privacy must be public, private, or closed",
		CodeSpaceNotFound:       "The requested space was not found",
		CodeSpaceDeleted:        "This space has been deleted",

		// Membership errors
		CodeMembershipDuplicate:     "User is already a member of this space",
		CodeMembershipNotFound:      "User is not a member of this space",
		CodeMembershipInvalidRole:   "Invalid membership role specified",
		CodeMembershipInvalidStatus: "Invalid membership status specified",
		CodeMembershipEmptySpaceID:  "Space ID is required for membership",
		CodeMembershipEmptyUserID:   "User ID is required for membership",

		// Moderation errors
		CodeModerationPermissionDenied:  "You do not have permission to {{.Command}} this member",
		CodeModerationSelfTarget:        "You cannot {{.Command}} yourself",
		CodeModerationInvalidTransition: "Cannot change role from {{.FromRole}} to {{.ToRole}}",
		CodeModerationOwnerRemoval:      "The space owner cannot be removed",
		CodeModerationOwnerMustTransfer: "Transfer ownership before leaving this space",
		CodeModerationCancelled:         "The action was cancelled",

		// Friendship errors
		CodeFriendSelfTarget:           "You cannot send a friend request to yourself",
		CodeFriendRequestDuplicate:     "A friend request between these users is already pending",
		CodeFriendRequestNotFound:      "The friend request was not found",
		CodeFriendRequestInvalidStatus: "Friend request is not pending",
		CodeFriendshipExists:           "These users are already friends",

		// Storage errors
		CodeNotFound: "The requested resource was not found",
	},
}
