package i18n

import "testing"

func TestFormatSubstitutesMetadata(t *testing.T) {
	catalog := GetCatalog("en-US")
	got := catalog.Format(CodeModerationInvalidTransition, map[string]string{
		"FromRole": "MEMBER",
		"ToRole":   "ADMIN",
	})
	want := "Cannot change role from MEMBER to ADMIN"
	if got != want {
		t.Fatalf("format = %q, want %q", got, want)
	}
}

func TestFormatUnknownCodeFallsBack(t *testing.T) {
	catalog := GetCatalog("en-US")
	if got := catalog.Format("NO_SUCH_CODE", nil); got != "NO_SUCH_CODE" {
		t.Fatalf("format = %q, want code fallback", got)
	}
}

func TestGetCatalogFallsBackToEnUS(t *testing.T) {
	for _, locale := range []string{"", "zz", "pt-BR", "not a locale"} {
		catalog := GetCatalog(locale)
		if catalog.Locale() != "en-US" {
			t.Fatalf("locale %q resolved to %q, want en-US", locale, catalog.Locale())
		}
	}
}

// Every published error code must have a user-facing message so rejected
// commands never surface raw codes to the UI layer.
func TestCatalogCoversAllCodes(t *testing.T) {
	codes := []string{
		CodeSpaceNameEmpty, CodeSpaceInvalidKind, CodeSpaceInvalidPrivacy,
		CodeSpaceNotFound, CodeSpaceDeleted,
		CodeMembershipDuplicate, CodeMembershipNotFound, CodeMembershipInvalidRole,
		CodeMembershipInvalidStatus, CodeMembershipEmptySpaceID, CodeMembershipEmptyUserID,
		CodeModerationPermissionDenied, CodeModerationSelfTarget,
		CodeModerationInvalidTransition, CodeModerationOwnerRemoval,
		CodeModerationOwnerMustTransfer, CodeModerationCancelled,
		CodeFriendSelfTarget, CodeFriendRequestDuplicate, CodeFriendRequestNotFound,
		CodeFriendRequestInvalidStatus, CodeFriendshipExists,
		CodeNotFound,
	}
	catalog := GetCatalog("en-US")
	for _, code := range codes {
		if _, ok := catalog.messages[code]; !ok {
			t.Fatalf("catalog missing message for code %s", code)
		}
	}
}
