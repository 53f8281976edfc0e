package space

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/campuscommons/campuscommons/internal/platform/errors"
	"github.com/campuscommons/campuscommons/internal/platform/id"
)

// Kind describes whether a space is a group or a study room.
type Kind int

// Privacy describes who can discover and join a space.
type Privacy int

const (
	// KindUnspecified represents an invalid space kind value.
	KindUnspecified Kind = iota
	// KindGroup indicates a long-lived community group.
	KindGroup
	// KindRoom indicates a study room.
	KindRoom
)

const (
	// PrivacyUnspecified represents an invalid privacy value.
	PrivacyUnspecified Privacy = iota
	// PrivacyPublic indicates anyone can discover and join.
	PrivacyPublic
	// PrivacyPrivate indicates the space is joinable by invitation only.
	PrivacyPrivate
	// PrivacyClosed indicates the space is hidden from discovery entirely.
	PrivacyClosed
)

var (
	// ErrEmptyName indicates a missing space name.
	ErrEmptyName = apperrors.New(apperrors.CodeSpaceNameEmpty, "space name is required")
	// ErrInvalidKind indicates a missing or invalid space kind.
	ErrInvalidKind = apperrors.New(apperrors.CodeSpaceInvalidKind, "space kind is required")
	// ErrInvalidPrivacy indicates a missing or invalid privacy value.
	ErrInvalidPrivacy = apperrors.New(apperrors.CodeSpaceInvalidPrivacy, "space privacy is required")
)

// Space represents a named shared container with membership.
// A space is created once by its founding owner and is never re-parented.
type Space struct {
	ID      string
	Name    string
	Kind    Kind
	Privacy Privacy
	// CreatedAt is the timestamp when the space was created.
	CreatedAt time.Time
	// UpdatedAt is the timestamp when space metadata last changed.
	UpdatedAt time.Time
	// DeletedAt marks soft deletion; nil while the space is live.
	DeletedAt *time.Time
}

// IsDeleted reports whether the space has been soft-deleted.
func (s Space) IsDeleted() bool {
	return s.DeletedAt != nil
}

// CreateSpaceInput describes the metadata needed to create a space.
type CreateSpaceInput struct {
	Name    string
	Kind    Kind
	Privacy Privacy
}

// CreateSpace creates a new space with a generated ID and timestamps.
func CreateSpace(input CreateSpaceInput, now func() time.Time, idGenerator func() (string, error)) (Space, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateSpaceInput(input)
	if err != nil {
		return Space{}, err
	}

	spaceID, err := idGenerator()
	if err != nil {
		return Space{}, fmt.Errorf("generate space id: %w", err)
	}

	createdAt := now().UTC()
	return Space{
		ID:        spaceID,
		Name:      normalized.Name,
		Kind:      normalized.Kind,
		Privacy:   normalized.Privacy,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// NormalizeCreateSpaceInput trims and validates space input metadata.
func NormalizeCreateSpaceInput(input CreateSpaceInput) (CreateSpaceInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateSpaceInput{}, ErrEmptyName
	}
	if input.Kind != KindGroup && input.Kind != KindRoom {
		return CreateSpaceInput{}, ErrInvalidKind
	}
	if input.Privacy == PrivacyUnspecified {
		input.Privacy = PrivacyPublic
	}
	switch input.Privacy {
	case PrivacyPublic, PrivacyPrivate, PrivacyClosed:
	default:
		return CreateSpaceInput{}, ErrInvalidPrivacy
	}
	return input, nil
}

// KindLabel returns a stable label for a space kind.
func KindLabel(kind Kind) string {
	switch kind {
	case KindGroup:
		return "GROUP"
	case KindRoom:
		return "ROOM"
	default:
		return "UNSPECIFIED"
	}
}

// KindFromLabel converts a kind label to a Kind value.
func KindFromLabel(label string) Kind {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "GROUP":
		return KindGroup
	case "ROOM":
		return KindRoom
	default:
		return KindUnspecified
	}
}

// PrivacyLabel returns a stable label for a privacy value.
func PrivacyLabel(privacy Privacy) string {
	switch privacy {
	case PrivacyPublic:
		return "PUBLIC"
	case PrivacyPrivate:
		return "PRIVATE"
	case PrivacyClosed:
		return "CLOSED"
	default:
		return "UNSPECIFIED"
	}
}

// PrivacyFromLabel converts a privacy label to a Privacy value.
func PrivacyFromLabel(label string) Privacy {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "PUBLIC":
		return PrivacyPublic
	case "PRIVATE":
		return PrivacyPrivate
	case "CLOSED":
		return PrivacyClosed
	default:
		return PrivacyUnspecified
	}
}
