package space

import (
	"errors"
	"testing"
	"time"
)

func TestCreateSpaceNormalizesInput(t *testing.T) {
	fixedTime := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	input := CreateSpaceInput{
		Name:    "  Study Hall  ",
		Kind:    KindRoom,
		Privacy: PrivacyPrivate,
	}

	created, err := CreateSpace(input, func() time.Time { return fixedTime }, func() (string, error) {
		return "space123", nil
	})
	if err != nil {
		t.Fatalf("create space: %v", err)
	}

	if created.ID != "space123" {
		t.Fatalf("expected id space123, got %q", created.ID)
	}
	if created.Name != "Study Hall" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if created.Kind != KindRoom {
		t.Fatalf("expected room kind, got %v", created.Kind)
	}
	if created.Privacy != PrivacyPrivate {
		t.Fatalf("expected private privacy, got %v", created.Privacy)
	}
	if !created.CreatedAt.Equal(fixedTime) || !created.UpdatedAt.Equal(fixedTime) {
		t.Fatalf("expected timestamps to match fixed time")
	}
	if created.IsDeleted() {
		t.Fatal("new space must not be deleted")
	}
}

func TestCreateSpaceDefaultsPrivacyToPublic(t *testing.T) {
	created, err := CreateSpace(CreateSpaceInput{Name: "Chess Club", Kind: KindGroup}, nil, nil)
	if err != nil {
		t.Fatalf("create space: %v", err)
	}
	if created.Privacy != PrivacyPublic {
		t.Fatalf("expected public default, got %v", created.Privacy)
	}
	if len(created.ID) != 26 {
		t.Fatalf("expected generated 26-char id, got %q", created.ID)
	}
}

func TestNormalizeCreateSpaceInputValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateSpaceInput
		err   error
	}{
		{
			name:  "empty name",
			input: CreateSpaceInput{Name: "   ", Kind: KindGroup},
			err:   ErrEmptyName,
		},
		{
			name:  "missing kind",
			input: CreateSpaceInput{Name: "Club", Kind: KindUnspecified},
			err:   ErrInvalidKind,
		},
		{
			name:  "out of range kind",
			input: CreateSpaceInput{Name: "Club", Kind: Kind(99)},
			err:   ErrInvalidKind,
		},
		{
			name:  "out of range privacy",
			input: CreateSpaceInput{Name: "Club", Kind: KindGroup, Privacy: Privacy(99)},
			err:   ErrInvalidPrivacy,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeCreateSpaceInput(tc.input)
			if !errors.Is(err, tc.err) {
				t.Fatalf("err = %v, want %v", err, tc.err)
			}
		})
	}
}

func TestKindLabelRoundTrip(t *testing.T) {
	for _, kind := range []Kind{KindGroup, KindRoom} {
		if got := KindFromLabel(KindLabel(kind)); got != kind {
			t.Fatalf("round trip for %v yielded %v", kind, got)
		}
	}
	if KindFromLabel("castle") != KindUnspecified {
		t.Fatal("unknown label should map to unspecified")
	}
}

func TestPrivacyLabelRoundTrip(t *testing.T) {
	for _, privacy := range []Privacy{PrivacyPublic, PrivacyPrivate, PrivacyClosed} {
		if got := PrivacyFromLabel(PrivacyLabel(privacy)); got != privacy {
			t.Fatalf("round trip for %v yielded %v", privacy, got)
		}
	}
}
