package pagination

import "testing"

func TestClampPageSize(t *testing.T) {
	cfg := PageSizeConfig{Default: 20, Max: 100}

	cases := []struct {
		value int
		want  int
	}{
		{0, 20},
		{-5, 20},
		{50, 50},
		{100, 100},
		{101, 100},
	}
	for _, tc := range cases {
		if got := ClampPageSize(tc.value, cfg); got != tc.want {
			t.Fatalf("ClampPageSize(%d) = %d, want %d", tc.value, got, tc.want)
		}
	}
}

func TestClampPageSizeZeroConfig(t *testing.T) {
	if got := ClampPageSize(0, PageSizeConfig{}); got != 1 {
		t.Fatalf("ClampPageSize(0) = %d, want 1", got)
	}
}

func TestNormalizeOrderBy(t *testing.T) {
	cfg := OrderByConfig{Default: "joined_at", Allowed: []string{"joined_at", "user_id"}}

	got, err := NormalizeOrderBy("", cfg)
	if err != nil || got != "joined_at" {
		t.Fatalf("empty order_by = %q, %v, want default", got, err)
	}

	got, err = NormalizeOrderBy("user_id", cfg)
	if err != nil || got != "user_id" {
		t.Fatalf("order_by user_id = %q, %v", got, err)
	}

	if _, err := NormalizeOrderBy("password", cfg); err == nil {
		t.Fatal("expected error for disallowed order_by")
	}
}
