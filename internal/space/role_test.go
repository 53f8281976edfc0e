package space

import "testing"

func TestRankOfIsStrictlyIncreasing(t *testing.T) {
	ordered := []Role{RoleUnspecified, RoleMember, RoleModerator, RoleAdmin, RoleOwner}
	for i := 1; i < len(ordered); i++ {
		if RankOf(ordered[i]) <= RankOf(ordered[i-1]) {
			t.Fatalf("rank of %v (%d) not above %v (%d)",
				ordered[i], RankOf(ordered[i]), ordered[i-1], RankOf(ordered[i-1]))
		}
	}
}

func TestLadderRankOfCollapsesRoomTiers(t *testing.T) {
	// Group ladder matches the global rank table.
	for _, role := range []Role{RoleUnspecified, RoleMember, RoleModerator, RoleAdmin, RoleOwner} {
		if LadderRankOf(KindGroup, role) != RankOf(role) {
			t.Fatalf("group ladder rank of %v = %d, want %d", role, LadderRankOf(KindGroup, role), RankOf(role))
		}
	}

	// Room ladder puts admin one rung above member and drops moderator.
	if LadderRankOf(KindRoom, RoleAdmin) != LadderRankOf(KindRoom, RoleMember)+1 {
		t.Fatal("room admin should sit one rung above member")
	}
	if LadderRankOf(KindRoom, RoleModerator) != 0 {
		t.Fatalf("room moderator rank = %d, want 0", LadderRankOf(KindRoom, RoleModerator))
	}
	if LadderRankOf(KindRoom, RoleOwner) != LadderRankOf(KindRoom, RoleAdmin)+1 {
		t.Fatal("room owner should sit one rung above admin")
	}
}

func TestOutranks(t *testing.T) {
	if !Outranks(RoleOwner, RoleAdmin) {
		t.Fatal("owner should outrank admin")
	}
	if !Outranks(RoleAdmin, RoleMember) {
		t.Fatal("admin should outrank member")
	}
	if Outranks(RoleAdmin, RoleAdmin) {
		t.Fatal("equal ranks must not outrank")
	}
	if Outranks(RoleMember, RoleModerator) {
		t.Fatal("member must not outrank moderator")
	}
}

func TestMeetsThreshold(t *testing.T) {
	if !MeetsThreshold(RoleAdmin, RoleAdmin) {
		t.Fatal("a role meets its own threshold")
	}
	if !MeetsThreshold(RoleOwner, RoleModerator) {
		t.Fatal("owner meets every threshold")
	}
	if MeetsThreshold(RoleMember, RoleModerator) {
		t.Fatal("member does not meet the moderator threshold")
	}
	if MeetsThreshold(RoleUnspecified, RoleMember) {
		t.Fatal("unspecified role meets no threshold")
	}
}
