package space

// RankOf maps a role to its position in the hierarchy.
// Owner outranks admin outranks moderator outranks member; unspecified ranks
// below everything so an invalid role can never pass a gate.
func RankOf(role Role) int {
	switch role {
	case RoleOwner:
		return 4
	case RoleAdmin:
		return 3
	case RoleModerator:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// LadderRankOf maps a role to its position on a kind's promotion ladder.
// Rooms collapse the moderator tier, so admin sits one step above member.
func LadderRankOf(kind Kind, role Role) int {
	if kind == KindRoom {
		switch role {
		case RoleOwner:
			return 3
		case RoleAdmin:
			return 2
		case RoleMember:
			return 1
		default:
			return 0
		}
	}
	return RankOf(role)
}

// Outranks reports whether the actor's role is strictly above the target's.
func Outranks(actor, target Role) bool {
	return RankOf(actor) > RankOf(target)
}

// MeetsThreshold reports whether a role is at or above the minimum role.
func MeetsThreshold(actor, minRole Role) bool {
	return RankOf(actor) >= RankOf(minRole)
}
