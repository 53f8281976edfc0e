// Package relation classifies the social standing between two users.
package relation

// Kind is the single label describing one user pair from one side.
type Kind int

const (
	// KindUnspecified represents an invalid classification.
	KindUnspecified Kind = iota
	// KindNone means no edge of any sort exists between the pair.
	KindNone
	// KindFriend means an accepted friendship exists.
	KindFriend
	// KindPendingReceived means the other user has a request awaiting me.
	KindPendingReceived
	// KindPendingSent means my request awaits the other user.
	KindPendingSent
	// KindBlockedByMe means I have blocked the other user.
	KindBlockedByMe
	// KindBlockedByThem means the other user has blocked me.
	KindBlockedByThem
)

// Label returns a stable label for a relation kind.
func Label(kind Kind) string {
	switch kind {
	case KindNone:
		return "none"
	case KindFriend:
		return "friend"
	case KindPendingReceived:
		return "pending_received"
	case KindPendingSent:
		return "pending_sent"
	case KindBlockedByMe:
		return "blocked_by_me"
	case KindBlockedByThem:
		return "blocked_by_them"
	default:
		return "unspecified"
	}
}

// Facts are the edges observed for one pair, from the classifying user's side.
type Facts struct {
	BlockedByThem   bool
	BlockedByMe     bool
	Friends         bool
	PendingReceived bool
	PendingSent     bool
}

// Classify reduces the observed facts to exactly one kind. Blocks dominate
// everything, a block against me dominates my own, and an accepted
// friendship dominates any stale request rows.
func Classify(facts Facts) Kind {
	switch {
	case facts.BlockedByThem:
		return KindBlockedByThem
	case facts.BlockedByMe:
		return KindBlockedByMe
	case facts.Friends:
		return KindFriend
	case facts.PendingReceived:
		return KindPendingReceived
	case facts.PendingSent:
		return KindPendingSent
	default:
		return KindNone
	}
}
