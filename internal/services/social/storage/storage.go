// Package storage defines persistence contracts for social graph state.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
var ErrAlreadyExists = errors.New("record already exists")

// RequestStatus tracks the lifecycle of a friend request.
type RequestStatus int

const (
	// RequestStatusUnspecified represents an invalid status.
	RequestStatusUnspecified RequestStatus = iota
	// RequestStatusPending awaits the receiver's decision.
	RequestStatusPending
	// RequestStatusAccepted produced a friendship.
	RequestStatusAccepted
	// RequestStatusRejected was declined by the receiver.
	RequestStatusRejected
)

// RequestStatusLabel returns a stable label for a request status.
func RequestStatusLabel(status RequestStatus) string {
	switch status {
	case RequestStatusPending:
		return "pending"
	case RequestStatusAccepted:
		return "accepted"
	case RequestStatusRejected:
		return "rejected"
	default:
		return "unspecified"
	}
}

// Friendship stores one undirected friend edge as a canonical ordered pair.
type Friendship struct {
	UserAID   string
	UserBID   string
	CreatedAt time.Time
}

// FriendRequest stores one directed friend request.
type FriendRequest struct {
	ID         string
	SenderID   string
	ReceiverID string
	Status     RequestStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Block stores one directed block edge.
type Block struct {
	OwnerUserID   string
	BlockedUserID string
	CreatedAt     time.Time
}

// FriendshipPage stores a page of friendships.
type FriendshipPage struct {
	Friendships   []Friendship
	NextPageToken string
}

// FriendRequestPage stores a page of friend requests.
type FriendRequestPage struct {
	Requests      []FriendRequest
	NextPageToken string
}

// CanonicalPair orders two user ids so an undirected edge has one storage key.
func CanonicalPair(first string, second string) (string, string) {
	if second < first {
		return second, first
	}
	return first, second
}

// FriendshipStore persists undirected friendships keyed by canonical pair.
type FriendshipStore interface {
	PutFriendship(ctx context.Context, friendship Friendship) error
	GetFriendship(ctx context.Context, userAID string, userBID string) (Friendship, error)
	DeleteFriendship(ctx context.Context, userAID string, userBID string) error
	ListFriendships(ctx context.Context, userID string, pageSize int, pageToken string) (FriendshipPage, error)
}

// FriendRequestStore persists directed friend requests.
type FriendRequestStore interface {
	CreateFriendRequest(ctx context.Context, request FriendRequest) error
	GetFriendRequest(ctx context.Context, requestID string) (FriendRequest, error)
	// GetPendingRequestBetween returns the pending request from sender to
	// receiver, if one exists.
	GetPendingRequestBetween(ctx context.Context, senderID string, receiverID string) (FriendRequest, error)
	UpdateFriendRequestStatus(ctx context.Context, requestID string, status RequestStatus, updatedAt time.Time) error
	DeleteFriendRequest(ctx context.Context, requestID string) error
	ListPendingRequestsByReceiver(ctx context.Context, receiverID string, pageSize int, pageToken string) (FriendRequestPage, error)
}

// BlockStore persists directed block edges.
type BlockStore interface {
	PutBlock(ctx context.Context, block Block) error
	GetBlock(ctx context.Context, ownerUserID string, blockedUserID string) (Block, error)
	DeleteBlock(ctx context.Context, ownerUserID string, blockedUserID string) error
}
