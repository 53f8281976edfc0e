// Package friends manages the friendship overlay between users.
//
// The overlay is orthogonal to space roles and visibility: nothing here is
// consulted by the moderation command set, and nothing here reads spaces.
package friends

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/campuscommons/campuscommons/internal/platform/errors"
	"github.com/campuscommons/campuscommons/internal/platform/grpc/pagination"
	"github.com/campuscommons/campuscommons/internal/platform/id"
	"github.com/campuscommons/campuscommons/internal/services/social/relation"
	"github.com/campuscommons/campuscommons/internal/services/social/storage"
)

// Stores groups the persistence dependencies of the friends service.
type Stores struct {
	Friendships storage.FriendshipStore
	Requests    storage.FriendRequestStore
	Blocks      storage.BlockStore
}

var listPageSizes = pagination.PageSizeConfig{Default: 50, Max: 200}

// Service applies friendship operations against the social stores.
type Service struct {
	stores      Stores
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewService creates a friends service with default dependencies.
func NewService(stores Stores) *Service {
	return &Service{
		stores:      stores,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

func normalizePair(first string, second string) (string, string, error) {
	first = strings.TrimSpace(first)
	second = strings.TrimSpace(second)
	if first == "" || second == "" {
		return "", "", fmt.Errorf("user ids are required")
	}
	if first == second {
		return "", "", apperrors.New(
			apperrors.CodeFriendSelfTarget,
			"operation cannot target the acting user",
		)
	}
	return first, second, nil
}

func (s *Service) isBlocked(ctx context.Context, ownerUserID string, blockedUserID string) (bool, error) {
	if s.stores.Blocks == nil {
		return false, fmt.Errorf("block store is not configured")
	}
	_, err := s.stores.Blocks.GetBlock(ctx, ownerUserID, blockedUserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get block: %w", err)
	}
	return true, nil
}

func (s *Service) areFriends(ctx context.Context, userID string, otherUserID string) (bool, error) {
	if s.stores.Friendships == nil {
		return false, fmt.Errorf("friendship store is not configured")
	}
	_, err := s.stores.Friendships.GetFriendship(ctx, userID, otherUserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get friendship: %w", err)
	}
	return true, nil
}

func (s *Service) pendingBetween(ctx context.Context, senderID string, receiverID string) (storage.FriendRequest, bool, error) {
	if s.stores.Requests == nil {
		return storage.FriendRequest{}, false, fmt.Errorf("request store is not configured")
	}
	request, err := s.stores.Requests.GetPendingRequestBetween(ctx, senderID, receiverID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.FriendRequest{}, false, nil
		}
		return storage.FriendRequest{}, false, fmt.Errorf("get pending request: %w", err)
	}
	return request, true, nil
}

// SendFriendRequest creates a pending request from sender to receiver.
func (s *Service) SendFriendRequest(ctx context.Context, senderID string, receiverID string) (storage.FriendRequest, error) {
	if err := ctx.Err(); err != nil {
		return storage.FriendRequest{}, err
	}
	senderID, receiverID, err := normalizePair(senderID, receiverID)
	if err != nil {
		return storage.FriendRequest{}, err
	}

	// A block in either direction makes the receiver unreachable. The sender
	// is not told which side blocked.
	for _, pair := range [][2]string{{receiverID, senderID}, {senderID, receiverID}} {
		blocked, err := s.isBlocked(ctx, pair[0], pair[1])
		if err != nil {
			return storage.FriendRequest{}, err
		}
		if blocked {
			return storage.FriendRequest{}, apperrors.New(
				apperrors.CodeNotFound,
				"user is not available",
			)
		}
	}

	friends, err := s.areFriends(ctx, senderID, receiverID)
	if err != nil {
		return storage.FriendRequest{}, err
	}
	if friends {
		return storage.FriendRequest{}, apperrors.New(
			apperrors.CodeFriendshipExists,
			"users are already friends",
		)
	}

	for _, pair := range [][2]string{{senderID, receiverID}, {receiverID, senderID}} {
		if _, found, err := s.pendingBetween(ctx, pair[0], pair[1]); err != nil {
			return storage.FriendRequest{}, err
		} else if found {
			return storage.FriendRequest{}, apperrors.WithMetadata(
				apperrors.CodeFriendRequestDuplicate,
				"a pending request already exists for this pair",
				map[string]string{"SenderID": pair[0]},
			)
		}
	}

	requestID, err := s.idGenerator()
	if err != nil {
		return storage.FriendRequest{}, fmt.Errorf("generate request id: %w", err)
	}
	now := s.clock().UTC()
	request := storage.FriendRequest{
		ID:         requestID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     storage.RequestStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.stores.Requests.CreateFriendRequest(ctx, request); err != nil {
		return storage.FriendRequest{}, fmt.Errorf("persist request: %w", err)
	}
	return request, nil
}

// loadOwnRequest returns the request when it exists and the given user sits on
// the given side of it. Requests belonging to other users read as missing.
func (s *Service) loadOwnRequest(ctx context.Context, requestID string, userID string, receiverSide bool) (storage.FriendRequest, error) {
	if s.stores.Requests == nil {
		return storage.FriendRequest{}, fmt.Errorf("request store is not configured")
	}
	requestID = strings.TrimSpace(requestID)
	userID = strings.TrimSpace(userID)
	if requestID == "" {
		return storage.FriendRequest{}, fmt.Errorf("request id is required")
	}
	if userID == "" {
		return storage.FriendRequest{}, fmt.Errorf("user id is required")
	}

	request, err := s.stores.Requests.GetFriendRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.FriendRequest{}, apperrors.New(
				apperrors.CodeFriendRequestNotFound,
				"friend request not found",
			)
		}
		return storage.FriendRequest{}, fmt.Errorf("get request: %w", err)
	}
	owner := request.SenderID
	if receiverSide {
		owner = request.ReceiverID
	}
	if owner != userID {
		return storage.FriendRequest{}, apperrors.New(
			apperrors.CodeFriendRequestNotFound,
			"friend request not found",
		)
	}
	if request.Status != storage.RequestStatusPending {
		return storage.FriendRequest{}, apperrors.WithMetadata(
			apperrors.CodeFriendRequestInvalidStatus,
			"friend request has already been resolved",
			map[string]string{"Status": storage.RequestStatusLabel(request.Status)},
		)
	}
	return request, nil
}

// AcceptFriendRequest resolves a pending request into a friendship.
func (s *Service) AcceptFriendRequest(ctx context.Context, requestID string, receiverID string) (storage.Friendship, error) {
	if err := ctx.Err(); err != nil {
		return storage.Friendship{}, err
	}
	request, err := s.loadOwnRequest(ctx, requestID, receiverID, true)
	if err != nil {
		return storage.Friendship{}, err
	}

	now := s.clock().UTC()
	userAID, userBID := storage.CanonicalPair(request.SenderID, request.ReceiverID)
	friendship := storage.Friendship{
		UserAID:   userAID,
		UserBID:   userBID,
		CreatedAt: now,
	}
	// Resolve the request before writing the friendship edge, so a write
	// failure can never leave a friendship alongside a still-pending request.
	if err := s.stores.Requests.UpdateFriendRequestStatus(ctx, request.ID, storage.RequestStatusAccepted, now); err != nil {
		return storage.Friendship{}, fmt.Errorf("resolve request: %w", err)
	}
	if err := s.stores.Friendships.PutFriendship(ctx, friendship); err != nil {
		if !errors.Is(err, storage.ErrAlreadyExists) {
			return storage.Friendship{}, fmt.Errorf("persist friendship: %w", err)
		}
	}
	return friendship, nil
}

// RejectFriendRequest declines a pending request. The request row is kept so
// a reject is distinguishable from a cancel.
func (s *Service) RejectFriendRequest(ctx context.Context, requestID string, receiverID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	request, err := s.loadOwnRequest(ctx, requestID, receiverID, true)
	if err != nil {
		return err
	}
	if err := s.stores.Requests.UpdateFriendRequestStatus(ctx, request.ID, storage.RequestStatusRejected, s.clock().UTC()); err != nil {
		return fmt.Errorf("resolve request: %w", err)
	}
	return nil
}

// CancelFriendRequest withdraws the sender's own pending request.
func (s *Service) CancelFriendRequest(ctx context.Context, requestID string, senderID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	request, err := s.loadOwnRequest(ctx, requestID, senderID, false)
	if err != nil {
		return err
	}
	if err := s.stores.Requests.DeleteFriendRequest(ctx, request.ID); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return nil
}

// Unfriend removes an existing friendship.
func (s *Service) Unfriend(ctx context.Context, userID string, otherUserID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	userID, otherUserID, err := normalizePair(userID, otherUserID)
	if err != nil {
		return err
	}
	if s.stores.Friendships == nil {
		return fmt.Errorf("friendship store is not configured")
	}
	if err := s.stores.Friendships.DeleteFriendship(ctx, userID, otherUserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "friendship not found")
		}
		return fmt.Errorf("delete friendship: %w", err)
	}
	return nil
}

// BlockUser records a directed block and severs the pair's friendship and any
// pending requests. Blocking an already blocked user is a no-op.
func (s *Service) BlockUser(ctx context.Context, ownerUserID string, blockedUserID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ownerUserID, blockedUserID, err := normalizePair(ownerUserID, blockedUserID)
	if err != nil {
		return err
	}
	if s.stores.Blocks == nil {
		return fmt.Errorf("block store is not configured")
	}

	if err := s.stores.Blocks.PutBlock(ctx, storage.Block{
		OwnerUserID:   ownerUserID,
		BlockedUserID: blockedUserID,
		CreatedAt:     s.clock().UTC(),
	}); err != nil {
		return fmt.Errorf("persist block: %w", err)
	}

	if s.stores.Friendships != nil {
		if err := s.stores.Friendships.DeleteFriendship(ctx, ownerUserID, blockedUserID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("sever friendship: %w", err)
		}
	}
	for _, pair := range [][2]string{{ownerUserID, blockedUserID}, {blockedUserID, ownerUserID}} {
		request, found, err := s.pendingBetween(ctx, pair[0], pair[1])
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		if err := s.stores.Requests.DeleteFriendRequest(ctx, request.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("sever pending request: %w", err)
		}
	}
	return nil
}

// UnblockUser removes a directed block. Unblocking a user who was never
// blocked is a no-op.
func (s *Service) UnblockUser(ctx context.Context, ownerUserID string, blockedUserID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ownerUserID, blockedUserID, err := normalizePair(ownerUserID, blockedUserID)
	if err != nil {
		return err
	}
	if s.stores.Blocks == nil {
		return fmt.Errorf("block store is not configured")
	}
	if err := s.stores.Blocks.DeleteBlock(ctx, ownerUserID, blockedUserID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete block: %w", err)
	}
	return nil
}

// Classify labels the pair from the given user's point of view.
func (s *Service) Classify(ctx context.Context, userID string, otherUserID string) (relation.Kind, error) {
	if err := ctx.Err(); err != nil {
		return relation.KindUnspecified, err
	}
	userID, otherUserID, err := normalizePair(userID, otherUserID)
	if err != nil {
		return relation.KindUnspecified, err
	}

	var facts relation.Facts
	if facts.BlockedByThem, err = s.isBlocked(ctx, otherUserID, userID); err != nil {
		return relation.KindUnspecified, err
	}
	if facts.BlockedByMe, err = s.isBlocked(ctx, userID, otherUserID); err != nil {
		return relation.KindUnspecified, err
	}
	if facts.Friends, err = s.areFriends(ctx, userID, otherUserID); err != nil {
		return relation.KindUnspecified, err
	}
	if _, facts.PendingReceived, err = s.pendingBetween(ctx, otherUserID, userID); err != nil {
		return relation.KindUnspecified, err
	}
	if _, facts.PendingSent, err = s.pendingBetween(ctx, userID, otherUserID); err != nil {
		return relation.KindUnspecified, err
	}
	return relation.Classify(facts), nil
}

// ListFriends returns one page of the user's friendships.
func (s *Service) ListFriends(ctx context.Context, userID string, pageSize int, pageToken string) (storage.FriendshipPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.FriendshipPage{}, err
	}
	if s.stores.Friendships == nil {
		return storage.FriendshipPage{}, fmt.Errorf("friendship store is not configured")
	}
	pageSize = pagination.ClampPageSize(pageSize, listPageSizes)
	return s.stores.Friendships.ListFriendships(ctx, userID, pageSize, pageToken)
}

// ListPendingRequests returns one page of requests awaiting the user.
func (s *Service) ListPendingRequests(ctx context.Context, receiverID string, pageSize int, pageToken string) (storage.FriendRequestPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.FriendRequestPage{}, err
	}
	if s.stores.Requests == nil {
		return storage.FriendRequestPage{}, fmt.Errorf("request store is not configured")
	}
	pageSize = pagination.ClampPageSize(pageSize, listPageSizes)
	return s.stores.Requests.ListPendingRequestsByReceiver(ctx, receiverID, pageSize, pageToken)
}
