package errors

import "errors"

var (
	// ErrUserNotFound indicates the requested user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrVideoNotFound indicates the requested video does not exist
	ErrVideoNotFound = errors.New("video not found")

	// ErrVideoNotPublished indicates the video is not available for purchase
	ErrVideoNotPublished = errors.New("video is not published")

	// ErrSelfPurchase indicates a creator attempted to buy their own video
	ErrSelfPurchase = errors.New("creators cannot purchase their own videos")

	// ErrAlreadyOwned indicates the viewer already holds a completed purchase
	ErrAlreadyOwned = errors.New("video already purchased")

	// ErrChannelNotFound indicates the creator has no linked channel
	ErrChannelNotFound = errors.New("no channel linked for creator")

	// ErrNotOwner indicates the caller does not own the resource
	ErrNotOwner = errors.New("caller does not own this resource")
)
