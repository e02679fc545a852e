package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/clipmarket/clipmarket/internal/domain/errors"
	"github.com/clipmarket/clipmarket/internal/domain/model"
	domainRepo "github.com/clipmarket/clipmarket/internal/domain/repository"
	"github.com/clipmarket/clipmarket/internal/middleware/auth"
)

// VideoHandler exposes video catalog and creator CRUD endpoints.
type VideoHandler struct {
	logger    *zap.Logger
	videoRepo domainRepo.VideoRepository
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(logger *zap.Logger, videoRepo domainRepo.VideoRepository) *VideoHandler {
	return &VideoHandler{
		logger:    logger,
		videoRepo: videoRepo,
	}
}

type CreateVideoRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description" validate:"max=5000"`
	PriceCents      int64  `json:"price_cents" validate:"required,gt=0"`
	Currency        string `json:"currency" validate:"required,len=3,uppercase"`
	StorageKey      string `json:"storage_key" validate:"required,max=512"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
}

type UpdateVideoRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description" validate:"max=5000"`
	PriceCents      int64  `json:"price_cents" validate:"required,gt=0"`
	Currency        string `json:"currency" validate:"required,len=3,uppercase"`
	StorageKey      string `json:"storage_key" validate:"required,max=512"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
}

// CreateVideo registers a new video for the authenticated creator.
func (h *VideoHandler) CreateVideo(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	var req CreateVideoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	video := &model.Video{
		CreatorID:       user.UserID,
		Title:           req.Title,
		Description:     req.Description,
		PriceCents:      req.PriceCents,
		Currency:        req.Currency,
		StorageKey:      req.StorageKey,
		DurationSeconds: req.DurationSeconds,
	}

	if err := h.videoRepo.Create(c.Request().Context(), video); err != nil {
		h.logger.Error("Failed to create video",
			zap.String("creator_id", user.UserID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create video"})
	}

	return c.JSON(http.StatusCreated, video)
}

// UpdateVideo rewrites video metadata; only the owner or an admin may do so.
func (h *VideoHandler) UpdateVideo(c echo.Context) error {
	user, video, ok := h.ownedVideo(c)
	if !ok {
		return nil
	}

	var req UpdateVideoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	video.Title = req.Title
	video.Description = req.Description
	video.PriceCents = req.PriceCents
	video.Currency = req.Currency
	video.StorageKey = req.StorageKey
	video.DurationSeconds = req.DurationSeconds

	if err := h.videoRepo.Update(c.Request().Context(), video); err != nil {
		h.logger.Error("Failed to update video",
			zap.String("video_id", video.ID.String()),
			zap.String("user_id", user.UserID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update video"})
	}

	return c.JSON(http.StatusOK, video)
}

// DeleteVideo removes a video listing.
func (h *VideoHandler) DeleteVideo(c echo.Context) error {
	_, video, ok := h.ownedVideo(c)
	if !ok {
		return nil
	}

	if err := h.videoRepo.Delete(c.Request().Context(), video.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete video"})
	}

	return c.NoContent(http.StatusNoContent)
}

// PublishVideo makes a video purchasable.
func (h *VideoHandler) PublishVideo(c echo.Context) error {
	return h.setPublished(c, true)
}

// UnpublishVideo takes a video off the catalog. Existing purchases keep access.
func (h *VideoHandler) UnpublishVideo(c echo.Context) error {
	return h.setPublished(c, false)
}

func (h *VideoHandler) setPublished(c echo.Context, published bool) error {
	_, video, ok := h.ownedVideo(c)
	if !ok {
		return nil
	}

	if err := h.videoRepo.SetPublished(c.Request().Context(), video.ID, published); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to change publication"})
	}

	video.Published = published
	return c.JSON(http.StatusOK, video)
}

// GetVideo returns one video; unpublished videos are visible to their owner
// and admins only.
func (h *VideoHandler) GetVideo(c echo.Context) error {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid video id"})
	}

	video, err := h.videoRepo.GetByID(c.Request().Context(), videoID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrVideoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get video"})
	}

	if !video.Published {
		user, err := auth.GetUserFromContext(c)
		if err != nil || (user.UserID != video.CreatorID && user.Role != string(model.RoleAdmin)) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": domainErrors.ErrVideoNotFound.Error()})
		}
	}

	return c.JSON(http.StatusOK, video)
}

// ListVideos returns the published catalog, newest first.
func (h *VideoHandler) ListVideos(c echo.Context) error {
	var params model.PaginationParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid pagination parameters"})
	}
	params.Validate()

	videos, total, err := h.videoRepo.ListPublished(c.Request().Context(), params)
	if err != nil {
		h.logger.Error("Failed to list videos", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list videos"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":       videos,
		"pagination": model.NewPaginationMeta(params.Page, params.Limit, total),
	})
}

// ListMyVideos returns every video of the authenticated creator, drafts included.
func (h *VideoHandler) ListMyVideos(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	var params model.PaginationParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid pagination parameters"})
	}
	params.Validate()

	videos, total, err := h.videoRepo.ListByCreator(c.Request().Context(), user.UserID, params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list videos"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":       videos,
		"pagination": model.NewPaginationMeta(params.Page, params.Limit, total),
	})
}

// ownedVideo loads the path video and enforces ownership. It writes the error
// response itself; ok is false when the caller must stop.
func (h *VideoHandler) ownedVideo(c echo.Context) (user *auth.AuthUser, video *model.Video, ok bool) {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
		return nil, nil, false
	}

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid video id"})
		return nil, nil, false
	}

	video, err = h.videoRepo.GetByID(c.Request().Context(), videoID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrVideoNotFound) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get video"})
		}
		return nil, nil, false
	}

	if video.CreatorID != user.UserID && user.Role != string(model.RoleAdmin) {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": domainErrors.ErrNotOwner.Error()})
		return nil, nil, false
	}

	return user, video, true
}
