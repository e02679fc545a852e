package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	handlers "github.com/clipmarket/clipmarket/internal/adapter/handler/http"
	"github.com/clipmarket/clipmarket/internal/domain/model"
	"github.com/clipmarket/clipmarket/internal/middleware/auth"
)

const testJWTSecret = "test-jwt-secret"

// MockVideoRepository is a mock implementation of VideoRepository
type MockVideoRepository struct {
	mock.Mock
}

func (m *MockVideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Video), args.Error(1)
}

func (m *MockVideoRepository) Create(ctx context.Context, video *model.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *MockVideoRepository) Update(ctx context.Context, video *model.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *MockVideoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVideoRepository) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	args := m.Called(ctx, id, published)
	return args.Error(0)
}

func (m *MockVideoRepository) ListPublished(ctx context.Context, params model.PaginationParams) ([]*model.Video, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*model.Video), args.Get(1).(int64), args.Error(2)
}

func (m *MockVideoRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, params model.PaginationParams) ([]*model.Video, int64, error) {
	args := m.Called(ctx, creatorID, params)
	return args.Get(0).([]*model.Video), args.Get(1).(int64), args.Error(2)
}

// activeAccounts resolves every token subject to an enabled account.
type activeAccounts struct{}

func (activeAccounts) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return &model.User{ID: id}, nil
}

func bearerToken(userID uuid.UUID, role string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	})
	signed, _ := token.SignedString([]byte(testJWTSecret))
	return signed
}

// getVideo runs GetVideo behind the optional-token middleware the route uses.
func getVideo(t *testing.T, videoRepo *MockVideoRepository, videoID uuid.UUID, token string) *httptest.ResponseRecorder {
	t.Helper()

	handler := handlers.NewVideoHandler(zap.NewNop(), videoRepo)
	optional := auth.OptionalJWT(auth.JWTConfig{
		Secret: testJWTSecret,
		Logger: zap.NewNop(),
		Users:  activeAccounts{},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+videoID.String(), nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/videos/:id")
	c.SetParamNames("id")
	c.SetParamValues(videoID.String())

	err := optional(handler.GetVideo)(c)
	assert.NoError(t, err)
	return rec
}

func TestVideoHandler_GetVideoVisibility(t *testing.T) {
	creatorID := uuid.New()
	videoID := uuid.New()

	draft := func() *model.Video {
		return &model.Video{
			ID:        videoID,
			CreatorID: creatorID,
			Title:     "unreleased cut",
			Published: false,
		}
	}

	t.Run("published video is public", func(t *testing.T) {
		videoRepo := new(MockVideoRepository)
		videoRepo.On("GetByID", mock.Anything, videoID).Return(&model.Video{
			ID:        videoID,
			CreatorID: creatorID,
			Title:     "released",
			Published: true,
		}, nil)

		rec := getVideo(t, videoRepo, videoID, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "released")
	})

	t.Run("unpublished video 404s for anonymous", func(t *testing.T) {
		videoRepo := new(MockVideoRepository)
		videoRepo.On("GetByID", mock.Anything, videoID).Return(draft(), nil)

		rec := getVideo(t, videoRepo, videoID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("owner sees their unpublished video", func(t *testing.T) {
		videoRepo := new(MockVideoRepository)
		videoRepo.On("GetByID", mock.Anything, videoID).Return(draft(), nil)

		rec := getVideo(t, videoRepo, videoID, bearerToken(creatorID, "creator"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "unreleased cut")
	})

	t.Run("admin sees any unpublished video", func(t *testing.T) {
		videoRepo := new(MockVideoRepository)
		videoRepo.On("GetByID", mock.Anything, videoID).Return(draft(), nil)

		rec := getVideo(t, videoRepo, videoID, bearerToken(uuid.New(), "admin"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other viewers 404 on unpublished videos", func(t *testing.T) {
		videoRepo := new(MockVideoRepository)
		videoRepo.On("GetByID", mock.Anything, videoID).Return(draft(), nil)

		rec := getVideo(t, videoRepo, videoID, bearerToken(uuid.New(), "viewer"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
