// api/controller/video_controller_test.go
package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurukul-labs/gurukul/api/controller"
	gurukul_errors "github.com/gurukul-labs/gurukul/api/errors"
	logger "github.com/gurukul-labs/gurukul/api/logging"
	"github.com/gurukul-labs/gurukul/api/model"
	"github.com/gurukul-labs/gurukul/api/scope"
	"github.com/gurukul-labs/gurukul/api/util"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitLogger(os.TempDir(), "error")
	defer logger.Sync()
	os.Exit(m.Run())
}

func uintPtr(v uint) *uint { return &v }

// stubVideoService returns canned results so the tests can drive every
// status-code branch of the controller.
type stubVideoService struct {
	video      *model.Video
	videos     []*model.Video
	stats      []model.VideoCategoryStat
	check      scope.Check
	err        error
	lastSearch model.VideoSearchCriteria
}

func (s *stubVideoService) CreateVideo(ctx context.Context, video model.Video, sc scope.Context) (*model.Video, error) {
	return s.video, s.err
}

func (s *stubVideoService) UpdateVideo(ctx context.Context, video model.Video, sc scope.Context) (*model.Video, error) {
	return s.video, s.err
}

func (s *stubVideoService) DeleteVideo(ctx context.Context, id uint, sc scope.Context) error {
	return s.err
}

func (s *stubVideoService) BulkDeleteVideos(ctx context.Context, req model.VideoBulkDeleteRequest, sc scope.Context) (scope.Check, error) {
	return s.check, s.err
}

func (s *stubVideoService) GetVideo(ctx context.Context, id uint, sc scope.Context) (*model.Video, error) {
	return s.video, s.err
}

func (s *stubVideoService) SearchVideos(ctx context.Context, criteria model.VideoSearchCriteria, sc scope.Context) ([]*model.Video, error) {
	s.lastSearch = criteria
	return s.videos, s.err
}

func (s *stubVideoService) VideoStats(ctx context.Context, sc scope.Context) ([]model.VideoCategoryStat, error) {
	return s.stats, s.err
}

// newVideoRouter mounts the controller behind a middleware that injects the
// given scope, standing in for the auth middleware.
func newVideoRouter(svc *stubVideoService, sc *scope.Context) *gin.Engine {
	r := gin.New()
	group := r.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		if sc != nil {
			c.Set(util.ScopeContextKey, *sc)
		}
		c.Next()
	})
	controller.NewVideoController(svc).RegisterRoutes(group)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func adminScope() scope.Context {
	return scope.NewContext(10, scope.RoleInstituteAdmin, uintPtr(7), uintPtr(1))
}

func TestCreateVideo_Created(t *testing.T) {
	svc := &stubVideoService{video: &model.Video{ID: 1, Title: "Fractions"}}
	sc := adminScope()
	r := newVideoRouter(svc, &sc)

	w := doRequest(t, r, http.MethodPost, "/api/v1/videos", model.Video{Title: "Fractions", PlaybackURL: "https://v/1"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var created model.Video
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, uint(1), created.ID)
}

func TestCreateVideo_MissingScope(t *testing.T) {
	svc := &stubVideoService{}
	r := newVideoRouter(svc, nil)

	w := doRequest(t, r, http.MethodPost, "/api/v1/videos", model.Video{Title: "Fractions"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateVideo_InvalidData(t *testing.T) {
	svc := &stubVideoService{err: gurukul_errors.ErrInvalidVideoData}
	sc := adminScope()
	r := newVideoRouter(svc, &sc)

	w := doRequest(t, r, http.MethodPost, "/api/v1/videos", model.Video{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVideo_Statuses(t *testing.T) {
	sc := adminScope()

	tests := []struct {
		name string
		svc  *stubVideoService
		path string
		want int
	}{
		{"found", &stubVideoService{video: &model.Video{ID: 3}}, "/api/v1/videos/3", http.StatusOK},
		{"not found", &stubVideoService{err: gurukul_errors.ErrVideoNotFound}, "/api/v1/videos/3", http.StatusNotFound},
		{"out of scope", &stubVideoService{err: gurukul_errors.ErrScopeForbidden}, "/api/v1/videos/3", http.StatusForbidden},
		{"bad id", &stubVideoService{}, "/api/v1/videos/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newVideoRouter(tt.svc, &sc)
			w := doRequest(t, r, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestListVideos_QueryCriteria(t *testing.T) {
	svc := &stubVideoService{videos: []*model.Video{{ID: 1}}}
	sc := adminScope()
	r := newVideoRouter(svc, &sc)

	w := doRequest(t, r, http.MethodGet, "/api/v1/videos?category=addition&institute_id=7&limit=5&offset=10", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "addition", svc.lastSearch.Category)
	require.NotNil(t, svc.lastSearch.InstituteID)
	assert.Equal(t, uint(7), *svc.lastSearch.InstituteID)
	assert.Equal(t, 5, svc.lastSearch.Limit)
	assert.Equal(t, 10, svc.lastSearch.Offset)
}

func TestListVideos_BadQueryParam(t *testing.T) {
	svc := &stubVideoService{}
	sc := adminScope()
	r := newVideoRouter(svc, &sc)

	w := doRequest(t, r, http.MethodGet, "/api/v1/videos?institute_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListVideos_ForeignFilterForbidden(t *testing.T) {
	svc := &stubVideoService{err: gurukul_errors.ErrScopeForbidden}
	sc := adminScope()
	r := newVideoRouter(svc, &sc)

	w := doRequest(t, r, http.MethodGet, "/api/v1/videos?institute_id=99", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBulkDeleteVideos_PartialAuthorizationResponse(t *testing.T) {
	check := scope.Check{ValidIDs: []uint{1, 2}, InvalidIDs: []uint{3}}
	svc := &stubVideoService{check: check, err: check.PartialError()}
	sc := adminScope()
	r := newVideoRouter(svc, &sc)

	w := doRequest(t, r, http.MethodPost, "/api/v1/videos/bulk-delete",
		model.VideoBulkDeleteRequest{IDs: []uint{1, 2, 3}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var body struct {
		Details gurukul_errors.PartialAuthorizationError `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Details.RequestedCount)
	assert.Equal(t, 1, body.Details.InvalidCount)
}

func TestBulkDeleteVideos_Success(t *testing.T) {
	svc := &stubVideoService{check: scope.Check{ValidIDs: []uint{1, 2}}}
	sc := adminScope()
	r := newVideoRouter(svc, &sc)

	w := doRequest(t, r, http.MethodPost, "/api/v1/videos/bulk-delete",
		model.VideoBulkDeleteRequest{IDs: []uint{1, 2}, Partial: true})
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		DeletedIDs   []uint `json:"deleted_ids"`
		InvalidCount int    `json:"invalid_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []uint{1, 2}, body.DeletedIDs)
	assert.Equal(t, 0, body.InvalidCount)
}

func TestBulkDeleteVideos_EmptyIDs(t *testing.T) {
	svc := &stubVideoService{}
	sc := adminScope()
	r := newVideoRouter(svc, &sc)

	w := doRequest(t, r, http.MethodPost, "/api/v1/videos/bulk-delete",
		model.VideoBulkDeleteRequest{IDs: []uint{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBulkDeleteVideos_Busy(t *testing.T) {
	svc := &stubVideoService{err: gurukul_errors.ErrResourceBusy}
	sc := adminScope()
	r := newVideoRouter(svc, &sc)

	w := doRequest(t, r, http.MethodPost, "/api/v1/videos/bulk-delete",
		model.VideoBulkDeleteRequest{IDs: []uint{1}})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteVideo_NoContent(t *testing.T) {
	svc := &stubVideoService{}
	sc := adminScope()
	r := newVideoRouter(svc, &sc)

	w := doRequest(t, r, http.MethodDelete, "/api/v1/videos/3", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestVideoStats_OK(t *testing.T) {
	svc := &stubVideoService{stats: []model.VideoCategoryStat{{Category: "addition", Count: 2}}}
	sc := adminScope()
	r := newVideoRouter(svc, &sc)

	w := doRequest(t, r, http.MethodGet, "/api/v1/videos/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var stats []model.VideoCategoryStat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, int64(2), stats[0].Count)
}
