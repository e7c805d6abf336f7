package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"seeforme/caption-api/caption"
	"seeforme/caption-api/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }

func (failingProvider) Generate(context.Context, string) (string, error) {
	return "", caption.ErrGeneration
}

func TestVideoUpload(t *testing.T) {
	a := newTestAPI(t, nil)
	token, _ := registerUser(t, a)

	w := uploadVideo(t, a, token, "holiday clip.mp4", "", mp4Header)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "holiday clip", body["title"])
	assert.Equal(t, "holiday clip.mp4", body["original_filename"])
	assert.Equal(t, "mp4", body["format"])
	assert.Equal(t, float64(len(mp4Header)), body["fileSize"])
	assert.Contains(t, body["video_url"], "/uploads/videos/")
	assert.NotContains(t, body["video_url"], "holiday")
	assert.NotEmpty(t, body["caption"])
	assert.NotContains(t, w.Body.String(), "file_path")

	// The bytes must be on disk and reachable through the public URL
	p := storedPath(body["video_url"].(string))
	assert.FileExists(t, p)

	w = do(t, a, http.MethodGet, body["video_url"].(string), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mp4Header, w.Body.Bytes())
}

func TestVideoUploadExplicitTitle(t *testing.T) {
	a := newTestAPI(t, nil)
	token, _ := registerUser(t, a)

	w := uploadVideo(t, a, token, "raw.mp4", "My Vacation", mp4Header)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "My Vacation", decode(t, w)["title"])
}

func TestVideoUploadRejectsBadFiles(t *testing.T) {
	a := newTestAPI(t, nil)
	token, _ := registerUser(t, a)

	w := uploadVideo(t, a, token, "notes.txt", "", []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadVideo(t, a, token, "sneaky.mp4", "", []byte("not actually a video"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing may be left on disk after a rejection
	entries, err := os.ReadDir(filepath.Join(viper.GetString("storage.root"), "videos"))
	if err == nil {
		assert.Empty(t, entries)
	} else {
		assert.True(t, os.IsNotExist(err))
	}
}

func TestVideoUploadRequiresFile(t *testing.T) {
	a := newTestAPI(t, nil)
	token, _ := registerUser(t, a)

	w := do(t, a, http.MethodPost, "/api/videos/upload", token, gin.H{"title": "no file"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// A caption failure must roll the stored file back and leave no row
func TestVideoUploadCaptionFailure(t *testing.T) {
	a := newTestAPI(t, failingProvider{})
	token, _ := registerUser(t, a)

	w := uploadVideo(t, a, token, "doomed.mp4", "", mp4Header)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Caption generation failed", decode(t, w)["error"])

	entries, err := os.ReadDir(filepath.Join(viper.GetString("storage.root"), "videos"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	var count int64
	require.NoError(t, a.DB.Model(model.Video{}).Count(&count).Error)
	assert.Zero(t, count)
}

// seedVideos inserts rows directly with strictly decreasing age so the
// expected order is unambiguous
func seedVideos(t *testing.T, a *API, userID string, n int) []string {
	t.Helper()

	ids := make([]string, n)
	base := time.Now().Add(-time.Duration(n) * time.Minute)

	for i := range n {
		v := model.Video{
			ID:           uuid.NewString(),
			UserID:       userID,
			Title:        fmt.Sprintf("clip %d", i),
			Caption:      "a caption",
			OriginalName: fmt.Sprintf("clip%d.mp4", i),
			FilePath:     filepath.Join(viper.GetString("storage.root"), "videos", fmt.Sprintf("clip%d.mp4", i)),
			VideoURL:     fmt.Sprintf("/uploads/videos/clip%d.mp4", i),
			Size:         100,
			Format:       "mp4",
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, a.DB.Create(&v).Error)
		ids[i] = v.ID
	}

	return ids
}

func TestVideoHistoryPagination(t *testing.T) {
	a := newTestAPI(t, nil)
	token, id := registerUser(t, a)

	ids := seedVideos(t, a, id, 7)

	collect := func(page int) []string {
		w := do(t, a, http.MethodGet, fmt.Sprintf("/api/videos/history?page=%d&limit=3", page), token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decode(t, w)
		assert.Equal(t, float64(7), body["total"])
		assert.Equal(t, float64(page), body["page"])
		assert.Equal(t, float64(3), body["limit"])

		raw := body["videos"].([]any)
		out := make([]string, len(raw))
		for i, v := range raw {
			out[i] = v.(map[string]any)["id"].(string)
		}
		return out
	}

	// Newest first, split 3/3/1, page past the end is empty
	assert.Equal(t, []string{ids[6], ids[5], ids[4]}, collect(1))
	assert.Equal(t, []string{ids[3], ids[2], ids[1]}, collect(2))
	assert.Equal(t, []string{ids[0]}, collect(3))
	assert.Empty(t, collect(4))
}

func TestVideoHistoryDefaultsAndBounds(t *testing.T) {
	a := newTestAPI(t, nil)
	token, _ := registerUser(t, a)

	w := do(t, a, http.MethodGet, "/api/videos/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(50), body["limit"])
	assert.Equal(t, float64(0), body["total"])
	assert.NotNil(t, body["videos"])

	for _, q := range []string{"page=0", "page=abc", "limit=0", "limit=101", "limit=x"} {
		w = do(t, a, http.MethodGet, "/api/videos/history?"+q, token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestVideoHistoryIsOwnerScoped(t *testing.T) {
	a := newTestAPI(t, nil)
	aliceToken, aliceID := registerUser(t, a)
	bobToken, _ := registerUser(t, a)

	seedVideos(t, a, aliceID, 2)

	w := do(t, a, http.MethodGet, "/api/videos/history", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["total"])

	w = do(t, a, http.MethodGet, "/api/videos/history", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["total"])
}

// Foreign records must be indistinguishable from missing ones
func TestVideoFetchOwnership(t *testing.T) {
	a := newTestAPI(t, nil)
	aliceToken, aliceID := registerUser(t, a)
	bobToken, _ := registerUser(t, a)

	ids := seedVideos(t, a, aliceID, 1)

	w := do(t, a, http.MethodGet, "/api/videos/"+ids[0], aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ids[0], decode(t, w)["id"])

	w = do(t, a, http.MethodGet, "/api/videos/"+ids[0], bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, a, http.MethodGet, "/api/videos/"+uuid.NewString(), aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVideoDelete(t *testing.T) {
	a := newTestAPI(t, nil)
	token, _ := registerUser(t, a)

	w := uploadVideo(t, a, token, "short lived.mp4", "", mp4Header)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	id := body["id"].(string)
	p := storedPath(body["video_url"].(string))
	require.FileExists(t, p)

	w = do(t, a, http.MethodDelete, "/api/videos/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NoFileExists(t, p)

	w = do(t, a, http.MethodGet, "/api/videos/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Deleting again answers like it never existed
	w = do(t, a, http.MethodDelete, "/api/videos/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVideoDeleteForeignRecord(t *testing.T) {
	a := newTestAPI(t, nil)
	_, aliceID := registerUser(t, a)
	bobToken, _ := registerUser(t, a)

	ids := seedVideos(t, a, aliceID, 1)

	w := do(t, a, http.MethodDelete, "/api/videos/"+ids[0], bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	require.NoError(t, a.DB.Model(model.Video{}).Where("id = ?", ids[0]).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestHistoryClear(t *testing.T) {
	a := newTestAPI(t, nil)
	token, _ := registerUser(t, a)
	otherToken, otherID := registerUser(t, a)

	seedVideos(t, a, otherID, 1)

	var paths []string
	for i := range 3 {
		w := uploadVideo(t, a, token, fmt.Sprintf("clip %d.mp4", i), "", mp4Header)
		require.Equal(t, http.StatusCreated, w.Code)
		paths = append(paths, storedPath(decode(t, w)["video_url"].(string)))
	}

	w := do(t, a, http.MethodDelete, "/api/videos/history/clear", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	for _, p := range paths {
		assert.NoFileExists(t, p)
	}

	w = do(t, a, http.MethodGet, "/api/videos/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["total"])

	// The other user's history is untouched
	w = do(t, a, http.MethodGet, "/api/videos/history", otherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	// Clearing an empty history is still a success
	w = do(t, a, http.MethodDelete, "/api/videos/history/clear", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSamples(t *testing.T) {
	a := newTestAPI(t, nil)

	// Unique query keeps the response cache out of other tests' way
	w := do(t, a, http.MethodGet, "/api/videos/samples?v=seeded", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var samples []model.SampleVideo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &samples))
	require.Len(t, samples, 3)

	for i, s := range samples {
		assert.Equal(t, i+1, s.DisplayOrder)
		assert.NotEmpty(t, s.Title)
		assert.NotEmpty(t, s.Caption)
		assert.NotEmpty(t, s.VideoURL)
	}
}

func TestSamplesHidesInactive(t *testing.T) {
	a := newTestAPI(t, nil)

	require.NoError(t, a.DB.Model(model.SampleVideo{}).
		Where("display_order = ?", 2).
		Update("active", false).
		Error)

	w := do(t, a, http.MethodGet, "/api/videos/samples?v=inactive", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var samples []model.SampleVideo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &samples))
	assert.Len(t, samples, 2)
}
