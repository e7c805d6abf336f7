package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"seeforme/caption-api/caption"
	"seeforme/caption-api/db"
	"seeforme/caption-api/middleware"
	"seeforme/caption-api/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// Smallest byte sequence mimetype recognizes as video/mp4
var mp4Header = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2avc1mp41")

// newTestAPI wires a full API against a throwaway sqlite database and
// storage directory. A nil provider means the mock one.
func newTestAPI(t *testing.T, provider caption.Provider) *API {
	t.Helper()
	gin.SetMode(gin.TestMode)

	viper.Set("jwt.secret", "test-secret")
	viper.Set("jwt.expiry_hours", 24)
	viper.Set("upload.max_size", int64(1<<20))
	viper.Set("upload.allowed_extensions", []string{"mp4", "webm", "ogg"})
	viper.Set("storage.root", t.TempDir())
	viper.Set("storage.public_prefix", "/uploads")
	viper.Set("rate.rps", 1000)
	viper.Set("rate.burst", 1000)
	viper.Set("database.driver", "sqlite")
	viper.Set("database.dsn", filepath.Join(t.TempDir(), "test.db"))

	conn, err := db.New()
	require.NoError(t, err)

	if provider == nil {
		provider = caption.NewMock()
	}

	a := &API{
		DB:     conn,
		Router: gin.New(),
		Argon:  security.New(),
		Captions: caption.NewPool(provider, caption.PoolOpts{
			Workers:   1,
			QueueSize: 4,
			Timeout:   5 * time.Second,
		}),
	}

	a.Router.Use(gin.Recovery(), middleware.NewRequestIDMiddleware())
	a.registerRoutes()

	return a
}

// do performs one request against the test router. A non-nil body is
// sent as JSON, a non-empty token as a bearer header.
func do(t *testing.T, a *API, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

var userSeq int

// registerUser creates a fresh account and returns its token and ID
func registerUser(t *testing.T, a *API) (token, id string) {
	t.Helper()

	userSeq++
	w := do(t, a, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":     fmt.Sprintf("user%d@example.com", userSeq),
		"password":  "correct horse battery",
		"full_name": "Test User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	return body["token"].(string), body["id"].(string)
}

// uploadVideo posts one multipart upload and returns the response
func uploadVideo(t *testing.T, a *API, token, fileName, title string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)

	_, err = fw.Write(content)
	require.NoError(t, err)

	if title != "" {
		require.NoError(t, mw.WriteField("title", title))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/videos/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

// storedPath maps a public video URL back to its path on disk
func storedPath(videoURL string) string {
	return filepath.Join(viper.GetString("storage.root"), videoURL[len("/uploads/"):])
}
