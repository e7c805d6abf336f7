package api

import (
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"seeforme/caption-api/caption"
	"seeforme/caption-api/model"
	"seeforme/caption-api/service"
	"seeforme/caption-api/validators"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VideoUpload runs the whole pipeline for one submission:
// validate -> store -> caption -> persist -> respond. Any failure
// after the bytes hit the disk removes them again before the error
// goes out, so a failed request never leaves an orphan behind.
func (a *API) VideoUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	code, err := validators.VideoFileValidator(fh)
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate file", zap.Error(err), zap.String("requestID", requestID))
			err = errors.New("internal server error")
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = strings.TrimSuffix(fh.Filename, path.Ext(fh.Filename))
	}

	stored, err := service.SaveVideo(fh)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to store the uploaded file",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store upload", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Everything below must remove the stored bytes again on failure
	cleanup := func() {
		service.DeleteFile(stored.Path)
		service.DeleteFile(service.ThumbnailPath(stored.Path))
	}

	// Duration and thumbnail are best effort, the upload never fails
	// because of them
	duration := "0:00"
	if d, err := service.ProbeDuration(stored.Path); err == nil {
		duration = service.FormatDuration(d)
	} else {
		zap.L().Debug("Failed to probe video duration", zap.Error(err), zap.String("requestID", requestID))
	}

	thumbURL := ""
	thumbPath := service.ThumbnailPath(stored.Path)
	if err := service.MakeThumbnail(stored.Path, thumbPath); err == nil {
		thumbURL = strings.TrimSuffix(stored.URL, path.Ext(stored.URL)) + ".jpg"
	} else {
		zap.L().Debug("Failed to create thumbnail", zap.Error(err), zap.String("requestID", requestID))
	}

	capText, err := a.Captions.Generate(c.Request.Context(), stored.Path)
	if err != nil {
		cleanup()

		status := http.StatusInternalServerError
		msg := "Caption generation failed"

		if errors.Is(err, caption.ErrQueueFull) {
			status = http.StatusServiceUnavailable
			msg = "Caption service is busy, please retry"
		}

		c.AbortWithStatusJSON(status, gin.H{
			"error":     msg,
			"requestID": requestID,
		})

		zap.L().Error("Caption generation failed", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	video := model.Video{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        title,
		Caption:      capText,
		OriginalName: fh.Filename,
		FilePath:     stored.Path,
		VideoURL:     stored.URL,
		ThumbnailURL: thumbURL,
		Duration:     duration,
		Size:         stored.Size,
		Format:       strings.TrimPrefix(strings.ToLower(path.Ext(fh.Filename)), "."),
		CreatedAt:    time.Now(),
	}

	if err := a.DB.Create(&video).Error; err != nil {
		cleanup()

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save video record to db", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	zap.L().Info("Video uploaded",
		zap.String("id", video.ID),
		zap.String("provider", a.Captions.Provider().Name()),
		zap.Int64("size", video.Size),
		zap.String("requestID", requestID),
	)

	c.JSON(http.StatusCreated, video)
}
