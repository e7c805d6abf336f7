package api

import (
	"errors"
	"net/http"

	"seeforme/caption-api/model"
	"seeforme/caption-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VideoDelete removes one record owned by the caller. The row goes
// first, then the stored file: a file that refuses to die is only
// logged because the database decides what is visible
func (a *API) VideoDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	videoID := c.Param("id")
	if videoID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "ID is missing",
			"requestID": requestID,
		})
		return
	}

	var video model.Video

	err := a.DB.
		Where("user_id = ? AND id = ?", userID, videoID).
		First(&video).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Foreign records answer the same as missing ones
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "Video not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if video exists", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.DB.
		Where("user_id = ? AND id = ?", userID, videoID).
		Delete(model.Video{}).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete video record", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	service.DeleteFile(video.FilePath)
	if video.ThumbnailURL != "" {
		service.DeleteFile(service.ThumbnailPath(video.FilePath))
	}

	c.Status(http.StatusNoContent)
}
