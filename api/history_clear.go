package api

import (
	"net/http"

	"seeforme/caption-api/model"
	"seeforme/caption-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HistoryClear wipes the caller's whole upload history. Zero records
// is a successful no-op
func (a *API) HistoryClear(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var videos []model.Video

	err := a.DB.
		Where("user_id = ?", userID).
		Find(&videos).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list user videos", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if len(videos) > 0 {
		err = a.DB.
			Where("user_id = ?", userID).
			Delete(model.Video{}).
			Error
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to clear video history", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		for _, v := range videos {
			service.DeleteFile(v.FilePath)
			if v.ThumbnailURL != "" {
				service.DeleteFile(service.ThumbnailPath(v.FilePath))
			}
		}

		zap.L().Info("Cleared video history", zap.Int("count", len(videos)), zap.String("requestID", requestID))
	}

	c.Status(http.StatusNoContent)
}
