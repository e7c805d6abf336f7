package api

import (
	"net/http"

	"seeforme/caption-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Samples returns the curated demonstration videos shown on the
// landing page. Public, cached, read-only
func (a *API) Samples(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	samples := []model.SampleVideo{}

	err := a.DB.
		Where("active = ?", true).
		Order("display_order asc").
		Find(&samples).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch sample videos", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, samples)
}
