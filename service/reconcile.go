package service

import (
	"os"
	"path/filepath"
	"time"

	"seeforme/caption-api/model"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// orphanGrace keeps the sweep away from files an in-flight upload may
// still be captioning. Nothing younger than this is ever touched
const orphanGrace = time.Hour

// StartReconciler schedules a periodic sweep that removes stored
// videos no database row points at. Such orphans appear when the
// process dies between writing the bytes and inserting the row; the
// database stays the source of truth and the disk is made to match it.
func StartReconciler(db *gorm.DB) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(viper.GetString("storage.sweep_schedule"), func() {
		SweepOrphans(db)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}

// SweepOrphans does one pass over the video storage directory
func SweepOrphans(db *gorm.DB) {
	dir := filepath.Join(viper.GetString("storage.root"), "videos")

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Error("Orphan sweep failed to read storage directory", zap.Error(err))
		}
		return
	}

	removed := 0

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		if time.Since(info.ModTime()) < orphanGrace {
			continue
		}

		p := filepath.Join(dir, e.Name())

		var count int64
		err = db.Model(model.Video{}).
			Where("file_path = ? OR thumbnail_url LIKE ?", p, "%/"+e.Name()).
			Count(&count).
			Error
		if err != nil {
			zap.L().Error("Orphan sweep query failed", zap.Error(err))
			return
		}

		if count > 0 {
			continue
		}

		if DeleteFile(p) {
			removed++
		}
	}

	if removed > 0 {
		zap.L().Info("Orphan sweep removed files", zap.Int("count", removed))
	}
}
