// Package db handles database connections and schema migrations
package db

import (
	"fmt"
	"seeforme/caption-api/model"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func New() (*gorm.DB, error) {
	var dial gorm.Dialector

	dsn := viper.GetString("database.dsn")

	switch viper.GetString("database.driver") {
	case "postgres":
		dial = postgres.Open(dsn)
	default:
		dial = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	err = db.AutoMigrate(model.User{}, model.Video{}, model.SampleVideo{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	if err := seedSamples(db); err != nil {
		return nil, err
	}

	return db, nil
}

// seedSamples inserts the default demonstration entries once. Admins
// manage the table directly afterwards, the app never writes to it again
func seedSamples(db *gorm.DB) error {
	var count int64

	err := db.Model(model.SampleVideo{}).Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to count sample videos, %w", err)
	}

	if count > 0 {
		return nil
	}

	samples := []model.SampleVideo{
		{
			ID:           uuid.NewString(),
			Title:        "Introduction to Screen Readers",
			Description:  "A short walkthrough of how screen readers present web content.",
			Caption:      "A presenter demonstrates screen reader navigation through a sample web page, reading headings and landmarks aloud.",
			VideoURL:     "/uploads/samples/screen-readers-intro.mp4",
			ThumbnailURL: "/uploads/samples/screen-readers-intro.jpg",
			Duration:     "3:41",
			DisplayOrder: 1,
			Active:       true,
		},
		{
			ID:           uuid.NewString(),
			Title:        "Keyboard Navigation Basics",
			Description:  "Moving through interactive elements without a mouse.",
			Caption:      "Tutorial showing keyboard focus moving between links, buttons and form fields with visible focus outlines.",
			VideoURL:     "/uploads/samples/keyboard-navigation.mp4",
			ThumbnailURL: "/uploads/samples/keyboard-navigation.jpg",
			Duration:     "2:18",
			DisplayOrder: 2,
			Active:       true,
		},
		{
			ID:           uuid.NewString(),
			Title:        "Color Contrast Essentials",
			Description:  "Why contrast ratios matter and how to check them.",
			Caption:      "Presentation covering color contrast requirements with side by side examples of passing and failing text.",
			VideoURL:     "/uploads/samples/color-contrast.mp4",
			ThumbnailURL: "/uploads/samples/color-contrast.jpg",
			Duration:     "4:05",
			DisplayOrder: 3,
			Active:       true,
		},
	}

	if err := db.Create(&samples).Error; err != nil {
		return fmt.Errorf("failed to seed sample videos, %w", err)
	}

	zap.L().Info("Seeded sample videos", zap.Int("count", len(samples)))
	return nil
}
