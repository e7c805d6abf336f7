// Package service contains the storage and media probing helpers the
// upload pipeline is built from
package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var ErrStorage = errors.New("storage failure")

// StoredFile describes one upload after its bytes hit the disk
type StoredFile struct {
	// Generated key the file is addressed by, never the client's name
	Key  string
	Path string
	URL  string
	Size int64
}

// SaveVideo writes an uploaded file under a freshly generated uuid key
// inside storage.root/videos. The public URL is derived from the same
// key so serving is a plain static mount.
func SaveVideo(fh *multipart.FileHeader) (*StoredFile, error) {
	dir := filepath.Join(viper.GetString("storage.root"), "videos")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	key := uuid.NewString() + path.Ext(fh.Filename)
	dest := filepath.Join(dir, key)

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// Never leave half-written bytes behind
		os.Remove(dest)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return &StoredFile{
		Key:  key,
		Path: dest,
		URL:  viper.GetString("storage.public_prefix") + "/videos/" + key,
		Size: n,
	}, nil
}

// DeleteFile removes a stored file. A missing file is not an error:
// the database is the source of truth for what exists
func DeleteFile(p string) bool {
	if p == "" {
		return false
	}

	err := os.Remove(p)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("Failed to remove stored file", zap.String("path", p), zap.Error(err))
		}
		return false
	}

	zap.L().Debug("Removed stored file", zap.String("path", p))
	return true
}

// ThumbnailPath maps a video storage path to where its thumbnail
// lives, if one was generated
func ThumbnailPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return videoPath[:len(videoPath)-len(ext)] + ".jpg"
}
