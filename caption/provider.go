// Package caption produces natural language descriptions of video
// files. Two providers exist: a real one backed by an external vision
// model and a mock one that serves canned captions so the rest of the
// app stays runnable without model access.
package caption

import (
	"context"
	"errors"
	"os/exec"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ErrGeneration wraps every provider failure so that callers can tell
// a captioning problem apart from storage or database errors
var ErrGeneration = errors.New("caption generation failed")

type Provider interface {
	// Generate returns a caption for the video at path. The returned
	// string is never empty on a nil error
	Generate(ctx context.Context, path string) (string, error)
	Name() string
}

// New selects the provider for the whole process lifetime. The choice
// is made exactly once at startup and never per request: a failing
// real provider call later aborts the upload, it does not silently
// degrade to mock captions.
func New() Provider {
	if viper.GetBool("caption.force_mock") {
		zap.L().Info("Mock captions forced by configuration")
		return NewMock()
	}

	if err := probeReal(); err != nil {
		zap.L().Warn("Caption model unavailable, falling back to mock captions", zap.Error(err))
		return NewMock()
	}

	p := newOpenAIProvider()
	zap.L().Info("Caption model ready", zap.String("model", p.model))
	return p
}

// probeReal checks that everything the real provider needs is actually
// there. The app must never refuse to start because the model is
// missing, so any error here only downgrades to the mock provider.
func probeReal() error {
	if viper.GetString("caption.api_key") == "" {
		return errors.New("caption.api_key is not configured")
	}

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return errors.New("ffmpeg binary not found in PATH")
	}

	if _, err := exec.LookPath("ffprobe"); err != nil {
		return errors.New("ffprobe binary not found in PATH")
	}

	return nil
}
