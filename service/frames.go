package service

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
)

// ExtractFrames samples n frames evenly spaced across the video and
// writes them as jpegs into destDir. When the duration can't be
// probed a single frame from the start is grabbed instead, which is
// still enough for the caption model to work with.
func ExtractFrames(ctx context.Context, videoPath string, n int, destDir string) ([]string, error) {
	if n <= 0 {
		n = 1
	}

	duration, err := ProbeDuration(videoPath)
	if err != nil || duration <= 0 {
		n = 1
		duration = 0
	}

	paths := make([]string, 0, n)

	for i := range n {
		// Midpoint of each of the n equal slices, so a 3 frame
		// sample of a 60s video lands at 10s, 30s and 50s
		ts := duration * (float64(i) + 0.5) / float64(n)
		dest := filepath.Join(destDir, fmt.Sprintf("frame_%02d.jpg", i))

		// -ss before the input uses key-frame seeking which is much
		// faster on long videos
		cmd := exec.CommandContext(ctx, "ffmpeg",
			"-loglevel", "error",
			"-ss", fmt.Sprintf("%.2f", ts),
			"-i", videoPath,
			"-frames:v", "1",
			"-q:v", "2",
			"-vf", "scale=-1:480",
			dest, "-y",
		)

		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("failed to extract frame %d, %w", i, err)
		}

		paths = append(paths, dest)
	}

	return paths, nil
}
