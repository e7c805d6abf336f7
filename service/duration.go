package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ProbeDuration asks ffprobe for the length of a video in seconds
func ProbeDuration(p string) (d float64, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	zap.L().Debug("Running FFprobe to determine video duration")

	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", "-i", p)

	var stdOut, stdErr bytes.Buffer
	cmd.Stdout = &stdOut
	cmd.Stderr = &stdErr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed, %w (%s)", err, stdErr.String())
	}

	durStr := strings.TrimSpace(stdOut.String())
	d, err = strconv.ParseFloat(durStr, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed duration: %w (%s)", err, stdErr.String())
	}

	return d, nil
}

// FormatDuration renders seconds the way the frontend shows them,
// e.g. 332.7 -> "5:32". Unknown durations render as "0:00"
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0:00"
	}

	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
