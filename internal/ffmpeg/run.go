package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// maxStderrTail bounds how much ffmpeg output is attached to an error
const maxStderrTail = 2000

// Run executes a compiled ffmpeg-go stream with the resolved ffmpeg binary.
// The process is killed when ctx is cancelled, and the tail of stderr is
// included in the returned error.
func Run(ctx context.Context, stream *ffmpeggo.Stream) error {
	path, err := FFmpegPath()
	if err != nil {
		return err
	}

	args := stream.GetArgs()
	cmd := exec.CommandContext(ctx, path, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg %s: %w: %s", strings.Join(args, " "), err, tail(stderr.String()))
	}
	return nil
}

// Probe runs ffprobe with JSON output for the given file.
func Probe(ctx context.Context, path string, extraArgs ...string) ([]byte, error) {
	ffprobePath, err := FFprobePath()
	if err != nil {
		return nil, err
	}

	args := []string{"-v", "quiet", "-print_format", "json"}
	args = append(args, extraArgs...)
	args = append(args, path)

	cmd := exec.CommandContext(ctx, ffprobePath, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w: %s", err, tail(stderr.String()))
	}
	return out.Bytes(), nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxStderrTail {
		return s
	}
	return "..." + s[len(s)-maxStderrTail:]
}
