package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/captionforge/captionforge/internal/audio"
	ffmpegbin "github.com/captionforge/captionforge/internal/ffmpeg"
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// defines interface for video processing operations
type Processor interface {
	// extracts audio from video file
	ExtractAudio(
		ctx context.Context,
		videoPath, outputPath string,
		opts ExtractAudioOptions,
	) error

	// retrieves video file information
	GetInfo(ctx context.Context, videoPath string) (*Info, error)

	// renders a subtitle file onto the video frames
	BurnCaptions(
		ctx context.Context,
		videoPath, subtitlePath, outputPath string,
		opts BurnOptions,
	) error
}

// holds options for audio extraction
type ExtractAudioOptions struct {
	Format     string // Output format (wav, mp3, aac, flac)
	SampleRate int    // Sample rate in Hz (e.g., 16000, 44100, 48000)
	Channels   int    // Number of channels (1 = mono, 2 = stereo)
	Bitrate    string // Bitrate for lossy formats (e.g., "128k", "320k")
}

// returns sensible defaults for audio extraction
func DefaultExtractAudioOptions() ExtractAudioOptions {
	return ExtractAudioOptions{
		Format:     "wav",
		SampleRate: 16000,
		Channels:   1,
	}
}

// holds encoder settings for caption burning
type BurnOptions struct {
	VideoCodec string // default libx264
	Preset     string // default medium
	CRF        int    // default 20
	FontsDir   string // extra directory searched for the style's font
}

func DefaultBurnOptions() BurnOptions {
	return BurnOptions{
		VideoCodec: "libx264",
		Preset:     "medium",
		CRF:        20,
	}
}

// default implementation using ffmpeg
type DefaultProcessor struct {
	tempDir string
}

func NewProcessor(tempDir string) *DefaultProcessor {
	return &DefaultProcessor{
		tempDir: tempDir,
	}
}

// extracts audio from video file
func (p *DefaultProcessor) ExtractAudio(
	ctx context.Context,
	videoPath, outputPath string,
	opts ExtractAudioOptions,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	kwargs := audio.CompressionOptions{
		Format:     opts.Format,
		SampleRate: opts.SampleRate,
		Channels:   opts.Channels,
		Bitrate:    opts.Bitrate,
	}.KwArgs()

	stream := ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput()

	if err := ffmpegbin.Run(ctx, stream); err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}

	return nil
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// retrieves video file information
func (p *DefaultProcessor) GetInfo(
	ctx context.Context,
	videoPath string,
) (*Info, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	out, err := ffmpegbin.Probe(ctx, videoPath, "-show_format", "-show_streams")
	if err != nil {
		return nil, err
	}

	return parseProbeOutput(videoPath, out)
}

func parseProbeOutput(videoPath string, data []byte) (*Info, error) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{Path: videoPath}

	if d := strings.TrimSpace(probe.Format.Duration); d != "" {
		seconds, err := strconv.ParseFloat(d, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration: %w", err)
		}
		info.Duration = time.Duration(seconds * float64(time.Second))
	}

	foundVideo := false
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if foundVideo {
				continue
			}
			foundVideo = true
			info.Width = s.Width
			info.Height = s.Height
			info.Codec = s.CodecName
			info.FrameRate = parseFrameRate(s.AvgFrameRate)
			if info.FrameRate == 0 {
				info.FrameRate = parseFrameRate(s.RFrameRate)
			}
		case "audio":
			info.HasAudio = true
		}
	}

	if !foundVideo {
		return nil, fmt.Errorf("no video stream in %s", videoPath)
	}

	return info, nil
}

// parses ffprobe rates like "30000/1001"
func parseFrameRate(rate string) float64 {
	num, den, ok := strings.Cut(rate, "/")
	if !ok {
		f, _ := strconv.ParseFloat(rate, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// burns the subtitle file into the video, copying the audio stream
func (p *DefaultProcessor) BurnCaptions(
	ctx context.Context,
	videoPath, subtitlePath, outputPath string,
	opts BurnOptions,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	stream := ffmpeg.Input(videoPath).
		Output(outputPath, burnKwArgs(subtitlePath, opts)).
		OverWriteOutput()

	if err := ffmpegbin.Run(ctx, stream); err != nil {
		return fmt.Errorf("ffmpeg caption burn failed: %w", err)
	}

	return nil
}

func burnKwArgs(subtitlePath string, opts BurnOptions) ffmpeg.KwArgs {
	defaults := DefaultBurnOptions()
	if opts.VideoCodec == "" {
		opts.VideoCodec = defaults.VideoCodec
	}
	if opts.Preset == "" {
		opts.Preset = defaults.Preset
	}
	if opts.CRF <= 0 {
		opts.CRF = defaults.CRF
	}

	return ffmpeg.KwArgs{
		"vf":     subtitlesFilter(subtitlePath, opts.FontsDir),
		"c:v":    opts.VideoCodec,
		"preset": opts.Preset,
		"crf":    opts.CRF,
		"c:a":    "copy",
	}
}

// subtitlesFilter builds the libass filter expression. Paths are quoted and
// their colons escaped so drive letters survive filtergraph parsing.
func subtitlesFilter(subtitlePath, fontsDir string) string {
	filter := fmt.Sprintf("subtitles='%s'", escapeFilterPath(subtitlePath))
	if fontsDir != "" {
		filter += fmt.Sprintf(":fontsdir='%s'", escapeFilterPath(fontsDir))
	}
	return filter
}

func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	path = strings.ReplaceAll(path, ":", `\:`)
	path = strings.ReplaceAll(path, "'", `\'`)
	return path
}
