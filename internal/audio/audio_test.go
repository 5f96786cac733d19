package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMediaTypeDetection(t *testing.T) {
	tests := []struct {
		path  string
		video bool
		audio bool
	}{
		{"clip.mp4", true, false},
		{"CLIP.MOV", true, false},
		{"talk.mp3", false, true},
		{"talk.WAV", false, true},
		{"notes.txt", false, false},
		{"noext", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsVideoFile(tt.path); got != tt.video {
				t.Errorf("IsVideoFile(%q) = %v, want %v", tt.path, got, tt.video)
			}
			if got := IsAudioFile(tt.path); got != tt.audio {
				t.Errorf("IsAudioFile(%q) = %v, want %v", tt.path, got, tt.audio)
			}
			if got := IsMediaFile(tt.path); got != (tt.video || tt.audio) {
				t.Errorf("IsMediaFile(%q) = %v", tt.path, got)
			}
		})
	}
}

func TestCompressionKwArgs(t *testing.T) {
	tests := []struct {
		name      string
		opts      CompressionOptions
		codec     string
		wantBrate bool
	}{
		{"mp3 default", DefaultCompressionOptions(), "libmp3lame", true},
		{"aac", CompressionOptions{Format: "aac", Bitrate: "96k"}, "aac", true},
		{"wav ignores bitrate", CompressionOptions{Format: "wav", Bitrate: "96k"}, "pcm_s16le", false},
		{"flac ignores bitrate", CompressionOptions{Format: "flac", Bitrate: "96k"}, "flac", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kwargs := tt.opts.KwArgs()
			if kwargs["acodec"] != tt.codec {
				t.Errorf("acodec = %v, want %s", kwargs["acodec"], tt.codec)
			}
			if _, ok := kwargs["vn"]; !ok {
				t.Error("expected video to be disabled")
			}
			_, hasBitrate := kwargs["b:a"]
			if hasBitrate != tt.wantBrate {
				t.Errorf("bitrate present = %v, want %v", hasBitrate, tt.wantBrate)
			}
		})
	}
}

func TestPlanChunks(t *testing.T) {
	jobs := planChunks("/tmp/audio.mp3", "/tmp/chunks", 150*time.Second, time.Minute)
	if len(jobs) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(jobs))
	}
	if jobs[2].startSeconds != 120 || jobs[2].endSeconds != 150 {
		t.Errorf("unexpected last chunk window: %+v", jobs[2])
	}
	if want := filepath.Join("/tmp/chunks", "audio_chunk_001.mp3"); jobs[1].chunkPath != want {
		t.Errorf("chunk path = %q, want %q", jobs[1].chunkPath, want)
	}
}

func TestChunkAudioRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	if _, err := ChunkAudio(ctx, "missing.mp3", 0, t.TempDir()); err == nil {
		t.Error("expected error for zero chunk duration")
	}
	if _, err := ChunkAudio(ctx, filepath.Join(t.TempDir(), "missing.mp3"), time.Minute, t.TempDir()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCleanupChunks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mp3")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	chunks := []ChunkInfo{{Path: path}, {Path: filepath.Join(dir, "gone.mp3")}}
	if err := CleanupChunks(chunks); err != nil {
		t.Fatalf("CleanupChunks returned error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected chunk to be removed")
	}
}
