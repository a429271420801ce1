package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, dir, relPath string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", relPath, err)
	}
	return path
}

func TestCollectVideos(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	want := map[string]bool{
		touch(t, dir, "clip.mp4"):        true,
		touch(t, dir, "sub/trip.MOV"):    true,
		touch(t, dir, "sub/deep/a.webm"): true,
	}
	touch(t, dir, "photo.jpg")
	touch(t, dir, "notes.txt")
	touch(t, dir, ".hidden.mp4")
	touch(t, dir, ".trash/old.mp4")

	videos, err := collectVideos(dir)
	if err != nil {
		t.Fatalf("collectVideos() error: %v", err)
	}
	if len(videos) != len(want) {
		t.Fatalf("collectVideos() = %v, want %d videos", videos, len(want))
	}
	for _, v := range videos {
		if !want[v] {
			t.Errorf("unexpected video %s", v)
		}
	}
}

func TestPlanJobsSkipsExistingRenditions(t *testing.T) {
	t.Parallel()
	srcDir := t.TempDir()
	outDir := t.TempDir()

	clip := touch(t, srcDir, "clip.mp4")
	fresh := touch(t, srcDir, "fresh.mp4")
	touch(t, outDir, "clip_480p.mp4")

	pending, skipped := planJobs([]string{clip, fresh}, outDir, false)
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(pending) != 1 || pending[0].source != fresh {
		t.Fatalf("pending = %v, want only %s", pending, fresh)
	}
	if got, want := pending[0].target, filepath.Join(outDir, "fresh_480p.mp4"); got != want {
		t.Errorf("target = %s, want %s", got, want)
	}
}

func TestPlanJobsOverwrite(t *testing.T) {
	t.Parallel()
	srcDir := t.TempDir()
	outDir := t.TempDir()

	clip := touch(t, srcDir, "clip.mp4")
	touch(t, outDir, "clip_480p.mp4")

	pending, skipped := planJobs([]string{clip}, outDir, true)
	if skipped != 0 || len(pending) != 1 {
		t.Errorf("overwrite: pending = %v, skipped = %d, want 1 job and 0 skipped", pending, skipped)
	}
}

func TestFFmpegArgs(t *testing.T) {
	t.Parallel()

	args := ffmpegArgs("/media/clip.mp4", "/cache/clip_480p.mp4", false)
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-i /media/clip.mp4",
		"scale=-2:'min(480,ih)'",
		"-r 30",
		"-c:v libx264",
		"-c:a aac",
		"/cache/clip_480p.mp4",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if strings.Contains(joined, "-hwaccel") {
		t.Error("software args should not request hwaccel")
	}

	hw := strings.Join(ffmpegArgs("a.mp4", "b.mp4", true), " ")
	if !strings.Contains(hw, "-hwaccel auto") {
		t.Errorf("hwaccel args missing -hwaccel auto: %s", hw)
	}
}
