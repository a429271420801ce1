// Command transcode480p pre-generates the 480p video renditions the
// server looks up at /api/video. It walks a source directory for video
// files and, for each one without a {basename}_480p.mp4 in the output
// directory, invokes ffmpeg to produce it. The server itself never
// transcodes; run this out of band whenever new videos land.
//
// Usage:
//
//	transcode480p -source /media -out /cache/videos [-jobs 4] [-overwrite] [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"mediafind/internal/cache"
	"mediafind/internal/logging"
	"mediafind/internal/media"
	"mediafind/internal/workers"
)

type job struct {
	source string
	target string
}

func main() {
	sourceDir := flag.String("source", "", "directory to scan for video files (required)")
	outDir := flag.String("out", "", "directory to write 480p renditions to (required)")
	jobs := flag.Int("jobs", workers.ForCPU(8), "number of concurrent ffmpeg processes")
	overwrite := flag.Bool("overwrite", false, "re-transcode videos that already have a rendition")
	dryRun := flag.Bool("dry-run", false, "list what would be transcoded without running ffmpeg")
	flag.Parse()

	if *sourceDir == "" || *outDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	if _, err := exec.LookPath("ffmpeg"); err != nil && !*dryRun {
		logging.Fatal("ffmpeg not found in PATH: %v", err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logging.Fatal("Failed to create output directory: %v", err)
	}

	videos, err := collectVideos(*sourceDir)
	if err != nil {
		logging.Fatal("Failed to scan %s: %v", *sourceDir, err)
	}

	pending, skipped := planJobs(videos, *outDir, *overwrite)
	logging.Info("Found %d videos: %d to transcode, %d up to date", len(videos), len(pending), skipped)

	if *dryRun {
		for _, j := range pending {
			fmt.Printf("%s -> %s\n", j.source, j.target)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	failed := run(ctx, pending, *jobs)
	if failed > 0 {
		logging.Error("%d of %d transcodes failed", failed, len(pending))
		os.Exit(1)
	}
	logging.Info("Done: %d renditions written", len(pending))
}

// collectVideos walks sourceDir and returns every video file, by
// extension. Hidden files and directories are skipped.
func collectVideos(sourceDir string) ([]string, error) {
	var videos []string
	err := filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != sourceDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && media.KindOf(path) == media.KindVideo {
			videos = append(videos, path)
		}
		return nil
	})
	return videos, err
}

// planJobs pairs each video with its rendition path in outDir and drops
// the ones whose rendition already exists, unless overwrite is set.
func planJobs(videos []string, outDir string, overwrite bool) (pending []job, skipped int) {
	for _, source := range videos {
		target := filepath.Join(outDir, cache.RenditionName(source))
		if !overwrite {
			if _, err := os.Stat(target); err == nil {
				skipped++
				continue
			}
		}
		pending = append(pending, job{source: source, target: target})
	}
	return pending, skipped
}

// ffmpegArgs builds the argument list for one transcode. Output is
// capped at 480p height and 30fps with AAC audio; hwaccel adds
// auto-detected hardware decode, which not every build or host
// supports.
func ffmpegArgs(source, target string, hwaccel bool) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-y"}
	if hwaccel {
		args = append(args, "-hwaccel", "auto")
	}
	args = append(args,
		"-i", source,
		"-vf", "scale=-2:'min(480,ih)'",
		"-r", "30",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"-f", "mp4",
		target,
	)
	return args
}

func run(ctx context.Context, pending []job, numJobs int) int64 {
	if numJobs < 1 {
		numJobs = 1
	}

	var failed atomic.Int64
	queue := make(chan job)

	var wg sync.WaitGroup
	for i := 0; i < numJobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				if err := transcodeOne(ctx, j); err != nil {
					if ctx.Err() != nil {
						return
					}
					logging.Error("Failed to transcode %s: %v", j.source, err)
					failed.Add(1)
				} else {
					logging.Info("Transcoded %s", j.source)
				}
			}
		}()
	}

	for _, j := range pending {
		select {
		case <-ctx.Done():
			close(queue)
			wg.Wait()
			return failed.Load()
		case queue <- j:
		}
	}
	close(queue)
	wg.Wait()
	return failed.Load()
}

// transcodeOne writes to a temp file in the target directory and
// renames on success, so the server never serves a half-written
// rendition.
func transcodeOne(ctx context.Context, j job) error {
	tmp, err := os.CreateTemp(filepath.Dir(j.target), ".transcoding-*.mp4")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	// Hardware decode first; plain software run when that fails.
	err = runFFmpeg(ctx, ffmpegArgs(j.source, tmpPath, true))
	if err != nil && ctx.Err() == nil {
		logging.Debug("Hardware-accelerated transcode of %s failed, retrying in software: %v", j.source, err)
		err = runFFmpeg(ctx, ffmpegArgs(j.source, tmpPath, false))
	}
	if err != nil {
		return err
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	return os.Rename(tmpPath, j.target)
}

func runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}
