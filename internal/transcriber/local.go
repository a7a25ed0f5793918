package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/sonote/internal/config"
	"github.com/nguyentantai21042004/sonote/internal/domain"
	"github.com/nguyentantai21042004/sonote/internal/logger"
	"github.com/nguyentantai21042004/sonote/pkg/executor"
)

// Progress reported by the local transcriber once audio is staged.
const localStagedPercent = 50

var ErrEmptyTranscript = errors.New("whisper produced an empty transcript")

type localTranscriber struct {
	ffmpeg   string
	whisper  config.WhisperConfig
	executor executor.Executor
	logger   logger.Logger
}

// NewLocal creates a Transcriber that runs ffmpeg and whisper.cpp on this
// machine instead of calling the ASR service.
func NewLocal(cfg config.TranscriberConfig, exec executor.Executor, log logger.Logger) Transcriber {
	ffmpeg := cfg.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	return &localTranscriber{
		ffmpeg:   ffmpeg,
		whisper:  cfg.Whisper,
		executor: exec,
		logger:   log,
	}
}

// Transcribe extracts 16kHz mono audio and runs whisper on it. Progress
// moves to 50 once the audio is staged and to 100 when whisper finishes.
func (t *localTranscriber) Transcribe(ctx context.Context, file domain.SourceFile, onProgress func(percent int)) (string, error) {
	report := func(p int) {
		if onProgress != nil {
			onProgress(p)
		}
	}
	report(0)

	workDir, err := os.MkdirTemp("", "sonote-*")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer t.cleanupTempDir(ctx, workDir)

	audioPath, err := t.extractAudio(ctx, file.Path, workDir)
	if err != nil {
		return "", err
	}
	report(localStagedPercent)

	text, err := t.transcribe(ctx, audioPath)
	if err != nil {
		return "", err
	}
	report(100)

	return text, nil
}

// extractAudio converts the source to 16kHz mono WAV, the input whisper expects.
func (t *localTranscriber) extractAudio(ctx context.Context, srcPath, workDir string) (string, error) {
	audioPath := filepath.Join(workDir, "audio.wav")

	t.logger.Debug(ctx, "Extracting audio: %s", srcPath)

	// -vn: drop video, -ar 16000 -ac 1: 16kHz mono, -threads 0: all cores
	args := []string{
		"-i", srcPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		audioPath,
	}

	if _, err := t.executor.Execute(ctx, t.ffmpeg, args...); err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return audioPath, nil
}

// transcribe runs whisper-cli with plain text output and reads the result.
func (t *localTranscriber) transcribe(ctx context.Context, audioPath string) (string, error) {
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	t.logger.Debug(ctx, "Transcribing with %d threads: %s", t.whisper.Threads, audioPath)

	// -otxt: plain text, -np: no progress prints, -bo 5: best of 5
	args := []string{
		"-m", t.whisper.ModelPath,
		"-f", audioPath,
		"-otxt",
		"-np",
		"-l", t.whisper.Language,
		"-t", strconv.Itoa(max(t.whisper.Threads, 1)),
		"-bo", "5",
		"--output-file", outputPrefix,
	}
	if t.whisper.Prompt != "" {
		args = append(args, "--prompt", t.whisper.Prompt)
	}

	if _, err := t.executor.Execute(ctx, t.whisper.BinaryPath, args...); err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}

	data, err := os.ReadFile(outputPrefix + ".txt")
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}

	// whisper writes one segment per line
	text := strings.Join(strings.Fields(string(data)), " ")
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

// cleanupTempDir removes the work dir, logs warning if it fails
func (t *localTranscriber) cleanupTempDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		t.logger.Warn(ctx, "Failed to cleanup temp dir %s: %v", dir, err)
	} else {
		t.logger.Debug(ctx, "Cleaned up temp dir: %s", dir)
	}
}
