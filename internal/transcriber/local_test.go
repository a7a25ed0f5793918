package transcriber

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/nguyentantai21042004/sonote/internal/config"
	"github.com/nguyentantai21042004/sonote/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor writes the files ffmpeg and whisper-cli would produce.
type fakeExecutor struct {
	transcript  string
	failOn      string
	calls       []string
	whisperArgs []string
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, name)
	if name == f.failOn {
		return "", errors.New("command '" + name + "' failed: exit status 1")
	}

	switch name {
	case "ffmpeg":
		return "", os.WriteFile(args[len(args)-1], []byte("RIFF"), 0o644)
	case "whisper-cli":
		f.whisperArgs = args
		for i, a := range args {
			if a == "--output-file" {
				return "", os.WriteFile(args[i+1]+".txt", []byte(f.transcript), 0o644)
			}
		}
	}
	return "", nil
}

func localConfig() config.TranscriberConfig {
	return config.TranscriberConfig{
		Provider: config.ProviderWhisper,
		Whisper: config.WhisperConfig{
			BinaryPath: "whisper-cli",
			ModelPath:  "models/ggml-base.bin",
			Language:   "en",
			Threads:    4,
			Prompt:     "meeting notes",
		},
	}
}

func TestLocal_Transcribe(t *testing.T) {
	exec := &fakeExecutor{transcript: " Hello there.\n General remarks. \n"}
	tr := NewLocal(localConfig(), exec, logger.Nop())

	var progress []int
	text, err := tr.Transcribe(context.Background(), writeMedia(t, 64), func(p int) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello there. General remarks.", text)
	assert.Equal(t, []int{0, 50, 100}, progress)
	assert.Equal(t, []string{"ffmpeg", "whisper-cli"}, exec.calls)
	assert.Contains(t, exec.whisperArgs, "--prompt")
	assert.Contains(t, exec.whisperArgs, "models/ggml-base.bin")
}

func TestLocal_Failures(t *testing.T) {
	tests := []struct {
		name       string
		exec       *fakeExecutor
		wantErr    string
		wantTarget error
	}{
		{
			name:    "ffmpeg fails",
			exec:    &fakeExecutor{failOn: "ffmpeg"},
			wantErr: "ffmpeg extract audio",
		},
		{
			name:    "whisper fails",
			exec:    &fakeExecutor{failOn: "whisper-cli"},
			wantErr: "whisper transcribe",
		},
		{
			name:       "empty output",
			exec:       &fakeExecutor{transcript: "  \n"},
			wantTarget: ErrEmptyTranscript,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewLocal(localConfig(), tt.exec, logger.Nop())
			_, err := tr.Transcribe(context.Background(), writeMedia(t, 8), nil)
			require.Error(t, err)
			if tt.wantTarget != nil {
				assert.ErrorIs(t, err, tt.wantTarget)
			} else {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLocal_DefaultFFmpegPath(t *testing.T) {
	tr := NewLocal(config.TranscriberConfig{}, &fakeExecutor{}, logger.Nop()).(*localTranscriber)
	assert.Equal(t, "ffmpeg", tr.ffmpeg)
}
