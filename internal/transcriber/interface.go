package transcriber

import (
	"context"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

// Transcriber uploads a media file and returns its raw transcript.
// onProgress receives upload progress in percent and may be nil.
type Transcriber interface {
	Transcribe(ctx context.Context, file domain.SourceFile, onProgress func(percent int)) (string, error)
}
