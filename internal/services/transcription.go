package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fahad04code/Bakbak-bot/internal/clients/assemblyai"
	"github.com/fahad04code/Bakbak-bot/internal/platform/ctxutil"
	"github.com/fahad04code/Bakbak-bot/internal/platform/envutil"
	"github.com/fahad04code/Bakbak-bot/internal/platform/httpx"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
)

// TranscriptionService turns stored audio/video uploads into text. It never
// returns an error: every failure degrades to a short placeholder string so
// the activity save can proceed with whatever text came back.
type TranscriptionService interface {
	Enabled() bool
	TranscribeStored(ctx context.Context, storedName string) string
	TranscribeBytes(ctx context.Context, data []byte) string
}

type transcriptionService struct {
	log    *logger.Logger
	client assemblyai.Client
	files  FileStoreService

	pollInterval time.Duration
	maxPolls     int
}

// NewTranscriptionService wires the AssemblyAI client behind the placeholder
// contract. A nil client disables transcription rather than erroring.
func NewTranscriptionService(log *logger.Logger, client assemblyai.Client, files FileStoreService) TranscriptionService {
	serviceLog := log.With("service", "TranscriptionService")
	pollSeconds := envutil.GetEnvAsInt("TRANSCRIBE_POLL_SECONDS", 1, serviceLog)
	if pollSeconds < 1 {
		pollSeconds = 1
	}
	maxPolls := envutil.GetEnvAsInt("TRANSCRIBE_MAX_POLLS", 30, serviceLog)
	if maxPolls < 1 {
		maxPolls = 1
	}
	if client == nil {
		serviceLog.Info("No AssemblyAI client; uploads will be saved without transcripts")
	}
	return &transcriptionService{
		log:          serviceLog,
		client:       client,
		files:        files,
		pollInterval: time.Duration(pollSeconds) * time.Second,
		maxPolls:     maxPolls,
	}
}

func (ts *transcriptionService) Enabled() bool { return ts.client != nil }

func (ts *transcriptionService) TranscribeStored(ctx context.Context, storedName string) string {
	ctx = ctxutil.Default(ctx)
	if !ts.Enabled() {
		return "AssemblyAI API key not configured."
	}
	data, err := ts.files.ReadAll(ctx, storedName)
	if err != nil {
		ts.log.Warn("Could not read stored upload for transcription", "file", storedName, "error", err)
		return fmt.Sprintf("Transcription error: %v", err)
	}
	return ts.TranscribeBytes(ctx, data)
}

func (ts *transcriptionService) TranscribeBytes(ctx context.Context, data []byte) string {
	ctx = ctxutil.Default(ctx)
	if !ts.Enabled() {
		return "AssemblyAI API key not configured."
	}

	audioURL, err := ts.client.Upload(ctx, data)
	if err != nil {
		if status, ok := httpStatusOf(err); ok {
			return fmt.Sprintf("Upload failed (%d)", status)
		}
		ts.log.Warn("AssemblyAI upload failed", "error", err)
		return fmt.Sprintf("Transcription error: %v", err)
	}

	transcriptID, err := ts.client.Submit(ctx, audioURL)
	if err != nil {
		if status, ok := httpStatusOf(err); ok {
			return fmt.Sprintf("Transcription request failed (%d)", status)
		}
		ts.log.Warn("AssemblyAI transcript request failed", "error", err)
		return fmt.Sprintf("Transcription error: %v", err)
	}

	for attempt := 0; attempt < ts.maxPolls; attempt++ {
		transcript, pollErr := ts.client.Get(ctx, transcriptID)
		if pollErr != nil {
			// A flaky poll is not fatal; the next one may land.
			ts.log.Debug("AssemblyAI poll failed", "transcript_id", transcriptID, "error", pollErr)
		} else {
			switch transcript.Status {
			case assemblyai.StatusCompleted:
				return transcript.Text
			case assemblyai.StatusError:
				ts.log.Warn("AssemblyAI transcription failed", "transcript_id", transcriptID, "error", transcript.Error)
				return "Transcription failed."
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Sprintf("Transcription error: %v", ctx.Err())
		case <-time.After(ts.pollInterval):
		}
	}

	ts.log.Warn("AssemblyAI transcription timed out", "transcript_id", transcriptID, "max_polls", ts.maxPolls)
	return "Transcription timed out."
}

// httpStatusOf unwraps the HTTP status code a client error carried, if any.
func httpStatusOf(err error) (int, bool) {
	var coder httpx.HTTPStatusCoder
	if errors.As(err, &coder) {
		return coder.HTTPStatusCode(), true
	}
	return 0, false
}
