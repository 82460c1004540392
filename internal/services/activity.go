package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"gorm.io/datatypes"

	"github.com/fahad04code/Bakbak-bot/internal/data/repos"
	types "github.com/fahad04code/Bakbak-bot/internal/domain"
	"github.com/fahad04code/Bakbak-bot/internal/platform/apperr"
	"github.com/fahad04code/Bakbak-bot/internal/platform/ctxutil"
	"github.com/fahad04code/Bakbak-bot/internal/platform/envutil"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
)

// memeUploadPrompt stands in for a generated prompt on meme rows; memes are
// free-form uploads, not answers to anything.
const memeUploadPrompt = "Meme upload"

// Per-kind extension allowlists, matched case-insensitively.
var (
	dareUploadExts    = map[string]struct{}{".mp4": {}, ".mov": {}, ".wav": {}, ".mp3": {}, ".png": {}, ".jpg": {}, ".jpeg": {}}
	memeUploadExts    = map[string]struct{}{".png": {}, ".jpg": {}, ".jpeg": {}, ".mp4": {}, ".mov": {}}
	twisterUploadExts = map[string]struct{}{".mp3": {}, ".wav": {}}
)

// TruthSubmission is a typed-out answer to a truth prompt.
type TruthSubmission struct {
	Prompt string
	Answer string
}

// UploadSubmission carries one multipart file plus its form fields. Prompt is
// ignored for memes; Caption is only meaningful for memes.
type UploadSubmission struct {
	Prompt       string
	Caption      string
	OriginalName string
	MimeType     string
	SizeBytes    int64
	Reader       io.Reader
}

// ActivityService appends to the activity log. Rows are never updated or
// deleted once written.
type ActivityService interface {
	SaveTruth(ctx context.Context, phone string, in TruthSubmission) (*types.Activity, error)
	SaveDare(ctx context.Context, phone string, in UploadSubmission) (*types.Activity, error)
	SaveMeme(ctx context.Context, phone string, in UploadSubmission) (*types.Activity, error)
	SaveTwister(ctx context.Context, phone string, in UploadSubmission) (*types.Activity, error)
	List(ctx context.Context, phone string, includeAll bool) ([]*types.ActivityWithUser, error)
}

type activityService struct {
	log           *logger.Logger
	activityRepo  repos.ActivityRepo
	files         FileStoreService
	transcription TranscriptionService

	maxUploadBytes int64
}

func NewActivityService(log *logger.Logger, activityRepo repos.ActivityRepo, files FileStoreService, transcription TranscriptionService) ActivityService {
	serviceLog := log.With("service", "ActivityService")
	maxUploadBytes := envutil.GetEnvAsInt64("MAX_UPLOAD_BYTES", 100<<20, serviceLog)
	return &activityService{
		log:            serviceLog,
		activityRepo:   activityRepo,
		files:          files,
		transcription:  transcription,
		maxUploadBytes: maxUploadBytes,
	}
}

func (as *activityService) SaveTruth(ctx context.Context, phone string, in TruthSubmission) (*types.Activity, error) {
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(phone) == "" {
		return nil, fmt.Errorf("%w: phone required", apperr.ErrValidation)
	}
	prompt := strings.TrimSpace(in.Prompt)
	answer := strings.TrimSpace(in.Answer)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt required", apperr.ErrValidation)
	}
	if answer == "" {
		return nil, fmt.Errorf("%w: answer required", apperr.ErrValidation)
	}

	row := &types.Activity{
		Phone:        phone,
		ActivityType: types.ActivityKindTruth,
		Prompt:       &prompt,
		ResponseText: &answer,
	}
	created, err := as.activityRepo.Create(ctx, nil, []*types.Activity{row})
	if err != nil {
		return nil, fmt.Errorf("%w: saving truth answer: %v", apperr.ErrStorage, err)
	}
	as.log.Info("Truth answer saved", "phone", phone)
	return created[0], nil
}

func (as *activityService) SaveDare(ctx context.Context, phone string, in UploadSubmission) (*types.Activity, error) {
	// Dares get a transcript only when the proof is playable media.
	transcribe := as.transcription.Enabled() && isPlayableMedia(in.MimeType)
	return as.saveUpload(ctx, phone, types.ActivityKindDare, strings.TrimSpace(in.Prompt), "", in, dareUploadExts, transcribe)
}

func (as *activityService) SaveMeme(ctx context.Context, phone string, in UploadSubmission) (*types.Activity, error) {
	return as.saveUpload(ctx, phone, types.ActivityKindMeme, memeUploadPrompt, strings.TrimSpace(in.Caption), in, memeUploadExts, false)
}

func (as *activityService) SaveTwister(ctx context.Context, phone string, in UploadSubmission) (*types.Activity, error) {
	// Twister uploads are audio by construction, so no mime gate here.
	transcribe := as.transcription.Enabled()
	return as.saveUpload(ctx, phone, types.ActivityKindTongueTwister, strings.TrimSpace(in.Prompt), "", in, twisterUploadExts, transcribe)
}

func (as *activityService) saveUpload(ctx context.Context, phone, kind, prompt, caption string, in UploadSubmission, allowed map[string]struct{}, transcribe bool) (*types.Activity, error) {
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(phone) == "" {
		return nil, fmt.Errorf("%w: phone required", apperr.ErrValidation)
	}
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt required", apperr.ErrValidation)
	}
	if in.Reader == nil || in.OriginalName == "" {
		return nil, fmt.Errorf("%w: file required", apperr.ErrValidation)
	}

	ext := strings.ToLower(filepath.Ext(in.OriginalName))
	if _, ok := allowed[ext]; !ok {
		return nil, fmt.Errorf("%w: file type %q not allowed for %s (allowed: %s)", apperr.ErrUpload, ext, kind, allowedList(allowed))
	}
	if in.SizeBytes > as.maxUploadBytes {
		return nil, apperr.New(http.StatusRequestEntityTooLarge, "file_too_large",
			fmt.Errorf("%w: file size must be under %d MB", apperr.ErrUpload, as.maxUploadBytes>>20))
	}

	// 1) Write the file to disk.
	stored, err := as.files.Save(ctx, in.OriginalName, in.Reader)
	if err != nil {
		return nil, err
	}

	// 2) Transcribe if this kind wants it. Placeholder text on failure, never
	// an error; the save below always proceeds.
	var responseText *string
	if caption != "" {
		responseText = &caption
	}
	if transcribe {
		text := as.transcription.TranscribeStored(ctx, stored.Name)
		responseText = &text
	}

	// 3) Append the activity row; the stored file is only kept if this lands.
	meta, _ := json.Marshal(map[string]any{
		"original_name": in.OriginalName,
		"mime":          in.MimeType,
		"size_bytes":    stored.SizeBytes,
	})
	publicPath := as.files.PublicPath(stored.Name)
	row := &types.Activity{
		Phone:        phone,
		ActivityType: kind,
		Prompt:       &prompt,
		ResponseText: responseText,
		FilePath:     &publicPath,
		FileMeta:     datatypes.JSON(meta),
	}
	created, err := as.activityRepo.Create(ctx, nil, []*types.Activity{row})
	if err != nil {
		if delErr := as.files.Delete(ctx, stored.Name); delErr != nil {
			as.log.Warn("Could not remove orphaned upload", "file", stored.Name, "error", delErr)
		}
		return nil, fmt.Errorf("%w: saving %s activity: %v", apperr.ErrStorage, kind, err)
	}

	as.log.Info("Upload activity saved", "phone", phone, "kind", kind, "file", stored.Name, "size_bytes", stored.SizeBytes, "transcribed", transcribe)
	return created[0], nil
}

func (as *activityService) List(ctx context.Context, phone string, includeAll bool) ([]*types.ActivityWithUser, error) {
	ctx = ctxutil.Default(ctx)
	if includeAll {
		rows, err := as.activityRepo.ListAll(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: listing activities: %v", apperr.ErrStorage, err)
		}
		return rows, nil
	}
	if strings.TrimSpace(phone) == "" {
		return nil, fmt.Errorf("%w: phone required", apperr.ErrValidation)
	}
	rows, err := as.activityRepo.ListByPhone(ctx, nil, phone)
	if err != nil {
		return nil, fmt.Errorf("%w: listing activities: %v", apperr.ErrStorage, err)
	}
	return rows, nil
}

func isPlayableMedia(mimeType string) bool {
	return strings.HasPrefix(mimeType, "audio") || strings.HasPrefix(mimeType, "video")
}

func allowedList(exts map[string]struct{}) string {
	out := make([]string, 0, len(exts))
	for ext := range exts {
		out = append(out, ext)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
