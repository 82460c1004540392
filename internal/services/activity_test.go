package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"gorm.io/gorm"

	types "github.com/fahad04code/Bakbak-bot/internal/domain"
	"github.com/fahad04code/Bakbak-bot/internal/platform/apperr"
)

type fakeActivityRepo struct {
	mu               sync.Mutex
	rows             []*types.Activity
	createErr        error
	listErr          error
	listAllCalls     int
	listByPhoneCalls int
	nextID           uint
}

func (f *fakeActivityRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Activity) ([]*types.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, r := range rows {
		f.nextID++
		r.ID = f.nextID
	}
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakeActivityRepo) ListByPhone(ctx context.Context, tx *gorm.DB, phone string) ([]*types.ActivityWithUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listByPhoneCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*types.ActivityWithUser
	for _, r := range f.rows {
		if r.Phone == phone {
			out = append(out, &types.ActivityWithUser{Activity: *r, Name: "Someone"})
		}
	}
	return out, nil
}

func (f *fakeActivityRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.ActivityWithUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listAllCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*types.ActivityWithUser
	for _, r := range f.rows {
		out = append(out, &types.ActivityWithUser{Activity: *r, Name: "Someone"})
	}
	return out, nil
}

type fakeTranscription struct {
	enabled bool
	text    string
	calls   []string
}

func (f *fakeTranscription) Enabled() bool { return f.enabled }

func (f *fakeTranscription) TranscribeStored(ctx context.Context, storedName string) string {
	f.calls = append(f.calls, storedName)
	return f.text
}

func (f *fakeTranscription) TranscribeBytes(ctx context.Context, data []byte) string {
	return f.text
}

type activityFixture struct {
	svc   ActivityService
	repo  *fakeActivityRepo
	trans *fakeTranscription
	files FileStoreService
	dir   string
}

func newActivityFixture(t *testing.T, transcriptionEnabled bool) *activityFixture {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("UPLOAD_DIR", dir)
	files, err := NewFileStoreService(testLogger(t))
	if err != nil {
		t.Fatalf("NewFileStoreService: %v", err)
	}
	repo := &fakeActivityRepo{}
	trans := &fakeTranscription{enabled: transcriptionEnabled, text: "transcript text"}
	return &activityFixture{
		svc:   NewActivityService(testLogger(t), repo, files, trans),
		repo:  repo,
		trans: trans,
		files: files,
		dir:   dir,
	}
}

func uploadIn(name, mime, content string) UploadSubmission {
	return UploadSubmission{
		Prompt:       "Do the thing",
		OriginalName: name,
		MimeType:     mime,
		SizeBytes:    int64(len(content)),
		Reader:       strings.NewReader(content),
	}
}

func TestSaveTruth(t *testing.T) {
	fx := newActivityFixture(t, false)
	ctx := context.Background()

	row, err := fx.svc.SaveTruth(ctx, "+914444400001", TruthSubmission{
		Prompt: "  What is your biggest fear?  ",
		Answer: "  Spiders.  ",
	})
	if err != nil {
		t.Fatalf("SaveTruth: %v", err)
	}
	if row.ActivityType != types.ActivityKindTruth {
		t.Fatalf("SaveTruth: kind=%q", row.ActivityType)
	}
	if row.Prompt == nil || *row.Prompt != "What is your biggest fear?" {
		t.Fatalf("SaveTruth: prompt=%v", row.Prompt)
	}
	if row.ResponseText == nil || *row.ResponseText != "Spiders." {
		t.Fatalf("SaveTruth: answer=%v", row.ResponseText)
	}
	if row.FilePath != nil {
		t.Fatalf("SaveTruth: truth rows carry no file, got %v", *row.FilePath)
	}
}

func TestSaveTruthValidation(t *testing.T) {
	fx := newActivityFixture(t, false)
	ctx := context.Background()

	cases := []struct {
		phone string
		in    TruthSubmission
	}{
		{"", TruthSubmission{Prompt: "p", Answer: "a"}},
		{"+91", TruthSubmission{Prompt: "", Answer: "a"}},
		{"+91", TruthSubmission{Prompt: "p", Answer: "   "}},
	}
	for i, tc := range cases {
		if _, err := fx.svc.SaveTruth(ctx, tc.phone, tc.in); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("SaveTruth #%d: expected validation error, got %v", i, err)
		}
	}
	if len(fx.repo.rows) != 0 {
		t.Fatalf("SaveTruth: rejected input was stored")
	}
}

func TestSaveDareTranscribesPlayableMedia(t *testing.T) {
	fx := newActivityFixture(t, true)
	ctx := context.Background()

	content := "fake mp4 bytes"
	row, err := fx.svc.SaveDare(ctx, "+914444400002", uploadIn("proof.mp4", "video/mp4", content))
	if err != nil {
		t.Fatalf("SaveDare: %v", err)
	}
	if row.ActivityType != types.ActivityKindDare {
		t.Fatalf("SaveDare: kind=%q", row.ActivityType)
	}
	if row.ResponseText == nil || *row.ResponseText != "transcript text" {
		t.Fatalf("SaveDare: response_text=%v", row.ResponseText)
	}
	if row.FilePath == nil || !strings.HasPrefix(*row.FilePath, "/uploads/") || !strings.HasSuffix(*row.FilePath, "_proof.mp4") {
		t.Fatalf("SaveDare: file_path=%v", row.FilePath)
	}

	storedName := strings.TrimPrefix(*row.FilePath, "/uploads/")
	if len(fx.trans.calls) != 1 || fx.trans.calls[0] != storedName {
		t.Fatalf("SaveDare: transcription calls=%v", fx.trans.calls)
	}
	raw, err := fx.files.ReadAll(ctx, storedName)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(raw) != content {
		t.Fatalf("SaveDare: stored bytes %q", raw)
	}

	var meta struct {
		OriginalName string `json:"original_name"`
		Mime         string `json:"mime"`
		SizeBytes    int64  `json:"size_bytes"`
	}
	if err := json.Unmarshal(row.FileMeta, &meta); err != nil {
		t.Fatalf("SaveDare: file_meta decode: %v", err)
	}
	if meta.OriginalName != "proof.mp4" || meta.Mime != "video/mp4" || meta.SizeBytes != int64(len(content)) {
		t.Fatalf("SaveDare: file_meta=%+v", meta)
	}
}

func TestSaveDareSkipsTranscriptForImages(t *testing.T) {
	fx := newActivityFixture(t, true)

	row, err := fx.svc.SaveDare(context.Background(), "+914444400003", uploadIn("pic.jpg", "image/jpeg", "jpg bytes"))
	if err != nil {
		t.Fatalf("SaveDare: %v", err)
	}
	if row.ResponseText != nil {
		t.Fatalf("SaveDare: image proof must not get a transcript, got %q", *row.ResponseText)
	}
	if len(fx.trans.calls) != 0 {
		t.Fatalf("SaveDare: transcription called for an image")
	}
}

func TestSaveDareWithoutTranscription(t *testing.T) {
	fx := newActivityFixture(t, false)

	row, err := fx.svc.SaveDare(context.Background(), "+914444400004", uploadIn("proof.mp4", "video/mp4", "bytes"))
	if err != nil {
		t.Fatalf("SaveDare: %v", err)
	}
	if row.ResponseText != nil {
		t.Fatalf("SaveDare: disabled transcription must leave response_text empty, got %q", *row.ResponseText)
	}
}

func TestSaveUploadRejectsExtension(t *testing.T) {
	fx := newActivityFixture(t, false)
	ctx := context.Background()

	if _, err := fx.svc.SaveDare(ctx, "+914444400005", uploadIn("malware.exe", "application/octet-stream", "x")); !errors.Is(err, apperr.ErrUpload) {
		t.Fatalf("SaveDare (.exe): expected upload rejection, got %v", err)
	}
	if _, err := fx.svc.SaveTwister(ctx, "+914444400005", uploadIn("pic.png", "image/png", "x")); !errors.Is(err, apperr.ErrUpload) {
		t.Fatalf("SaveTwister (.png): expected upload rejection, got %v", err)
	}
	if _, err := fx.svc.SaveMeme(ctx, "+914444400005", uploadIn("voice.wav", "audio/wav", "x")); !errors.Is(err, apperr.ErrUpload) {
		t.Fatalf("SaveMeme (.wav): expected upload rejection, got %v", err)
	}
	// Extension matching is case-insensitive.
	if _, err := fx.svc.SaveMeme(ctx, "+914444400005", uploadIn("SHOUT.PNG", "image/png", "x")); err != nil {
		t.Fatalf("SaveMeme (.PNG): %v", err)
	}

	entries, err := os.ReadDir(fx.dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("rejected uploads must not reach disk, found %d files", len(entries))
	}
}

func TestSaveUploadRejectsOversize(t *testing.T) {
	fx := newActivityFixture(t, false)

	in := uploadIn("big.mp4", "video/mp4", "tiny")
	in.SizeBytes = 100<<20 + 1
	_, err := fx.svc.SaveDare(context.Background(), "+914444400006", in)
	if !errors.Is(err, apperr.ErrUpload) {
		t.Fatalf("SaveDare (oversize): expected upload rejection, got %v", err)
	}
	if got := apperr.StatusFor(err); got != http.StatusRequestEntityTooLarge {
		t.Fatalf("SaveDare (oversize): status want=413 got=%d", got)
	}
	if got := apperr.CodeFor(err); got != "file_too_large" {
		t.Fatalf("SaveDare (oversize): code=%q", got)
	}
}

func TestSaveMemeUsesCaption(t *testing.T) {
	fx := newActivityFixture(t, true)
	ctx := context.Background()

	in := uploadIn("funny.png", "image/png", "png bytes")
	in.Prompt = "ignored"
	in.Caption = "  when the build passes  "
	row, err := fx.svc.SaveMeme(ctx, "+914444400007", in)
	if err != nil {
		t.Fatalf("SaveMeme: %v", err)
	}
	if row.Prompt == nil || *row.Prompt != "Meme upload" {
		t.Fatalf("SaveMeme: prompt=%v", row.Prompt)
	}
	if row.ResponseText == nil || *row.ResponseText != "when the build passes" {
		t.Fatalf("SaveMeme: caption=%v", row.ResponseText)
	}
	if len(fx.trans.calls) != 0 {
		t.Fatalf("SaveMeme: memes are never transcribed")
	}

	in = uploadIn("plain.png", "image/png", "png bytes")
	row, err = fx.svc.SaveMeme(ctx, "+914444400007", in)
	if err != nil {
		t.Fatalf("SaveMeme (no caption): %v", err)
	}
	if row.ResponseText != nil {
		t.Fatalf("SaveMeme (no caption): response_text=%q", *row.ResponseText)
	}
}

func TestSaveTwisterTranscribes(t *testing.T) {
	fx := newActivityFixture(t, true)

	row, err := fx.svc.SaveTwister(context.Background(), "+914444400008", uploadIn("twister.wav", "audio/wav", "wav bytes"))
	if err != nil {
		t.Fatalf("SaveTwister: %v", err)
	}
	if row.ActivityType != types.ActivityKindTongueTwister {
		t.Fatalf("SaveTwister: kind=%q", row.ActivityType)
	}
	if row.ResponseText == nil || *row.ResponseText != "transcript text" {
		t.Fatalf("SaveTwister: response_text=%v", row.ResponseText)
	}
	if len(fx.trans.calls) != 1 {
		t.Fatalf("SaveTwister: transcription calls=%d", len(fx.trans.calls))
	}
}

func TestSaveUploadValidation(t *testing.T) {
	fx := newActivityFixture(t, false)
	ctx := context.Background()

	in := uploadIn("proof.mp4", "video/mp4", "x")
	in.Reader = nil
	if _, err := fx.svc.SaveDare(ctx, "+91", in); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("SaveDare (no reader): expected validation error, got %v", err)
	}

	in = uploadIn("", "video/mp4", "x")
	if _, err := fx.svc.SaveDare(ctx, "+91", in); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("SaveDare (no name): expected validation error, got %v", err)
	}

	in = uploadIn("proof.mp4", "video/mp4", "x")
	in.Prompt = "   "
	if _, err := fx.svc.SaveDare(ctx, "+91", in); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("SaveDare (no prompt): expected validation error, got %v", err)
	}

	if _, err := fx.svc.SaveDare(ctx, "", uploadIn("proof.mp4", "video/mp4", "x")); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("SaveDare (no phone): expected validation error, got %v", err)
	}
}

func TestSaveUploadCleansUpOnStorageFailure(t *testing.T) {
	fx := newActivityFixture(t, false)
	fx.repo.createErr = errors.New("db down")

	_, err := fx.svc.SaveDare(context.Background(), "+914444400009", uploadIn("proof.mp4", "video/mp4", "bytes"))
	if !errors.Is(err, apperr.ErrStorage) {
		t.Fatalf("SaveDare (db down): expected storage error, got %v", err)
	}

	entries, err := os.ReadDir(fx.dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("SaveDare: orphaned upload left on disk: %v", entries)
	}
}

func TestListScopes(t *testing.T) {
	fx := newActivityFixture(t, false)
	ctx := context.Background()

	if _, err := fx.svc.SaveTruth(ctx, "+914444400010", TruthSubmission{Prompt: "p", Answer: "a"}); err != nil {
		t.Fatalf("SaveTruth: %v", err)
	}
	if _, err := fx.svc.SaveTruth(ctx, "+914444400011", TruthSubmission{Prompt: "p", Answer: "b"}); err != nil {
		t.Fatalf("SaveTruth: %v", err)
	}

	mine, err := fx.svc.List(ctx, "+914444400010", false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 1 || fx.repo.listByPhoneCalls != 1 {
		t.Fatalf("List: rows=%d phone_calls=%d", len(mine), fx.repo.listByPhoneCalls)
	}

	all, err := fx.svc.List(ctx, "+914444400010", true)
	if err != nil {
		t.Fatalf("List (all): %v", err)
	}
	if len(all) != 2 || fx.repo.listAllCalls != 1 {
		t.Fatalf("List (all): rows=%d all_calls=%d", len(all), fx.repo.listAllCalls)
	}

	if _, err := fx.svc.List(ctx, "", false); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("List (no phone): expected validation error, got %v", err)
	}

	fx.repo.listErr = errors.New("db down")
	if _, err := fx.svc.List(ctx, "+914444400010", false); !errors.Is(err, apperr.ErrStorage) {
		t.Fatalf("List (db down): expected storage error, got %v", err)
	}
}
