package services

import (
	"context"
	"errors"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/fahad04code/Bakbak-bot/internal/platform/apperr"
)

func TestSafeFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"video.mp4", "video.mp4"},
		{"  my clip.mov ", "my_clip.mov"},
		{"weird$na#me!.png", "weird_na_me_.png"},
		{"../../etc/passwd", ".._.._etc_passwd"},
		{"café.jpg", "caf_.jpg"},
		{"under_score-dash.ok", "under_score-dash.ok"},
	}
	for _, tc := range cases {
		if got := SafeFilename(tc.in); got != tc.want {
			t.Fatalf("SafeFilename(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestFileStoreSaveReadDelete(t *testing.T) {
	t.Setenv("UPLOAD_DIR", t.TempDir())
	fs, err := NewFileStoreService(testLogger(t))
	if err != nil {
		t.Fatalf("NewFileStoreService: %v", err)
	}
	ctx := context.Background()

	content := "hello bakbak"
	stored, err := fs.Save(ctx, "My Clip.mp4", strings.NewReader(content))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	nameRe := regexp.MustCompile(`^[0-9a-f]{32}_My_Clip\.mp4$`)
	if !nameRe.MatchString(stored.Name) {
		t.Fatalf("Save: unexpected stored name %q", stored.Name)
	}
	if stored.SizeBytes != int64(len(content)) {
		t.Fatalf("Save: size want=%d got=%d", len(content), stored.SizeBytes)
	}
	if _, err := os.Stat(stored.Path); err != nil {
		t.Fatalf("Save: stored file missing: %v", err)
	}
	if got := fs.PublicPath(stored.Name); got != "/uploads/"+stored.Name {
		t.Fatalf("PublicPath: got %q", got)
	}

	raw, err := fs.ReadAll(ctx, stored.Name)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(raw) != content {
		t.Fatalf("ReadAll: want=%q got=%q", content, raw)
	}

	if err := fs.Delete(ctx, stored.Name); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(stored.Path); !os.IsNotExist(err) {
		t.Fatalf("Delete: file still present (stat err=%v)", err)
	}
	if _, err := fs.ReadAll(ctx, stored.Name); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("ReadAll after delete: expected not-found, got %v", err)
	}
	// Deleting an already-gone file is not an error.
	if err := fs.Delete(ctx, stored.Name); err != nil {
		t.Fatalf("Delete (again): %v", err)
	}
}

func TestFileStoreNamesNeverCollide(t *testing.T) {
	t.Setenv("UPLOAD_DIR", t.TempDir())
	fs, err := NewFileStoreService(testLogger(t))
	if err != nil {
		t.Fatalf("NewFileStoreService: %v", err)
	}
	ctx := context.Background()

	first, err := fs.Save(ctx, "video.mp4", strings.NewReader("one"))
	if err != nil {
		t.Fatalf("Save (first): %v", err)
	}
	second, err := fs.Save(ctx, "video.mp4", strings.NewReader("two"))
	if err != nil {
		t.Fatalf("Save (second): %v", err)
	}
	if first.Name == second.Name {
		t.Fatalf("Save: same stored name for two uploads: %q", first.Name)
	}

	raw, err := fs.ReadAll(ctx, first.Name)
	if err != nil {
		t.Fatalf("ReadAll (first): %v", err)
	}
	if string(raw) != "one" {
		t.Fatalf("ReadAll (first): want=%q got=%q", "one", raw)
	}
}

func TestFileStoreSaveFallsBackToGenericName(t *testing.T) {
	t.Setenv("UPLOAD_DIR", t.TempDir())
	fs, err := NewFileStoreService(testLogger(t))
	if err != nil {
		t.Fatalf("NewFileStoreService: %v", err)
	}
	ctx := context.Background()

	stored, err := fs.Save(ctx, "", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(stored.Name, "_upload") {
		t.Fatalf("Save: expected generic base name, got %q", stored.Name)
	}
}

func TestFileStoreRejectsBadInput(t *testing.T) {
	t.Setenv("UPLOAD_DIR", t.TempDir())
	fs, err := NewFileStoreService(testLogger(t))
	if err != nil {
		t.Fatalf("NewFileStoreService: %v", err)
	}
	ctx := context.Background()

	if _, err := fs.Save(ctx, "x.mp4", nil); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("Save (nil reader): expected validation error, got %v", err)
	}
	if _, err := fs.ReadAll(ctx, "../outside.txt"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("ReadAll (escape): expected validation error, got %v", err)
	}
	if err := fs.Delete(ctx, "nested/name.bin"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("Delete (nested): expected validation error, got %v", err)
	}
	if _, err := fs.ReadAll(ctx, ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("ReadAll (empty): expected validation error, got %v", err)
	}
}
