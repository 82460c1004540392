package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/fahad04code/Bakbak-bot/internal/platform/apperr"
	"github.com/fahad04code/Bakbak-bot/internal/platform/ctxutil"
	"github.com/fahad04code/Bakbak-bot/internal/platform/envutil"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
)

// FileStoreService keeps uploaded submissions on local disk. Stored names are
// prefixed with a random hex token, so two users uploading "video.mp4" at the
// same time never collide and stored names stay unguessable.
type FileStoreService interface {
	Save(ctx context.Context, originalName string, data io.Reader) (*StoredFile, error)
	ReadAll(ctx context.Context, storedName string) ([]byte, error)
	Delete(ctx context.Context, storedName string) error
	Dir() string
	PublicPath(storedName string) string
}

// StoredFile describes a file after it has been written to the upload dir.
type StoredFile struct {
	Name      string
	Path      string
	SizeBytes int64
}

type fileStoreService struct {
	log *logger.Logger
	dir string
}

func NewFileStoreService(log *logger.Logger) (FileStoreService, error) {
	serviceLog := log.With("service", "FileStoreService")
	dir := envutil.GetEnv("UPLOAD_DIR", "uploads", serviceLog)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir %q: %w", dir, err)
	}
	serviceLog.Info("Upload directory ready", "dir", dir)
	return &fileStoreService{log: serviceLog, dir: dir}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SafeFilename reduces a client-supplied filename to a shell- and URL-safe
// form: trimmed, spaces to underscores, anything outside [A-Za-z0-9._-]
// replaced with an underscore.
func SafeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// randomHexToken returns 32 hex chars with no separators.
func randomHexToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func (fs *fileStoreService) Save(ctx context.Context, originalName string, data io.Reader) (*StoredFile, error) {
	_ = ctxutil.Default(ctx)
	if data == nil {
		return nil, fmt.Errorf("%w: no file data", apperr.ErrValidation)
	}
	base := SafeFilename(filepath.Base(originalName))
	if base == "" || base == "." || base == ".." {
		base = "upload"
	}
	name := randomHexToken() + "_" + base
	path := filepath.Join(fs.dir, name)

	// O_EXCL: the hex prefix makes collisions absurd, but never overwrite.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: creating %q: %v", apperr.ErrStorage, name, err)
	}
	written, err := io.Copy(f, data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: writing %q: %v", apperr.ErrStorage, name, err)
	}

	fs.log.Debug("Stored upload", "file", name, "size_bytes", written)
	return &StoredFile{Name: name, Path: path, SizeBytes: written}, nil
}

func (fs *fileStoreService) ReadAll(ctx context.Context, storedName string) ([]byte, error) {
	_ = ctxutil.Default(ctx)
	path, err := fs.resolve(storedName)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", apperr.ErrNotFound, storedName)
		}
		return nil, fmt.Errorf("%w: reading %q: %v", apperr.ErrStorage, storedName, err)
	}
	return raw, nil
}

func (fs *fileStoreService) Delete(ctx context.Context, storedName string) error {
	_ = ctxutil.Default(ctx)
	path, err := fs.resolve(storedName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: removing %q: %v", apperr.ErrStorage, storedName, err)
	}
	fs.log.Debug("Deleted upload", "file", storedName)
	return nil
}

func (fs *fileStoreService) Dir() string { return fs.dir }

// PublicPath returns the URL path the router serves the stored file under.
func (fs *fileStoreService) PublicPath(storedName string) string {
	return "/uploads/" + storedName
}

// resolve rejects names that would escape the upload dir.
func (fs *fileStoreService) resolve(storedName string) (string, error) {
	if storedName == "" || storedName != filepath.Base(storedName) {
		return "", fmt.Errorf("%w: bad stored name %q", apperr.ErrValidation, storedName)
	}
	return filepath.Join(fs.dir, storedName), nil
}
