package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/internal/config"

	"github.com/google/uuid"
)

const maxBaseNameLength = 40

// Upload is an incoming file before it has been written anywhere.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// StagedFile is an upload written into the shared temp directory.
type StagedFile struct {
	OriginalName string
	Name         string
	Path         string
	Extension    string
	Size         int64
}

// Staging writes uploads into a temp directory under generated names.
type Staging struct {
	dir     string
	maxSize int64
	allowed map[string]struct{}
	logger  *slog.Logger
}

func NewStaging(cfg config.StorageConfig, logger *slog.Logger) *Staging {
	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}
	return &Staging{
		dir:     cfg.TempDir(),
		maxSize: cfg.MaxFileSize(),
		allowed: allowed,
		logger:  logger,
	}
}

func (s *Staging) Dir() string {
	return s.dir
}

// Stage checks and writes every upload. The batch is all or nothing: on
// any failure the files already written for this call are removed.
func (s *Staging) Stage(ctx context.Context, uploads []Upload) ([]StagedFile, error) {
	for _, u := range uploads {
		if err := s.check(u.Filename, u.Size); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, apperror.Storage("failed to prepare staging directory", err)
	}

	staged := make([]StagedFile, 0, len(uploads))
	for _, u := range uploads {
		f, err := s.write(u)
		if err != nil {
			s.Sweep(ctx, staged)
			return nil, err
		}
		staged = append(staged, f)
	}
	return staged, nil
}

func (s *Staging) check(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := s.allowed[ext]; !ok {
		return apperror.Validation(apperror.CodeInvalidFile, "only PDF files are allowed", filename)
	}
	if size > s.maxSize {
		return s.tooLarge(filename)
	}
	return nil
}

func (s *Staging) tooLarge(filename string) error {
	return apperror.Validation(apperror.CodeInvalidFile,
		fmt.Sprintf("file exceeds the %d MB limit", s.maxSize/(1024*1024)), filename)
}

func (s *Staging) write(u Upload) (StagedFile, error) {
	ext := strings.ToLower(filepath.Ext(u.Filename))
	name := GenerateName(u.Filename, time.Now())
	path := filepath.Join(s.dir, name)

	src, err := u.Open()
	if err != nil {
		return StagedFile{}, apperror.Storage("failed to read upload", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return StagedFile{}, apperror.Storage("failed to create staged file", err)
	}

	// The declared size can lie, so the copy is bounded as well.
	n, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return StagedFile{}, apperror.Storage("failed to write staged file", err)
	}
	if n > s.maxSize {
		_ = os.Remove(path)
		return StagedFile{}, s.tooLarge(u.Filename)
	}

	return StagedFile{
		OriginalName: u.Filename,
		Name:         name,
		Path:         path,
		Extension:    ext,
		Size:         n,
	}, nil
}

// Sweep deletes staged files that are still in the temp directory.
func (s *Staging) Sweep(ctx context.Context, files []StagedFile) {
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.WarnContext(ctx, "failed to remove staged file", "path", f.Path, "error", err)
		}
	}
}

// GenerateName builds "<unix millis>-<random>-<base>.<ext>" where base is
// the original name without extension, cut to 40 characters, with every
// non alphanumeric character replaced by an underscore.
func GenerateName(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	return fmt.Sprintf("%d-%d-%s%s", now.UnixMilli(), uuid.New().ID()%1_000_000_000, sanitize(base), ext)
}

func sanitize(base string) string {
	runes := []rune(base)
	if len(runes) > maxBaseNameLength {
		runes = runes[:maxBaseNameLength]
	}
	for i, r := range runes {
		if !isAlphanumeric(r) {
			runes[i] = '_'
		}
	}
	return string(runes)
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
