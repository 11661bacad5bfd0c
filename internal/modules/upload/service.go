package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mathtutor/internal/domain"
	"mathtutor/internal/pkg/clock"
	"mathtutor/internal/pkg/logger"
	"mathtutor/internal/repository"
)

const (
	MaxFileSize    = 50 * 1024 * 1024 // 50 MB
	UploadsBaseDir = "./uploads"
	StaticURLBase  = "/static/uploads"

	sniffLen = 3072
)

// AllowedMimeTypes covers the media a question or answer can carry.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"audio/mpeg":      true,
	"audio/wav":       true,
	"audio/ogg":       true,
	"audio/mp4":       true,
	"audio/webm":      true,
	"video/mp4":       true,
	"video/webm":      true,
	"application/pdf": true,
}

type Repository interface {
	Create(ctx context.Context, u *domain.Upload) error
	GetByID(ctx context.Context, id string) (*domain.Upload, error)
}

// Service stores files on local disk and records them in the database.
type Service struct {
	repo       Repository
	baseDir    string
	staticBase string
	clock      clock.Clock
	log        *zap.Logger
}

func NewService(repo Repository, baseDir, staticBase string, clk clock.Clock, log *zap.Logger) *Service {
	if baseDir == "" {
		baseDir = UploadsBaseDir
	}
	if staticBase == "" {
		staticBase = StaticURLBase
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		repo:       repo,
		baseDir:    baseDir,
		staticBase: strings.TrimRight(staticBase, "/"),
		clock:      clk,
		log:        logger.OrNop(log),
	}
}

// BaseDir is the directory served under the static URL prefix.
func (s *Service) BaseDir() string { return s.baseDir }

// Save writes r to uploads/YYYY/MM/DD/ and returns the stored record. The
// media type is sniffed from content; the declared one is ignored.
func (s *Service) Save(ctx context.Context, userID int64, name string, r io.Reader) (*domain.Upload, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyFile
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	mimeType := strings.Split(mt.String(), ";")[0]
	if !AllowedMimeTypes[mimeType] {
		return nil, ErrInvalidMimeType
	}

	now := s.clock.Now()
	relDir := fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day())
	absDir := filepath.Join(s.baseDir, relDir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	id := uuid.NewString()
	filename := id + "_" + sanitizeName(name) + mt.Extension()
	absPath := filepath.Join(absDir, filename)
	dst, err := os.Create(absPath)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	body := io.MultiReader(bytes.NewReader(head), io.LimitReader(r, MaxFileSize-int64(n)+1))
	size, err := io.Copy(dst, body)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("write file: %w", err)
	}
	if size > MaxFileSize {
		_ = os.Remove(absPath)
		return nil, ErrFileTooLarge
	}

	relPath := filepath.ToSlash(filepath.Join(relDir, filename))
	up := &domain.Upload{
		ID:           id,
		UserID:       userID,
		OriginalName: filepath.Base(name),
		FilePath:     relPath,
		FileURL:      s.staticBase + "/" + relPath,
		MimeType:     mimeType,
		Size:         size,
		CreatedAt:    now,
	}
	if err := s.repo.Create(ctx, up); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("save upload record: %w", err)
	}

	s.log.Info("file uploaded",
		zap.Int64(logger.FieldUserID, userID),
		zap.String("upload_id", id),
		zap.String("mime_type", mimeType),
		zap.Int64("size", size),
	)
	return up, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Upload, error) {
	up, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}
	return up, nil
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" || name == "." || name == "_" {
		return "file"
	}
	return name
}
