package localmedia

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/soart-backend/internal/platform/ctxutil"
	"github.com/yungbote/soart-backend/internal/platform/logger"
)

var (
	ErrNotFound        = errors.New("artifact not found")
	ErrInvalidFilename = errors.New("invalid artifact filename")
)

var filenameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}\.[A-Za-z0-9]{1,8}$`)

// Store is the flat artifact directory generated images are written to.
type Store interface {
	Dir() string
	// Write stores data under a fresh random name with the given extension
	// and returns the filename.
	Write(ctx context.Context, ext string, data []byte) (string, error)
	// Path resolves a filename to an existing file inside Dir.
	Path(filename string) (string, error)
	Read(ctx context.Context, filename string) ([]byte, error)
}

type store struct {
	log *logger.Logger
	dir string
}

func NewStore(log *logger.Logger, dir string) (Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("artifact dir required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve artifact dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &store{log: log.With("service", "ArtifactStore"), dir: abs}, nil
}

func (s *store) Dir() string { return s.dir }

// NewFilename returns a 16 hex char name derived from a v4 UUID.
func NewFilename(ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return id
	}
	return id + "." + ext
}

func ValidFilename(name string) bool {
	return filenameRe.MatchString(name)
}

func (s *store) Write(ctx context.Context, ext string, data []byte) (string, error) {
	ctx = ctxutil.Default(ctx)
	if len(data) == 0 {
		return "", fmt.Errorf("empty artifact")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// The directory may have been removed while the process was running.
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	name := NewFilename(ext)
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close artifact: %w", err)
	}
	s.log.Debug("artifact written", "filename", name, "bytes", len(data))
	return name, nil
}

func (s *store) Path(filename string) (string, error) {
	if !ValidFilename(filename) {
		return "", ErrInvalidFilename
	}
	path := filepath.Join(s.dir, filename)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	if info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}

func (s *store) Read(ctx context.Context, filename string) ([]byte, error) {
	path, err := s.Path(filename)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
