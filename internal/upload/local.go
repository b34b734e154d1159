package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalBackend складывает файлы в каталог, который раздается статикой по urlPrefix
type LocalBackend struct {
	dir       string
	urlPrefix string
}

func NewLocalBackend(dir, urlPrefix string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalBackend{dir: dir, urlPrefix: urlPrefix}, nil
}

// Dir возвращает каталог с загрузками
func (b *LocalBackend) Dir() string {
	return b.dir
}

func (b *LocalBackend) Put(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(b.dir, filepath.Base(name))
	// O_EXCL: существующий файл никогда не перезаписывается
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return b.urlPrefix + "/" + filepath.Base(name), nil
}
