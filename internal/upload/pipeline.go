package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// FieldName - имя multipart-поля с фотографией инцидента
const FieldName = "image"

var (
	ErrImageRequired    = errors.New("image file is required")
	ErrUnsupportedMedia = errors.New("only JPEG and PNG images are allowed")
	ErrFileTooLarge     = errors.New("image exceeds the maximum allowed size")
)

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Image - загруженный клиентом файл
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Backend сохраняет байты и возвращает публичный URL файла
type Backend interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// Pipeline проверяет изображение и сохраняет его через Backend
type Pipeline struct {
	backend Backend
	maxSize int64
	now     func() time.Time
}

func NewPipeline(backend Backend, maxSize int64) *Pipeline {
	return &Pipeline{
		backend: backend,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Save валидирует изображение и сохраняет его, возвращая URL
func (p *Pipeline) Save(ctx context.Context, img *Image) (string, error) {
	if img == nil || img.Reader == nil {
		return "", ErrImageRequired
	}

	contentType := normalizeContentType(img.ContentType)
	ext := strings.ToLower(filepath.Ext(img.Filename))
	if !allowedContentTypes[contentType] || !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: got %q (%s)", ErrUnsupportedMedia, contentType, ext)
	}

	if img.Size > p.maxSize {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, img.Size, p.maxSize)
	}

	// Читаем на один байт больше лимита, чтобы поймать файлы с неверно заявленным размером
	data, err := io.ReadAll(io.LimitReader(img.Reader, p.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded image: %w", err)
	}
	if int64(len(data)) > p.maxSize {
		return "", fmt.Errorf("%w: limit %d", ErrFileTooLarge, p.maxSize)
	}
	if len(data) == 0 {
		return "", ErrImageRequired
	}

	detected := mimetype.Detect(data)
	if !detected.Is("image/jpeg") && !detected.Is("image/png") {
		return "", fmt.Errorf("%w: content detected as %s", ErrUnsupportedMedia, detected.String())
	}

	name := p.uniqueName(ext)
	url, err := p.backend.Put(ctx, name, detected.String(), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to store image %s: %w", name, err)
	}
	return url, nil
}

// uniqueName собирает имя файла из времени, случайной части и расширения
func (p *Pipeline) uniqueName(ext string) string {
	return fmt.Sprintf("%d-%s%s", p.now().UnixMilli(), uuid.NewString(), ext)
}

func normalizeContentType(contentType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
}
