package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// sniffLen - сколько байт заголовка нужно filetype для определения типа.
const sniffLen = 261

var (
	// ErrUnsupportedType - содержимое файла не похоже ни на документ, ни на изображение, ни на архив.
	ErrUnsupportedType = errors.New("storage: неподдерживаемый тип файла")
	// ErrTooLarge - файл больше допустимого размера.
	ErrTooLarge = errors.New("storage: размер файла превышает лимит")
)

// StoredFile описывает сохранённый результат работы.
type StoredFile struct {
	Path string `json:"path"`
	URL  string `json:"url"`
	MIME string `json:"mime"`
	Size int64  `json:"size"`
}

// DeliverableStorage - файловое хранилище результатов работы по контрактам.
type DeliverableStorage struct {
	rootPath       string
	publicPrefix   string
	maxUploadBytes int64
}

// NewDeliverableStorage создаёт хранилище в каталоге rootPath.
// Файлы отдаются по URL publicPrefix + относительный путь.
func NewDeliverableStorage(rootPath, publicPrefix string, maxUploadMB int64) (*DeliverableStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &DeliverableStorage{
		rootPath:       rootPath,
		publicPrefix:   publicPrefix,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Root возвращает корневой каталог хранилища.
func (s *DeliverableStorage) Root() string {
	return s.rootPath
}

// Save определяет тип по содержимому (расширение из имени не учитывается)
// и сохраняет файл в каталог контракта.
func (s *DeliverableStorage) Save(ctx context.Context, contractID uuid.UUID, r io.Reader) (*StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("storage: ошибка чтения файла: %w", err)
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return nil, ErrUnsupportedType
	}
	if !filetype.IsDocument(head) && !filetype.IsImage(head) && !filetype.IsArchive(head) {
		return nil, ErrUnsupportedType
	}

	dir := filepath.Join(s.rootPath, contractID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог контракта: %w", err)
	}

	fileName := fmt.Sprintf("%d_%s.%s", time.Now().UnixNano(), uuid.NewString()[:8], kind.Extension)
	targetPath := filepath.Join(dir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	body := io.MultiReader(bytes.NewReader(head), r)
	written, err := io.Copy(f, io.LimitReader(body, s.maxUploadBytes+1))
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return nil, ErrTooLarge
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		return nil, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	relative := filepath.ToSlash(filepath.Join(contractID.String(), fileName))
	return &StoredFile{
		Path: relative,
		URL:  s.publicPrefix + "/" + relative,
		MIME: kind.MIME.Value,
		Size: written,
	}, nil
}
