package service

import (
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/pkg/storage"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

type objectStore interface {
	Save(key string, data []byte) (string, error)
	Read(key string) ([]byte, error)
	Delete(key string) error
}

type urlSigner interface {
	Generate(key string) (string, time.Time, error)
	Parse(token string) (string, time.Time, error)
}

// FileServiceConfig bounds uploads and shapes download links.
type FileServiceConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
	URLPrefix    string
}

// FileService stores uploaded images and hands out signed download links.
type FileService struct {
	store  objectStore
	signer urlSigner
	cfg    FileServiceConfig
	logger *zap.Logger
}

// NewFileService constructs the file service.
func NewFileService(store objectStore, signer urlSigner, cfg FileServiceConfig, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 5 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/jpeg", "image/png"}
	}
	cfg.URLPrefix = strings.TrimRight(cfg.URLPrefix, "/")
	return &FileService{store: store, signer: signer, cfg: cfg, logger: logger}
}

// MaxFileSize exposes the upload ceiling so handlers can cap request bodies.
func (s *FileService) MaxFileSize() int64 {
	return s.cfg.MaxFileSize
}

// CheckUpload enforces the size ceiling and the sniffed MIME allow-list.
func (s *FileService) CheckUpload(data []byte) (string, error) {
	if len(data) == 0 {
		return "", invalidField("file", "el archivo está vacío")
	}
	if int64(len(data)) > s.cfg.MaxFileSize {
		return "", appErrors.ErrPayloadTooLarge
	}
	mime := storage.DetectMIME(data)
	if !storage.AllowedMIME(mime, s.cfg.AllowedMIMEs) {
		return "", invalidField("file", fmt.Sprintf("tipo de archivo no permitido: %s", mime))
	}
	return mime, nil
}

// Store writes data under key.
func (s *FileService) Store(key string, data []byte) (string, error) {
	stored, err := s.store.Save(key, data)
	if err != nil {
		return "", appErrors.Backend(err, "no se pudo guardar el archivo")
	}
	return stored, nil
}

// Read loads a stored object.
func (s *FileService) Read(key string) ([]byte, error) {
	data, err := s.store.Read(key)
	if err != nil {
		return nil, appErrors.Backend(err, "no se pudo leer el archivo")
	}
	return data, nil
}

// Remove deletes an object; failures are logged only.
func (s *FileService) Remove(key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(key); err != nil {
		s.logger.Warn("delete stored object", zap.String("key", key), zap.Error(err))
	}
}

// SignedURL returns a time-limited download link for key, or "" when signing fails.
func (s *FileService) SignedURL(key string) string {
	if key == "" || s.signer == nil {
		return ""
	}
	token, _, err := s.signer.Generate(key)
	if err != nil {
		s.logger.Warn("sign object url", zap.String("key", key), zap.Error(err))
		return ""
	}
	return s.cfg.URLPrefix + "/files/" + token
}

// Resolve validates a download token and returns the object and its content type.
func (s *FileService) Resolve(token string) ([]byte, string, error) {
	key, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "el enlace no es válido o expiró")
	}
	data, err := s.store.Read(key)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "archivo no encontrado")
	}
	return data, storage.DetectMIME(data), nil
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

func thumbnailKey(receiptKey, mime string) string {
	dir, file := path.Split(receiptKey)
	return dir + "thumb_" + strings.TrimSuffix(file, path.Ext(file)) + extensionFor(mime)
}
