package storage

import (
	"compress/gzip"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Fs — файловое хранилище с областями-поддиректориями.
type Fs struct {
	base   string
	logger *slog.Logger
}

// NewFs создаёт хранилище с базовой директорией base.
// Директория создаётся, если её нет.
func NewFs(base string, logger *slog.Logger) (*Fs, error) {
	if base == "" {
		return nil, fmt.Errorf("storage base dir is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir %s: %w", base, err)
	}

	return &Fs{base: base, logger: logger.With("component", "storage")}, nil
}

// Base возвращает базовую директорию.
func (f *Fs) Base() string {
	return f.base
}

// Path возвращает абсолютный путь файла name в области area.
// Имена с выходом из области (.., абсолютные) отклоняются.
func (f *Fs) Path(area, name string) (string, error) {
	if err := checkComponent(area); err != nil {
		return "", fmt.Errorf("area %q: %w", area, err)
	}
	if err := checkComponent(name); err != nil {
		return "", fmt.Errorf("name %q: %w", name, err)
	}
	return filepath.Join(f.base, area, name), nil
}

// Write записывает data в area/name и возвращает полный путь.
func (f *Fs) Write(area, name string, data []byte) (string, error) {
	path, err := f.prepare(area, name)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	f.logger.Debug("file written", "path", path, "bytes", len(data))
	return path, nil
}

// WriteGzip записывает data в area/name.gz, сжимая gzip'ом.
func (f *Fs) WriteGzip(area, name string, data []byte) (string, error) {
	path, err := f.prepare(area, name+".gz")
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	zw := gzip.NewWriter(file)
	if _, err := zw.Write(data); err != nil {
		file.Close()
		return "", fmt.Errorf("compress %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		file.Close()
		return "", fmt.Errorf("flush gzip %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	f.logger.Debug("file archived", "path", path, "bytes", len(data))
	return path, nil
}

// Create создаёт (или обнуляет) area/name и возвращает открытый файл.
// Закрытие — на вызывающем.
func (f *Fs) Create(area, name string) (*os.File, string, error) {
	path, err := f.prepare(area, name)
	if err != nil {
		return nil, "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("create %s: %w", path, err)
	}
	return file, path, nil
}

// OpenAppend открывает area/name на дозапись, создавая файл при
// необходимости. Используется задачами, пишущими поток порциями.
func (f *Fs) OpenAppend(area, name string) (*os.File, string, error) {
	path, err := f.prepare(area, name)
	if err != nil {
		return nil, "", err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	return file, path, nil
}

// prepare проверяет имена и создаёт директорию области.
func (f *Fs) prepare(area, name string) (string, error) {
	path, err := f.Path(area, name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create area %s: %w", area, err)
	}
	return path, nil
}

// checkComponent отклоняет компоненты пути, выводящие за область.
func checkComponent(s string) error {
	if s == "" {
		return fmt.Errorf("empty path component")
	}
	if filepath.IsAbs(s) {
		return fmt.Errorf("absolute path not allowed")
	}
	for _, part := range strings.Split(filepath.ToSlash(s), "/") {
		if part == ".." {
			return fmt.Errorf("parent traversal not allowed")
		}
	}
	return nil
}
