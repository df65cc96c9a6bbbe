package source

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/skyfetch/internal/domain"
)

// SiteType — тип доступа к источнику.
type SiteType string

const (
	SiteHTTP SiteType = "http"
	SiteAMQP SiteType = "amqp"
	SiteFile SiteType = "file"
)

// Site — описание одного источника данных наблюдения.
type Site struct {
	// Name — имя, по которому задачи ссылаются на источник.
	Name string `yaml:"name"`

	// Type — тип доступа: http, amqp или file.
	Type SiteType `yaml:"type"`

	// URL — адрес для http источников.
	URL string `yaml:"url,omitempty"`

	// Queue — имя очереди для amqp источников.
	Queue string `yaml:"queue,omitempty"`

	// Path — путь файла для file источников.
	Path string `yaml:"path,omitempty"`

	// Format — формат данных источника (default: raw).
	Format domain.Format `yaml:"format,omitempty"`

	// Token — bearer token для http источников, требующих авторизации.
	// Значение вида ${VAR} подставляется из окружения при загрузке.
	Token string `yaml:"token,omitempty"`
}

// validate проверяет согласованность описания.
func (s *Site) validate() error {
	if s.Name == "" {
		return fmt.Errorf("site without name")
	}

	switch s.Type {
	case SiteHTTP:
		if s.URL == "" {
			return fmt.Errorf("site %s: http site requires url", s.Name)
		}
	case SiteAMQP:
		if s.Queue == "" {
			return fmt.Errorf("site %s: amqp site requires queue", s.Name)
		}
	case SiteFile:
		if s.Path == "" {
			return fmt.Errorf("site %s: file site requires path", s.Name)
		}
	default:
		return fmt.Errorf("site %s: unknown type %q", s.Name, s.Type)
	}

	if s.Format == "" {
		s.Format = domain.FormatRaw
	} else if _, err := domain.ParseFormat(string(s.Format)); err != nil {
		return fmt.Errorf("site %s: %w", s.Name, err)
	}

	return nil
}

// sitesFile — схема YAML файла с описаниями источников.
type sitesFile struct {
	Sites []Site `yaml:"sites"`
}

// LoadSites читает описания источников из YAML файла.
// Токены вида ${VAR} раскрываются из переменных окружения.
func LoadSites(path string) ([]Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sites file: %w", err)
	}
	return ParseSites(data)
}

// ParseSites разбирает YAML описания источников.
func ParseSites(data []byte) ([]Site, error) {
	var f sitesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sites yaml: %w", err)
	}

	seen := make(map[string]bool, len(f.Sites))
	for i := range f.Sites {
		s := &f.Sites[i]
		if err := s.validate(); err != nil {
			return nil, err
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate site %s", s.Name)
		}
		seen[s.Name] = true

		s.Token = os.Expand(s.Token, os.Getenv)
	}

	return f.Sites, nil
}
