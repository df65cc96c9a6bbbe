package source

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shaiso/skyfetch/internal/domain"
	"github.com/shaiso/skyfetch/internal/mq"
)

// Source — открытый источник данных наблюдения.
type Source interface {
	// Site возвращает описание источника.
	Site() Site

	// Fetch делает разовую выборку и отправляет пакеты в out.
	// Возвращается после исчерпания данных. out не закрывает.
	Fetch(ctx context.Context, out chan<- domain.Packet) error

	// Stream отправляет пакеты в out до отмены ctx. out не закрывает.
	Stream(ctx context.Context, out chan<- domain.Packet) error
}

// Registry хранит описания источников и открывает их по имени.
type Registry struct {
	sites  map[string]Site
	client *http.Client
	conn   *mq.Connection
	logger *slog.Logger
}

// RegistryConfig — зависимости реестра.
type RegistryConfig struct {
	// Sites — загруженные описания источников.
	Sites []Site

	// Client — HTTP клиент (default: таймаут 30s).
	Client *http.Client

	// Conn — соединение с брокером; nil, если amqp не настроен.
	Conn *mq.Connection

	// Logger
	Logger *slog.Logger
}

// NewRegistry создаёт реестр источников.
func NewRegistry(cfg RegistryConfig) *Registry {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sites := make(map[string]Site, len(cfg.Sites))
	for _, s := range cfg.Sites {
		sites[s.Name] = s
	}

	return &Registry{
		sites:  sites,
		client: client,
		conn:   cfg.Conn,
		logger: logger,
	}
}

// Names возвращает имена всех известных источников.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sites))
	for name := range r.sites {
		names = append(names, name)
	}
	return names
}

// Open открывает источник по имени.
func (r *Registry) Open(name string) (Source, error) {
	site, ok := r.sites[name]
	if !ok {
		return nil, ErrSiteNotFound
	}

	logger := r.logger.With("site", name)

	switch site.Type {
	case SiteHTTP:
		return &httpSource{site: site, client: r.client, logger: logger}, nil
	case SiteAMQP:
		if r.conn == nil {
			return nil, ErrAMQPNotConfigured
		}
		return &amqpSource{site: site, conn: r.conn, logger: logger}, nil
	case SiteFile:
		return &fileSource{site: site, logger: logger}, nil
	default:
		return nil, ErrSiteNotFound
	}
}
