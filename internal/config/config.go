package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/skyfetch/internal/schedule"
)

// Значения по умолчанию.
const (
	DefaultListen     = ":8080"
	DefaultMaxWorkers = 4
	DefaultTick       = Duration(time.Second)
	DefaultBaseDir    = "/var/lib/skyfetch"
)

// Duration — time.Duration с разбором из YAML строки ("250ms", "1s").
type Duration time.Duration

// UnmarshalYAML реализует yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std возвращает значение как time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config — конфигурация демона skyfetch.
type Config struct {
	// Listen — адрес HTTP API (default: ":8080").
	Listen string `yaml:"listen"`

	// MaxWorkers — лимит одновременно выполняющихся заданий.
	MaxWorkers int `yaml:"max_workers"`

	// Tick — интервал тика планировщика.
	Tick Duration `yaml:"tick"`

	// BaseDir — базовая директория областей хранения.
	BaseDir string `yaml:"base_dir"`

	// DatabaseURL — DSN PostgreSQL. Пусто — без БД.
	DatabaseURL string `yaml:"database_url"`

	// AMQPURL — URL RabbitMQ. Пусто — без брокера.
	AMQPURL string `yaml:"amqp_url"`

	// SitesFile — путь YAML файла с описаниями источников.
	SitesFile string `yaml:"sites_file"`

	// Schedules — записи cron-расписания.
	Schedules []schedule.Entry `yaml:"schedules"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	return Config{
		Listen:     DefaultListen,
		MaxWorkers: DefaultMaxWorkers,
		Tick:       DefaultTick,
		BaseDir:    DefaultBaseDir,
	}
}

// Load читает конфигурацию из path и применяет env-переопределения.
// Пустой path или отсутствующий файл дают дефолты.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Нет файла — остаёмся на дефолтах.
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv перекрывает поля переменными окружения.
func (c *Config) applyEnv() {
	if v := os.Getenv("SKYFETCH_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("DB_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		c.AMQPURL = v
	}
}

// validate проверяет согласованность значений.
func (c *Config) validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is empty")
	}
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers must be positive, got %d", c.MaxWorkers)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %s", c.Tick.Std())
	}
	if c.BaseDir == "" {
		return fmt.Errorf("base_dir is empty")
	}

	for _, e := range c.Schedules {
		if err := schedule.ValidateExpr(e.Cron); err != nil {
			return fmt.Errorf("schedule %s: %w", e.Name, err)
		}
	}
	return nil
}
