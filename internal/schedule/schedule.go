package schedule

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/skyfetch/internal/domain"
)

// cronParser — парсер cron-выражений (пять полей, без секунд).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Entry — одна запись расписания.
type Entry struct {
	// Name — имя записи для логов.
	Name string `yaml:"name"`

	// Cron — выражение вида "*/5 * * * *".
	Cron string `yaml:"cron"`

	// Job — текст pipeline, подаваемый по срабатыванию.
	Job string `yaml:"job"`
}

// SubmitFunc подаёт задание в engine. Реализуется Supervisor.Submit.
type SubmitFunc func(text string) (*domain.Job, error)

// Runner держит cron-расписание и подаёт задания по срабатыванию.
type Runner struct {
	cron   *cron.Cron
	submit SubmitFunc
	logger *slog.Logger
}

// ValidateExpr проверяет валидность cron-выражения.
func ValidateExpr(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// New создаёт Runner и регистрирует все записи.
// Невалидная запись — ошибка конфигурации, расписание не стартует.
func New(entries []Entry, submit SubmitFunc, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("actor", "schedule")

	r := &Runner{
		cron:   cron.New(cron.WithParser(cronParser)),
		submit: submit,
		logger: logger,
	}

	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("schedule entry without name")
		}
		if e.Job == "" {
			return nil, fmt.Errorf("schedule %s: empty job text", e.Name)
		}
		if err := ValidateExpr(e.Cron); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", e.Name, err)
		}

		entry := e
		if _, err := r.cron.AddFunc(entry.Cron, func() { r.fire(entry) }); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", entry.Name, err)
		}
	}

	return r, nil
}

// fire — одно срабатывание записи.
func (r *Runner) fire(e Entry) {
	job, err := r.submit(e.Job)
	if err != nil {
		r.logger.Error("scheduled submit failed", "schedule", e.Name, "error", err)
		return
	}
	r.logger.Info("scheduled job submitted", "schedule", e.Name, "job_id", job.ID)
}

// Start запускает расписание.
func (r *Runner) Start() {
	r.cron.Start()
	r.logger.Info("schedule started", "entries", len(r.cron.Entries()))
}

// Stop останавливает расписание и дожидается текущих срабатываний.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info("schedule stopped")
}
