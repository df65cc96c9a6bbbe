package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/skyfetch/internal/domain"
	"github.com/shaiso/skyfetch/internal/format"
	"github.com/shaiso/skyfetch/internal/pipeline"
	"github.com/shaiso/skyfetch/internal/source"
	"github.com/shaiso/skyfetch/internal/storage"
)

// PacketWriter — приёмник пакетов в базе данных.
// Реализуется repo.PacketRepo.
type PacketWriter interface {
	InsertPacket(ctx context.Context, area string, pkt domain.Packet) error
}

// Deps — зависимости фабрики задач. Необязательные зависимости
// (Packets) могут быть nil; задачи, которым они нужны, откажут
// при инстанцировании, а не при выполнении.
type Deps struct {
	// Sources — реестр источников (fetch, stream).
	Sources *source.Registry

	// Converter — преобразователь форматов (convert).
	Converter *format.Converter

	// Fs — файловое хранилище (tee, archive, record).
	Fs *storage.Fs

	// Packets — приёмник пакетов в БД (store). Может быть nil.
	Packets PacketWriter

	// Logger
	Logger *slog.Logger
}

// Factory инстанцирует задачи по spec. Реализует pipeline.Factory.
type Factory struct {
	deps Deps
}

// NewFactory создаёт фабрику задач.
func NewFactory(deps Deps) *Factory {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Factory{deps: deps}
}

// Make инстанцирует задачу. Параметры проверяются здесь, чтобы
// плохой spec падал при сборке pipeline, до запуска задания.
func (f *Factory) Make(spec domain.TaskSpec) (pipeline.Task, error) {
	switch spec.Kind {
	case domain.KindFetch:
		return f.makeFetch(spec)
	case domain.KindStream:
		return f.makeStream(spec)
	case domain.KindRead:
		return f.makeRead(spec)
	case domain.KindConvert:
		return f.makeConvert(spec)
	case domain.KindCopy:
		return &copyTask{}, nil
	case domain.KindMessage:
		return f.makeMessage(spec)
	case domain.KindNothing:
		return &nothingTask{}, nil
	case domain.KindTee:
		return f.makeTee(spec)
	case domain.KindSave:
		return f.makeSave(spec)
	case domain.KindStore:
		return f.makeStore(spec)
	case domain.KindArchive:
		return f.makeArchive(spec)
	case domain.KindRecord:
		return f.makeRecord(spec)
	default:
		return nil, fmt.Errorf("unknown task kind %q", spec.Kind)
	}
}

// requireParam возвращает значение обязательного параметра.
func requireParam(spec domain.TaskSpec, key string) (string, error) {
	v := spec.Param(key, "")
	if v == "" {
		return "", fmt.Errorf("%w: %s(%s=...)", ErrMissingParam, spec.Kind, key)
	}
	return v, nil
}

// defaultName генерирует имя файла с временной меткой для задач,
// которым не указали name=.
func defaultName(prefix, ext string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, time.Now().UTC().Format("20060102-150405"), ext)
}

func (f *Factory) makeFetch(spec domain.TaskSpec) (pipeline.Task, error) {
	name, err := requireParam(spec, "site")
	if err != nil {
		return nil, err
	}
	src, err := f.deps.Sources.Open(name)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return &fetchTask{src: src}, nil
}

func (f *Factory) makeStream(spec domain.TaskSpec) (pipeline.Task, error) {
	name, err := requireParam(spec, "site")
	if err != nil {
		return nil, err
	}
	src, err := f.deps.Sources.Open(name)
	if err != nil {
		return nil, fmt.Errorf("stream: %w", err)
	}
	return &streamTask{src: src}, nil
}

func (f *Factory) makeRead(spec domain.TaskSpec) (pipeline.Task, error) {
	path, err := requireParam(spec, "path")
	if err != nil {
		return nil, err
	}
	fmtName := spec.Param("format", string(domain.FormatRaw))
	pktFormat, err := domain.ParseFormat(fmtName)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return &readTask{path: path, format: pktFormat}, nil
}

func (f *Factory) makeConvert(spec domain.TaskSpec) (pipeline.Task, error) {
	toName, err := requireParam(spec, "to")
	if err != nil {
		return nil, err
	}
	to, err := domain.ParseFormat(toName)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	if to == domain.FormatRaw {
		return nil, fmt.Errorf("convert: target format raw is not supported")
	}
	return &convertTask{to: to, conv: f.deps.Converter}, nil
}

func (f *Factory) makeMessage(spec domain.TaskSpec) (pipeline.Task, error) {
	msg, err := requireParam(spec, "msg")
	if err != nil {
		return nil, err
	}
	return &messageTask{msg: msg, logger: f.deps.Logger}, nil
}

func (f *Factory) makeTee(spec domain.TaskSpec) (pipeline.Task, error) {
	area := spec.Param("area", "tee")
	name := spec.Param("name", defaultName("tee", "raw"))
	return &teeTask{fs: f.deps.Fs, area: area, name: name}, nil
}

func (f *Factory) makeSave(spec domain.TaskSpec) (pipeline.Task, error) {
	out, err := requireParam(spec, "out")
	if err != nil {
		return nil, err
	}
	return &saveTask{out: out}, nil
}

func (f *Factory) makeStore(spec domain.TaskSpec) (pipeline.Task, error) {
	if f.deps.Packets == nil {
		return nil, fmt.Errorf("store: %w", ErrDatabaseNotConfigured)
	}
	area := spec.Param("area", "packets")
	return &storeTask{db: f.deps.Packets, area: area}, nil
}

func (f *Factory) makeArchive(spec domain.TaskSpec) (pipeline.Task, error) {
	area := spec.Param("area", "archive")
	name := spec.Param("name", defaultName("batch", "dat"))
	return &archiveTask{fs: f.deps.Fs, area: area, name: name}, nil
}

func (f *Factory) makeRecord(spec domain.TaskSpec) (pipeline.Task, error) {
	area := spec.Param("area", "record")
	name := spec.Param("name", defaultName("rec", "dat"))
	return &recordTask{fs: f.deps.Fs, area: area, name: name}, nil
}
