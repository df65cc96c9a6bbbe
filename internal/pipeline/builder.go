package pipeline

import (
	"fmt"

	"github.com/shaiso/skyfetch/internal/domain"
)

// ValidateTopology проверяет грамматику топологии:
// длина ≥ 1, первая задача Producer, последняя Consumer, все внутренние
// Filter. Возвращает ошибку, называющую первую нарушающую позицию.
func ValidateTopology(specs []domain.TaskSpec) error {
	if len(specs) == 0 {
		return NewValidationError(-1, "", "pipeline has no tasks", ErrEmptyPipeline)
	}

	last := len(specs) - 1
	for i, spec := range specs {
		capability, ok := spec.Kind.Capability()
		if !ok {
			return NewValidationError(i, string(spec.Kind),
				fmt.Sprintf("unknown task kind %q", spec.Kind), ErrUnknownKind)
		}

		switch {
		case i == 0 && capability != domain.CapabilityProducer:
			return NewValidationError(i, string(spec.Kind),
				fmt.Sprintf("pipeline must start with a producer, %s is a %s", spec.Kind, capability),
				ErrFirstNotProducer)
		case i == last && capability != domain.CapabilityConsumer:
			return NewValidationError(i, string(spec.Kind),
				fmt.Sprintf("pipeline must end with a consumer, %s is a %s", spec.Kind, capability),
				ErrLastNotConsumer)
		case i > 0 && i < last && capability != domain.CapabilityFilter:
			return NewValidationError(i, string(spec.Kind),
				fmt.Sprintf("interior task must be a filter, %s is a %s", spec.Kind, capability),
				ErrInteriorNotFilter)
		}
	}

	return nil
}

// Build валидирует топологию и инстанцирует задачи через factory.
// Чистая синхронная операция без I/O: сайты и файлы разрешаются
// позже, при выполнении.
func Build(specs []domain.TaskSpec, factory Factory) (*Pipeline, error) {
	if err := ValidateTopology(specs); err != nil {
		return nil, err
	}

	tasks := make([]Task, len(specs))
	for i, spec := range specs {
		t, err := factory.Make(spec)
		if err != nil {
			return nil, NewValidationError(i, string(spec.Kind), err.Error(), err)
		}

		// Фабрика обязана вернуть задачу, реализующую интерфейс
		// своей capability.
		capability, _ := spec.Kind.Capability()
		if !matchesCapability(t, capability) {
			return nil, NewValidationError(i, string(spec.Kind),
				fmt.Sprintf("factory returned task without %s capability", capability),
				ErrUnknownKind)
		}

		tasks[i] = t
	}

	return &Pipeline{Specs: specs, Tasks: tasks}, nil
}

// matchesCapability проверяет соответствие задачи её capability.
func matchesCapability(t Task, capability domain.Capability) bool {
	switch capability {
	case domain.CapabilityProducer:
		_, ok := t.(Producer)
		return ok
	case domain.CapabilityFilter:
		_, ok := t.(Filter)
		return ok
	case domain.CapabilityConsumer:
		_, ok := t.(Consumer)
		return ok
	default:
		return false
	}
}
