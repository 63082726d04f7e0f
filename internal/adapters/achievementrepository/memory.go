package achievementrepository

import (
	"context"
	"fmt"
	"sync"

	"github.com/Amund211/milestones/internal/domain"
)

type Memory struct {
	mutex sync.Mutex
	slots map[domain.Key]domain.Instance
	locks map[domain.Key]*sync.Mutex
}

func NewMemory() *Memory {
	return &Memory{
		slots: make(map[domain.Key]domain.Instance),
		locks: make(map[domain.Key]*sync.Mutex),
	}
}

func (m *Memory) keyLock(key domain.Key) *sync.Mutex {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	return lock
}

func (m *Memory) read(key domain.Key) *domain.Instance {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	instance, ok := m.slots[key]
	if !ok {
		return nil
	}
	return &instance
}

func (m *Memory) write(key domain.Key, instance domain.Instance) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.slots[key] = instance
}

func (m *Memory) Register(ctx context.Context, key domain.Key, decide Decider) (domain.Decision, error) {
	if err := ctx.Err(); err != nil {
		return domain.Decision{}, err
	}

	lock := m.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	decision, err := decide(m.read(key))
	if err != nil {
		return decision, fmt.Errorf("failed to decide registration for %s: %w", key, err)
	}
	if err := checkDecision(key, decision); err != nil {
		return domain.Decision{}, err
	}

	if decision.Outcome == domain.OutcomeReplace {
		m.write(key, decision.Instance)
	}

	return decision, nil
}

func (m *Memory) Get(ctx context.Context, key domain.Key) (*domain.Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.read(key), nil
}

func (m *Memory) List(ctx context.Context) ([]domain.Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mutex.Lock()
	instances := make([]domain.Instance, 0, len(m.slots))
	for _, instance := range m.slots {
		instances = append(instances, instance)
	}
	m.mutex.Unlock()

	sortInstances(instances)
	return instances, nil
}

func (m *Memory) Restore(ctx context.Context, instances []domain.Instance) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, instance := range instances {
		if !instance.Valid() {
			continue
		}
		key := instance.Key()

		lock := m.keyLock(key)
		lock.Lock()
		m.write(key, instance)
		lock.Unlock()
	}
	return nil
}

// Type assertion
var _ AchievementRepository = (*Memory)(nil)
