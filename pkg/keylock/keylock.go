// Package keylock выдает взаимоисключающие блокировки по строковому ключу.
//
// Registry упорядочивает вызовы внутри одного процесса, RedisLocker делает то же
// для процессов с общим Redis. Оба возвращают функцию освобождения,
// которую нужно вызвать один раз. Повторные вызовы ничего не делают
package keylock

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrLockTimeout контекст завершился до захвата блокировки
	ErrLockTimeout = errors.New("keylock: lock wait timed out")

	// ErrLockLost при освобождении: блокировка истекла и занята другим владельцем
	ErrLockLost = errors.New("keylock: lock lost before release")

	// ErrBackend хранилище блокировок недоступно
	ErrBackend = errors.New("keylock: backend error")
)

// ReleaseFunc освобождает захваченную блокировку
type ReleaseFunc func() error

type entry struct {
	ch   chan struct{}
	refs int
}

// Registry таблица блокировок внутри процесса. Записи создаются по требованию
// и удаляются, когда их никто не держит и не ждёт. Разные ключи не конкурируют,
// а память не растёт с числом ключей
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry создает пустую таблицу блокировок
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Acquire ждёт, пока блокировка key не освободится или не завершится ctx
func (r *Registry) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockTimeout, err)
	}

	e := r.ref(key)

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		r.unref(key, e)
		return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
	}

	var once sync.Once
	return func() error {
		once.Do(func() {
			<-e.ch
			r.unref(key, e)
		})
		return nil
	}, nil
}

// Len число ключей, которые сейчас держат или ждут
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) ref(key string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		r.entries[key] = e
	}
	e.refs++
	return e
}

func (r *Registry) unref(key string, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(r.entries, key)
	}
}
