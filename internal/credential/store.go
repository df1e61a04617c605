// Package credential проверяет, что клиент есть в реестре допущенных клиентов.
package credential

import (
	"context"

	"OrderDeskPlatform/internal/domain"
)

// Store проверка членства клиента. Сравнение регистронезависимое.
// Ошибка означает, что реестр недоступен, а не что клиента нет.
type Store interface {
	Exists(ctx context.Context, customerID domain.CustomerID) (bool, error)
}

// StaticStore фиксированный список клиентов
type StaticStore struct {
	ids map[string]struct{}
}

// NewStaticStore создает хранилище из списка идентификаторов
func NewStaticStore(ids ...string) *StaticStore {
	s := &StaticStore{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if key := domain.CustomerID(id).Key(); key != "" {
			s.ids[key] = struct{}{}
		}
	}
	return s
}

// Exists проверяет наличие клиента
func (s *StaticStore) Exists(_ context.Context, customerID domain.CustomerID) (bool, error) {
	if customerID.IsZero() {
		return false, nil
	}
	_, ok := s.ids[customerID.Key()]
	return ok, nil
}
