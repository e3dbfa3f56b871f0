package main

import (
	"fmt"

	"github.com/OSVTAC/osv-data-converter/extid"
)

type inMemoryRepository struct {
	db map[string]*extid.Binding
}

func newInMemoryRepository() bindingsRepository {
	return &inMemoryRepository{
		db: make(map[string]*extid.Binding),
	}
}

func (m *inMemoryRepository) save(binding *extid.Binding) error {
	id := fmt.Sprintf("%s_%s", binding.Org, binding.ExtID)
	m.db[id] = binding
	return nil
}

func (m *inMemoryRepository) findByExtID(org, extID string) (*extid.Binding, error) {
	binding, ok := m.db[fmt.Sprintf("%s_%s", org, extID)]
	if !ok {
		return nil, fmt.Errorf("no binding found for external ID [%s:%s]", org, extID)
	}
	return binding, nil
}
