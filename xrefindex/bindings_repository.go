package main

import "github.com/OSVTAC/osv-data-converter/extid"

type bindingsRepository interface {
	save(binding *extid.Binding) error

	findByExtID(org, extID string) (*extid.Binding, error)
}
