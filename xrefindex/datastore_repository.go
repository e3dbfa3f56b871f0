package main

import (
	"context"
	"fmt"

	"cloud.google.com/go/datastore"
	"github.com/OSVTAC/osv-data-converter/extid"
)

const bindingsCollection = "ext_bindings"

type datastoreRepository struct {
	client *datastore.Client
}

func newDatastoreRepository(client *datastore.Client) bindingsRepository {
	return &datastoreRepository{
		client: client,
	}
}

func (ds *datastoreRepository) save(binding *extid.Binding) error {
	key := datastore.NameKey(bindingsCollection, fmt.Sprintf("%s_%s", binding.Org, binding.ExtID), nil)
	if _, err := ds.client.Put(context.Background(), key, binding); err != nil {
		return fmt.Errorf("failed to save binding for external ID [%s:%s], error %q", binding.Org, binding.ExtID, err)
	}
	return nil
}

func (ds *datastoreRepository) findByExtID(org, extID string) (*extid.Binding, error) {
	query := datastore.NewQuery(bindingsCollection).Filter("Org =", org).Filter("ExtID =", extID)
	var entities []*extid.Binding
	if _, err := ds.client.GetAll(context.Background(), query, &entities); err != nil {
		return nil, fmt.Errorf("failed to query binding for external ID [%s:%s], error %q", org, extID, err)
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("no binding found for external ID [%s:%s]", org, extID)
	}
	return entities[0], nil
}
