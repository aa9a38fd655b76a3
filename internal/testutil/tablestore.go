package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/statushub/statushub/internal/model"
)

type entityKey struct {
	partition string
	row       string
}

// TableStore is an in-memory model.TableStore used by unit tests in place of
// the postgres-backed repository. It follows the same contract, including
// ErrNotFound on absent tables and entities.
type TableStore struct {
	mu     sync.Mutex
	tables map[string]map[entityKey]model.Properties
}

var _ model.TableStore = (*TableStore)(nil)

func NewTableStore() *TableStore {
	return &TableStore{tables: make(map[string]map[entityKey]model.Properties)}
}

func (s *TableStore) CreateTableIfNotExists(_ context.Context, table string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[table]; ok {
		return false, nil
	}
	s.tables[table] = make(map[entityKey]model.Properties)
	return true, nil
}

func (s *TableStore) DeleteTable(_ context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[table]; !ok {
		return model.ErrNotFound
	}
	delete(s.tables, table)
	return nil
}

func (s *TableStore) TableExists(_ context.Context, table string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tables[table]
	return ok, nil
}

func (s *TableStore) RetrieveEntity(_ context.Context, table, partition, row string) (model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entities, ok := s.tables[table]
	if !ok {
		return model.Entity{}, model.ErrNotFound
	}
	props, ok := entities[entityKey{partition, row}]
	if !ok {
		return model.Entity{}, model.ErrNotFound
	}
	return model.Entity{Partition: partition, Row: row, Properties: cloneProps(props)}, nil
}

func (s *TableStore) InsertOrMergeEntity(_ context.Context, table, partition, row string, props model.Properties) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entities, ok := s.tables[table]
	if !ok {
		return model.ErrNotFound
	}
	key := entityKey{partition, row}
	merged, ok := entities[key]
	if !ok {
		merged = model.Properties{}
	}
	for k, v := range props {
		merged[k] = v
	}
	entities[key] = merged
	return nil
}

func (s *TableStore) DeleteEntity(_ context.Context, table, partition, row string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entities, ok := s.tables[table]
	if !ok {
		return model.ErrNotFound
	}
	key := entityKey{partition, row}
	if _, ok := entities[key]; !ok {
		return model.ErrNotFound
	}
	delete(entities, key)
	return nil
}

func (s *TableStore) ScanPartition(_ context.Context, table string, filter model.ScanFilter) ([]model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entities, ok := s.tables[table]
	if !ok {
		return nil, model.ErrNotFound
	}

	result := []model.Entity{}
	for key, props := range entities {
		if filter.Partition != "" && key.partition != filter.Partition {
			continue
		}
		e := model.Entity{Partition: key.partition, Row: key.row, Properties: cloneProps(props)}
		if len(filter.RequiredProps) > 0 && !e.HasProperties(filter.RequiredProps) {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Partition != result[j].Partition {
			return result[i].Partition < result[j].Partition
		}
		return result[i].Row < result[j].Row
	})
	return result, nil
}

func cloneProps(props model.Properties) model.Properties {
	c := make(model.Properties, len(props))
	for k, v := range props {
		c[k] = v
	}
	return c
}
