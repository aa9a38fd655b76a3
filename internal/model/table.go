package model

import "context"

// ScanFilter narrows a table scan. Partition restricts the scan to one
// partition when non-empty. RequiredProps keeps only entities whose property
// set is a superset of the given names, irrespective of values.
type ScanFilter struct {
	Partition     string
	RequiredProps []string
}

// TableStore is the durable entity store consumed by every service. Entities
// are keyed by (table, partition, row) and hold flat string-valued
// properties.
type TableStore interface {
	CreateTableIfNotExists(ctx context.Context, table string) (created bool, err error)
	DeleteTable(ctx context.Context, table string) error
	TableExists(ctx context.Context, table string) (bool, error)

	RetrieveEntity(ctx context.Context, table, partition, row string) (Entity, error)
	InsertOrMergeEntity(ctx context.Context, table, partition, row string, props Properties) error
	DeleteEntity(ctx context.Context, table, partition, row string) error

	ScanPartition(ctx context.Context, table string, filter ScanFilter) ([]Entity, error)
}
