package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/statushub/statushub/internal/model"
)

var _ model.TableStore = (*TableRepository)(nil)

// TableRepository implements the table store contract on postgres. Logical
// tables are rows of the tables registry; entities hold their properties as
// a JSONB document keyed by (table, partition, row).
type TableRepository struct {
	db *Connection
}

func NewTableRepository(db *Connection) *TableRepository {
	return &TableRepository{
		db: db,
	}
}

func (r *TableRepository) CreateTableIfNotExists(ctx context.Context, table string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO tables (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, table)
	if err != nil {
		return false, fmt.Errorf("failed to create table %q: %w", table, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TableRepository) DeleteTable(ctx context.Context, table string) error {
	// entities are removed by the ON DELETE CASCADE on table_name
	tag, err := r.db.Exec(ctx, `DELETE FROM tables WHERE name = $1`, table)
	if err != nil {
		return fmt.Errorf("failed to delete table %q: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *TableRepository) TableExists(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tables WHERE name = $1)`, table).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check table %q: %w", table, err)
	}
	return exists, nil
}

func (r *TableRepository) RetrieveEntity(ctx context.Context, table, partition, row string) (model.Entity, error) {
	var props model.Properties
	err := r.db.QueryRow(ctx,
		`SELECT props FROM entities WHERE table_name = $1 AND partition = $2 AND row_name = $3`,
		table, partition, row).Scan(&props)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Entity{}, model.ErrNotFound
		}
		return model.Entity{}, fmt.Errorf("failed to retrieve entity: %w", err)
	}

	return model.Entity{Partition: partition, Row: row, Properties: props}, nil
}

func (r *TableRepository) InsertOrMergeEntity(ctx context.Context, table, partition, row string, props model.Properties) error {
	exists, err := r.TableExists(ctx, table)
	if err != nil {
		return err
	}
	if !exists {
		return model.ErrNotFound
	}

	if props == nil {
		props = model.Properties{}
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO entities (table_name, partition, row_name, props)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (table_name, partition, row_name)
		 DO UPDATE SET props = entities.props || EXCLUDED.props, updated_at = now()`,
		table, partition, row, props)
	if err != nil {
		return fmt.Errorf("failed to insert or merge entity: %w", err)
	}
	return nil
}

func (r *TableRepository) DeleteEntity(ctx context.Context, table, partition, row string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM entities WHERE table_name = $1 AND partition = $2 AND row_name = $3`,
		table, partition, row)
	if err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *TableRepository) ScanPartition(ctx context.Context, table string, filter model.ScanFilter) ([]model.Entity, error) {
	exists, err := r.TableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrNotFound
	}

	query := `SELECT partition, row_name, props FROM entities WHERE table_name = $1`
	args := []any{table}
	if filter.Partition != "" {
		query += ` AND partition = $2`
		args = append(args, filter.Partition)
	}
	query += ` ORDER BY partition, row_name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan table %q: %w", table, err)
	}
	defer rows.Close()

	entities := []model.Entity{}
	for rows.Next() {
		var e model.Entity
		if err := rows.Scan(&e.Partition, &e.Row, &e.Properties); err != nil {
			return nil, fmt.Errorf("failed to scan entity row: %w", err)
		}
		if len(filter.RequiredProps) > 0 && !e.HasProperties(filter.RequiredProps) {
			continue
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entities: %w", err)
	}

	return entities, nil
}
