package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/statushub/statushub/internal/logger"
	"github.com/statushub/statushub/internal/model"
)

// Table serves the generic table CRUD operations. Administrative operations
// go straight to the store; token-authorized operations pass through the
// scoped access gateway first (Authorize), which enforces the token's
// binding and capability before any store access.
type Table struct {
	store  model.TableStore
	tokens model.TokenManager
	logger *logger.Logger
}

func NewTable(store model.TableStore, tokens model.TokenManager, logger *logger.Logger) *Table {
	return &Table{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// CreateTable creates the table if absent, reporting whether it was created.
func (t *Table) CreateTable(ctx context.Context, table string) (bool, error) {
	created, err := t.store.CreateTableIfNotExists(ctx, table)
	if err != nil {
		return false, fmt.Errorf("failed to create table: %w", err)
	}
	t.logger.Info("Table service: create table", "table", table, "created", created)
	return created, nil
}

// DeleteTable removes the table and all its entities.
func (t *Table) DeleteTable(ctx context.Context, table string) error {
	if err := t.store.DeleteTable(ctx, table); err != nil {
		return err
	}
	t.logger.Info("Table service: table deleted", "table", table)
	return nil
}

// ReadEntity retrieves one entity through the administrative path.
func (t *Table) ReadEntity(ctx context.Context, table, partition, row string) (model.Entity, error) {
	if err := t.requireTable(ctx, table); err != nil {
		return model.Entity{}, err
	}
	return t.store.RetrieveEntity(ctx, table, partition, row)
}

// ReadPartition scans all entities of one partition (the `*` row form of the
// admin read).
func (t *Table) ReadPartition(ctx context.Context, table, partition string) ([]model.Entity, error) {
	if err := t.requireTable(ctx, table); err != nil {
		return nil, err
	}
	return t.store.ScanPartition(ctx, table, model.ScanFilter{Partition: partition})
}

// ReadAll scans the whole table. When propNames is non-empty only entities
// carrying every named property are returned, irrespective of values.
func (t *Table) ReadAll(ctx context.Context, table string, propNames []string) ([]model.Entity, error) {
	if err := t.requireTable(ctx, table); err != nil {
		return nil, err
	}
	return t.store.ScanPartition(ctx, table, model.ScanFilter{RequiredProps: propNames})
}

// UpdateEntity merges props into the entity through the administrative path,
// creating the entity if absent.
func (t *Table) UpdateEntity(ctx context.Context, table, partition, row string, props model.Properties) error {
	if err := t.requireTable(ctx, table); err != nil {
		return err
	}
	if err := t.store.InsertOrMergeEntity(ctx, table, partition, row, props); err != nil {
		return fmt.Errorf("failed to merge entity: %w", err)
	}
	t.logger.Info("Table service: entity updated",
		"table", table,
		"partition", partition,
		"row", row)
	return nil
}

// DeleteEntity removes one entity through the administrative path.
func (t *Table) DeleteEntity(ctx context.Context, table, partition, row string) error {
	if err := t.requireTable(ctx, table); err != nil {
		return err
	}
	return t.store.DeleteEntity(ctx, table, partition, row)
}

// AuthorizedRead serves a token-gated read. The token must verify, be bound
// to exactly the requested (table, partition, row) and carry read
// capability. A binding mismatch reads as ErrNotFound: the caller holds a
// valid token, just not for this entity, and learns nothing about it.
func (t *Table) AuthorizedRead(ctx context.Context, tokenString, table, partition, row string) (model.Entity, error) {
	grant, err := t.authorize(tokenString, table, partition, row, model.CapabilityRead)
	if err != nil {
		if errors.Is(err, errBindingMismatch) {
			t.logger.Info("Table service: read binding mismatch",
				"table", table,
				"partition", partition,
				"row", row)
			return model.Entity{}, model.ErrNotFound
		}
		return model.Entity{}, err
	}

	return t.store.RetrieveEntity(ctx, grant.Table, grant.Partition, grant.Row)
}

// AuthorizedUpdate serves a token-gated merge. Binding mismatch and missing
// update capability both reject with ErrForbidden.
func (t *Table) AuthorizedUpdate(ctx context.Context, tokenString, table, partition, row string, props model.Properties) error {
	grant, err := t.authorize(tokenString, table, partition, row, model.CapabilityReadUpdate)
	if err != nil {
		if errors.Is(err, errBindingMismatch) {
			t.logger.Info("Table service: update binding mismatch",
				"table", table,
				"partition", partition,
				"row", row)
			return model.ErrForbidden
		}
		return err
	}

	if err := t.store.InsertOrMergeEntity(ctx, grant.Table, grant.Partition, grant.Row, props); err != nil {
		return fmt.Errorf("failed to merge entity: %w", err)
	}
	t.logger.Info("Table service: authorized update",
		"table", grant.Table,
		"partition", grant.Partition,
		"row", grant.Row)
	return nil
}

// errBindingMismatch is internal to the gateway: the two authorized paths
// translate it into their path-specific rejection.
var errBindingMismatch = fmt.Errorf("token binding mismatch")

// authorize runs the gateway checks in order: signature and expiry, binding
// equality, capability. It never touches the store.
func (t *Table) authorize(tokenString, table, partition, row string, required model.Capability) (model.Grant, error) {
	grant, err := t.tokens.Verify(tokenString)
	if err != nil {
		t.logger.Info("Table service: token rejected", "error", err.Error())
		return model.Grant{}, model.ErrForbidden
	}

	if grant.Table != table || grant.Partition != partition || grant.Row != row {
		return model.Grant{}, errBindingMismatch
	}

	if required.CanUpdate() && !grant.Capability.CanUpdate() {
		t.logger.Info("Table service: capability insufficient",
			"table", table,
			"partition", partition,
			"row", row)
		return model.Grant{}, model.ErrForbidden
	}

	return grant, nil
}

func (t *Table) requireTable(ctx context.Context, table string) error {
	exists, err := t.store.TableExists(ctx, table)
	if err != nil {
		return fmt.Errorf("failed to check table: %w", err)
	}
	if !exists {
		return model.ErrNotFound
	}
	return nil
}
