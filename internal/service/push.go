package service

import (
	"context"

	"github.com/statushub/statushub/internal/friends"
	"github.com/statushub/statushub/internal/logger"
	"github.com/statushub/statushub/internal/model"
)

// AdminTableClient is the administrative slice of the table server used by
// the fan-out: friends' entities are read and appended to without tokens,
// trusted by virtue of originating from a backend service.
type AdminTableClient interface {
	ReadEntityAdmin(ctx context.Context, table, partition, row string) (model.Properties, error)
	UpdateEntityAdmin(ctx context.Context, table, partition, row string, props model.Properties) error
}

// Push propagates a status update into every listed friend's Updates log.
type Push struct {
	table  AdminTableClient
	logger *logger.Logger
}

func NewPush(table AdminTableClient, logger *logger.Logger) *Push {
	return &Push{
		table:  table,
		logger: logger,
	}
}

// FanOutResult tallies one fan-out pass. Attempted counts every friend in
// the list; Pushed counts those whose Updates property was extended.
type FanOutResult struct {
	Attempted int
	Pushed    int
}

// PushStatus appends status plus a newline to the Updates property of every
// friend in the serialized list. Friends are not guaranteed to exist;
// per-friend failures are logged, counted and skipped, never propagated.
// The fan-out is not atomic.
func (p *Push) PushStatus(ctx context.Context, status, friendList string) FanOutResult {
	list := friends.Parse(friendList)
	result := FanOutResult{Attempted: list.Len()}

	for _, f := range list.All() {
		props, err := p.table.ReadEntityAdmin(ctx, model.DataTableName, f.Country, f.Name)
		if err != nil {
			p.logger.Info("Push service: friend not found, skipping",
				"country", f.Country,
				"name", f.Name)
			continue
		}

		updates := props[model.PropUpdates] + status + "\n"
		err = p.table.UpdateEntityAdmin(ctx, model.DataTableName, f.Country, f.Name,
			model.Properties{model.PropUpdates: updates})
		if err != nil {
			p.logger.Error("Push service: failed to append update",
				"country", f.Country,
				"name", f.Name,
				"error", err.Error())
			continue
		}

		result.Pushed++
	}

	p.logger.Info("Push service: fan-out complete",
		"status", status,
		"pushed", result.Pushed,
		"attempted", result.Attempted)
	return result
}
