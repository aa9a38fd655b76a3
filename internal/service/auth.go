package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/statushub/statushub/internal/logger"
	"github.com/statushub/statushub/internal/model"
)

// Auth issues scoped tokens in exchange for credentials. Credential records
// live in the auth table under the fixed Userid partition, one row per user,
// carrying Password, DataPartition and DataRow properties.
type Auth struct {
	store  model.TableStore
	tokens model.TokenManager
	logger *logger.Logger
}

func NewAuth(store model.TableStore, tokens model.TokenManager, logger *logger.Logger) *Auth {
	return &Auth{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// IssuedToken is the result of a successful authorization: the signed token
// and the (partition, row) of the data entity it is bound to.
type IssuedToken struct {
	Token     string
	Partition string
	Row       string
	ExpiresAt time.Time
}

// IssueToken authenticates userID with password and returns a token bound to
// the user's data entity with the requested capability. Absent user, wrong
// password and malformed credential record all collapse into ErrNotFound so
// the caller cannot probe which user ids exist.
func (a *Auth) IssueToken(ctx context.Context, userID, password string, capability model.Capability) (IssuedToken, error) {
	a.logger.Debug("Auth service: issuing token",
		"user_id", userID,
		"capability", string(capability))

	for _, table := range []string{model.AuthTableName, model.DataTableName} {
		exists, err := a.store.TableExists(ctx, table)
		if err != nil {
			return IssuedToken{}, fmt.Errorf("failed to check table %q: %w", table, err)
		}
		if !exists {
			a.logger.Info("Auth service: table missing", "table", table)
			return IssuedToken{}, model.ErrNotFound
		}
	}

	credential, err := a.store.RetrieveEntity(ctx, model.AuthTableName, model.AuthUseridPartition, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.logger.Info("Auth service: unknown user", "user_id", userID)
			return IssuedToken{}, model.ErrNotFound
		}
		return IssuedToken{}, fmt.Errorf("failed to look up credential record: %w", err)
	}

	stored := credential.Properties[model.PropPassword]
	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		a.logger.Info("Auth service: password mismatch", "user_id", userID)
		return IssuedToken{}, model.ErrNotFound
	}

	partition := credential.Properties[model.PropDataPartition]
	row := credential.Properties[model.PropDataRow]
	if partition == "" || row == "" {
		a.logger.Error("Auth service: malformed credential record",
			"user_id", userID)
		return IssuedToken{}, model.ErrNotFound
	}

	tokenString, err := a.tokens.Generate(model.DataTableName, partition, row, capability)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("failed to generate token: %w", err)
	}

	grant, err := a.tokens.Verify(tokenString)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("failed to verify issued token: %w", err)
	}

	a.logger.Info("Auth service: token issued",
		"user_id", userID,
		"partition", partition,
		"row", row,
		"capability", string(capability))

	return IssuedToken{
		Token:     tokenString,
		Partition: partition,
		Row:       row,
		ExpiresAt: grant.ExpiresAt,
	}, nil
}
