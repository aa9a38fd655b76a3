package service

import (
	"context"
	"fmt"
	"time"

	"github.com/statushub/statushub/internal/friends"
	"github.com/statushub/statushub/internal/logger"
	"github.com/statushub/statushub/internal/model"
)

// UpdateData is the auth server's sign-on payload: an update-capable token
// and the coordinates of the data entity it is bound to.
type UpdateData struct {
	Token     string
	Partition string
	Row       string
	ExpiresAt time.Time
}

// AuthClient obtains tokens from the auth server.
type AuthClient interface {
	GetUpdateData(ctx context.Context, userID, password string) (UpdateData, error)
}

// TableClient performs table server operations on behalf of the user
// service: one administrative existence check at sign-on, everything else
// through the token-gated paths.
type TableClient interface {
	ReadEntityAdmin(ctx context.Context, table, partition, row string) (model.Properties, error)
	ReadEntityAuth(ctx context.Context, table, token, partition, row string) (model.Properties, error)
	UpdateEntityAuth(ctx context.Context, table, token, partition, row string, props model.Properties) error
}

// PushClient triggers the status fan-out on the push server.
type PushClient interface {
	PushStatus(ctx context.Context, partition, row, status, friendList string) error
}

// User implements the session directory and the friend-list/status protocol
// on top of the other three services.
type User struct {
	sessions model.SessionStore
	auth     AuthClient
	table    TableClient
	push     PushClient
	logger   *logger.Logger
}

func NewUser(sessions model.SessionStore, auth AuthClient, table TableClient, push PushClient, logger *logger.Logger) *User {
	return &User{
		sessions: sessions,
		auth:     auth,
		table:    table,
		push:     push,
		logger:   logger,
	}
}

// SignOn authenticates the user, verifies the bound data entity exists and
// records the session. Signing on an already-online user succeeds without
// touching the existing session.
func (u *User) SignOn(ctx context.Context, userID, password string) error {
	u.logger.Debug("User service: sign-on", "user_id", userID)

	data, err := u.auth.GetUpdateData(ctx, userID, password)
	if err != nil {
		u.logger.Info("User service: sign-on rejected by auth server",
			"user_id", userID,
			"error", err.Error())
		return model.ErrNotFound
	}

	// the credential record may point at an entity that was deleted; a
	// session bound to nothing would be useless
	if _, err := u.table.ReadEntityAdmin(ctx, model.DataTableName, data.Partition, data.Row); err != nil {
		u.logger.Info("User service: bound data entity missing",
			"user_id", userID,
			"partition", data.Partition,
			"row", data.Row)
		return model.ErrNotFound
	}

	if _, online := u.sessions.Get(userID); online {
		u.logger.Info("User service: already online", "user_id", userID)
		return nil
	}

	u.sessions.Put(model.Session{
		UserID:    userID,
		Token:     data.Token,
		Partition: data.Partition,
		Row:       data.Row,
		ExpiresAt: data.ExpiresAt,
	})

	u.logger.Info("User service: signed on",
		"user_id", userID,
		"partition", data.Partition,
		"row", data.Row)
	return nil
}

// SignOff removes the user's session. ErrNotFound when no session existed.
func (u *User) SignOff(ctx context.Context, userID string) error {
	if !u.sessions.Delete(userID) {
		return model.ErrNotFound
	}
	u.logger.Info("User service: signed off", "user_id", userID)
	return nil
}

// IsOnline reports whether the user holds a live session.
func (u *User) IsOnline(userID string) bool {
	_, ok := u.sessions.Get(userID)
	return ok
}

// ReadFriendList returns the user's serialized friend list through the
// token-gated read path. ErrForbidden when the user is not online.
func (u *User) ReadFriendList(ctx context.Context, userID string) (string, error) {
	sess, ok := u.sessions.Get(userID)
	if !ok {
		return "", model.ErrForbidden
	}

	props, err := u.table.ReadEntityAuth(ctx, model.DataTableName, sess.Token, sess.Partition, sess.Row)
	if err != nil {
		return "", fmt.Errorf("failed to read data entity: %w", err)
	}

	return props[model.PropFriends], nil
}

// AddFriend inserts (country, name) into the user's friend list. Adding an
// existing friend succeeds without a write.
func (u *User) AddFriend(ctx context.Context, userID, country, name string) error {
	return u.editFriendList(ctx, userID, func(l *friends.List) bool {
		return l.Add(friends.Friend{Country: country, Name: name})
	})
}

// UnFriend removes (country, name) from the user's friend list. Removing an
// absent friend succeeds without a write.
func (u *User) UnFriend(ctx context.Context, userID, country, name string) error {
	return u.editFriendList(ctx, userID, func(l *friends.List) bool {
		return l.Remove(friends.Friend{Country: country, Name: name})
	})
}

func (u *User) editFriendList(ctx context.Context, userID string, edit func(*friends.List) bool) error {
	sess, ok := u.sessions.Get(userID)
	if !ok {
		return model.ErrForbidden
	}

	props, err := u.table.ReadEntityAuth(ctx, model.DataTableName, sess.Token, sess.Partition, sess.Row)
	if err != nil {
		return fmt.Errorf("failed to read data entity: %w", err)
	}

	list := friends.Parse(props[model.PropFriends])
	if !edit(&list) {
		// target state already holds
		return nil
	}

	err = u.table.UpdateEntityAuth(ctx, model.DataTableName, sess.Token, sess.Partition, sess.Row,
		model.Properties{model.PropFriends: list.String()})
	if err != nil {
		return fmt.Errorf("failed to write friend list: %w", err)
	}

	u.logger.Info("User service: friend list updated",
		"user_id", userID,
		"friends", list.Len())
	return nil
}

// UpdateStatus writes the user's new status through the token-gated update
// path and hands the friend list to the push server for fan-out. The fan-out
// is not atomic; its per-friend outcome never affects this call's result.
func (u *User) UpdateStatus(ctx context.Context, userID, status string) error {
	sess, ok := u.sessions.Get(userID)
	if !ok {
		return model.ErrForbidden
	}

	err := u.table.UpdateEntityAuth(ctx, model.DataTableName, sess.Token, sess.Partition, sess.Row,
		model.Properties{model.PropStatus: status})
	if err != nil {
		return fmt.Errorf("failed to write status: %w", err)
	}

	props, err := u.table.ReadEntityAuth(ctx, model.DataTableName, sess.Token, sess.Partition, sess.Row)
	if err != nil {
		return fmt.Errorf("failed to read friend list for fan-out: %w", err)
	}

	if err := u.push.PushStatus(ctx, sess.Partition, sess.Row, status, props[model.PropFriends]); err != nil {
		u.logger.Error("User service: push server unreachable",
			"user_id", userID,
			"error", err.Error())
		return model.ErrUnavailable
	}

	u.logger.Info("User service: status updated",
		"user_id", userID,
		"status", status)
	return nil
}
