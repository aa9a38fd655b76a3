package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statushub/statushub/internal/model"
	"github.com/statushub/statushub/internal/session"
	"github.com/statushub/statushub/internal/testutil"
	"github.com/statushub/statushub/internal/token"
)

// The user service fixture wires real auth, table and push services around a
// shared in-memory store, bypassing HTTP.

type localAuthClient struct {
	auth *Auth
}

func (c *localAuthClient) GetUpdateData(ctx context.Context, userID, password string) (UpdateData, error) {
	issued, err := c.auth.IssueToken(ctx, userID, password, model.CapabilityReadUpdate)
	if err != nil {
		return UpdateData{}, err
	}
	return UpdateData{
		Token:     issued.Token,
		Partition: issued.Partition,
		Row:       issued.Row,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

type localTableClient struct {
	table *Table
}

func (c *localTableClient) ReadEntityAdmin(ctx context.Context, table, partition, row string) (model.Properties, error) {
	e, err := c.table.ReadEntity(ctx, table, partition, row)
	if err != nil {
		return nil, err
	}
	return e.Properties, nil
}

func (c *localTableClient) ReadEntityAuth(ctx context.Context, table, tok, partition, row string) (model.Properties, error) {
	e, err := c.table.AuthorizedRead(ctx, tok, table, partition, row)
	if err != nil {
		return nil, err
	}
	return e.Properties, nil
}

func (c *localTableClient) UpdateEntityAuth(ctx context.Context, table, tok, partition, row string, props model.Properties) error {
	return c.table.AuthorizedUpdate(ctx, tok, table, partition, row, props)
}

type localPushClient struct {
	push *Push
	err  error

	lastStatus  string
	lastFriends string
}

func (c *localPushClient) PushStatus(ctx context.Context, partition, row, status, friendList string) error {
	if c.err != nil {
		return c.err
	}
	c.lastStatus = status
	c.lastFriends = friendList
	c.push.PushStatus(ctx, status, friendList)
	return nil
}

type userFixture struct {
	user     *User
	store    *testutil.TableStore
	sessions *session.Store
	push     *localPushClient
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	ctx := context.Background()
	store := testutil.NewTableStore()
	tokens := token.NewJWT("secret")
	log := testutil.MakeNoopLogger()

	_, err := store.CreateTableIfNotExists(ctx, model.AuthTableName)
	require.NoError(t, err)
	_, err = store.CreateTableIfNotExists(ctx, model.DataTableName)
	require.NoError(t, err)

	seed := func(userID, country, name string) {
		require.NoError(t, store.InsertOrMergeEntity(ctx, model.AuthTableName, model.AuthUseridPartition, userID,
			model.Properties{
				model.PropPassword:      "password",
				model.PropDataPartition: country,
				model.PropDataRow:       name,
			}))
		require.NoError(t, store.InsertOrMergeEntity(ctx, model.DataTableName, country, name,
			model.Properties{
				model.PropFriends: "",
				model.PropStatus:  "",
				model.PropUpdates: "",
			}))
	}
	seed("DJKhaled", "USA", "DJKhaled")
	seed("Ted", "Canada", "Ted")
	seed("Adebola", "Canada", "Adebola")

	tableSvc := NewTable(store, tokens, log)
	push := &localPushClient{push: NewPush(&storeTableClient{store: store}, log)}
	sessions := session.NewStore()

	user := NewUser(sessions,
		&localAuthClient{auth: NewAuth(store, tokens, log)},
		&localTableClient{table: tableSvc},
		push,
		log)

	return &userFixture{user: user, store: store, sessions: sessions, push: push}
}

func TestUser_SignOnSignOff(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	require.NoError(t, f.user.SignOn(ctx, "DJKhaled", "password"))
	assert.True(t, f.user.IsOnline("DJKhaled"))

	// idempotent while online
	require.NoError(t, f.user.SignOn(ctx, "DJKhaled", "password"))

	require.NoError(t, f.user.SignOff(ctx, "DJKhaled"))
	assert.False(t, f.user.IsOnline("DJKhaled"))

	require.ErrorIs(t, f.user.SignOff(ctx, "DJKhaled"), model.ErrNotFound)
}

func TestUser_SignOn_BadPassword(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	require.ErrorIs(t, f.user.SignOn(ctx, "DJKhaled", "wrong"), model.ErrNotFound)
	assert.False(t, f.user.IsOnline("DJKhaled"))
}

func TestUser_SignOn_MissingDataEntity(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	require.NoError(t, f.store.DeleteEntity(ctx, model.DataTableName, "USA", "DJKhaled"))
	require.ErrorIs(t, f.user.SignOn(ctx, "DJKhaled", "password"), model.ErrNotFound)
}

func TestUser_FriendList_RequiresSession(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	_, err := f.user.ReadFriendList(ctx, "DJKhaled")
	require.ErrorIs(t, err, model.ErrForbidden)
	require.ErrorIs(t, f.user.AddFriend(ctx, "DJKhaled", "Canada", "Ted"), model.ErrForbidden)
	require.ErrorIs(t, f.user.UpdateStatus(ctx, "DJKhaled", "hi"), model.ErrForbidden)
}

func TestUser_AddAndRemoveFriend(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	require.NoError(t, f.user.SignOn(ctx, "DJKhaled", "password"))

	require.NoError(t, f.user.AddFriend(ctx, "DJKhaled", "Canada", "Ted"))
	require.NoError(t, f.user.AddFriend(ctx, "DJKhaled", "Canada", "Adebola"))

	list, err := f.user.ReadFriendList(ctx, "DJKhaled")
	require.NoError(t, err)
	assert.Equal(t, "Canada;Ted|Canada;Adebola", list)

	// duplicate add is a no-op
	require.NoError(t, f.user.AddFriend(ctx, "DJKhaled", "Canada", "Ted"))
	list, err = f.user.ReadFriendList(ctx, "DJKhaled")
	require.NoError(t, err)
	assert.Equal(t, "Canada;Ted|Canada;Adebola", list)

	require.NoError(t, f.user.UnFriend(ctx, "DJKhaled", "Canada", "Ted"))
	list, err = f.user.ReadFriendList(ctx, "DJKhaled")
	require.NoError(t, err)
	assert.Equal(t, "Canada;Adebola", list)

	// removing an absent friend succeeds
	require.NoError(t, f.user.UnFriend(ctx, "DJKhaled", "Atlantis", "Nobody"))
}

func TestUser_UpdateStatus_FansOut(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	require.NoError(t, f.user.SignOn(ctx, "DJKhaled", "password"))
	require.NoError(t, f.user.AddFriend(ctx, "DJKhaled", "Canada", "Ted"))
	require.NoError(t, f.user.AddFriend(ctx, "DJKhaled", "Canada", "Adebola"))

	require.NoError(t, f.user.UpdateStatus(ctx, "DJKhaled", "another one"))

	own, err := f.store.RetrieveEntity(ctx, model.DataTableName, "USA", "DJKhaled")
	require.NoError(t, err)
	assert.Equal(t, "another one", own.Properties[model.PropStatus])

	ted, err := f.store.RetrieveEntity(ctx, model.DataTableName, "Canada", "Ted")
	require.NoError(t, err)
	assert.Equal(t, "another one\n", ted.Properties[model.PropUpdates])

	adebola, err := f.store.RetrieveEntity(ctx, model.DataTableName, "Canada", "Adebola")
	require.NoError(t, err)
	assert.Equal(t, "another one\n", adebola.Properties[model.PropUpdates])
}

func TestUser_UpdateStatus_NonexistentFriendTolerated(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	require.NoError(t, f.user.SignOn(ctx, "DJKhaled", "password"))
	require.NoError(t, f.user.AddFriend(ctx, "DJKhaled", "Atlantis", "Nobody"))
	require.NoError(t, f.user.AddFriend(ctx, "DJKhaled", "Canada", "Ted"))

	// missing friends never fail the status update
	require.NoError(t, f.user.UpdateStatus(ctx, "DJKhaled", "hello"))

	ted, err := f.store.RetrieveEntity(ctx, model.DataTableName, "Canada", "Ted")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", ted.Properties[model.PropUpdates])
}

func TestUser_UpdateStatus_PushUnreachable(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	require.NoError(t, f.user.SignOn(ctx, "DJKhaled", "password"))
	f.push.err = errors.New("connection refused")

	err := f.user.UpdateStatus(ctx, "DJKhaled", "hello")
	require.ErrorIs(t, err, model.ErrUnavailable)

	// own status write happened before the fan-out attempt
	own, rerr := f.store.RetrieveEntity(ctx, model.DataTableName, "USA", "DJKhaled")
	require.NoError(t, rerr)
	assert.Equal(t, "hello", own.Properties[model.PropStatus])
}

func TestUser_ExpiredSessionTreatedAsOffline(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)

	require.NoError(t, f.user.SignOn(ctx, "Ted", "password"))

	// simulate token expiry by rewinding the session deadline
	sess, ok := f.sessions.Get("Ted")
	require.True(t, ok)
	sess.ExpiresAt = sess.ExpiresAt.Add(-48 * time.Hour)
	f.sessions.Put(sess)

	assert.False(t, f.user.IsOnline("Ted"))
	_, err := f.user.ReadFriendList(ctx, "Ted")
	require.ErrorIs(t, err, model.ErrForbidden)
}
