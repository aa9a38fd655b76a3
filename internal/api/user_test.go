package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authclient "github.com/statushub/statushub/internal/clients/auth"
	pushclient "github.com/statushub/statushub/internal/clients/push"
	tableclient "github.com/statushub/statushub/internal/clients/table"
	"github.com/statushub/statushub/internal/model"
	"github.com/statushub/statushub/internal/service"
	"github.com/statushub/statushub/internal/session"
	"github.com/statushub/statushub/internal/testutil"
	"github.com/statushub/statushub/internal/token"
)

// The user handler test runs the whole four-service topology: table, auth and
// push servers on httptest listeners, the user service talking to them
// through the real HTTP clients.
func newUserTopology(t *testing.T) (*http.ServeMux, *testutil.TableStore) {
	t.Helper()
	ctx := context.Background()
	log := testutil.MakeNoopLogger()
	store := testutil.NewTableStore()
	tokens := token.NewJWT("secret")

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

	tableMux := http.NewServeMux()
	NewTableHandler(service.NewTable(store, tokens, log), log).Register(tableMux)
	tableSrv := httptest.NewServer(tableMux)
	t.Cleanup(tableSrv.Close)

	authMux := http.NewServeMux()
	NewAuthHandler(service.NewAuth(store, tokens, log), log).Register(authMux)
	authSrv := httptest.NewServer(authMux)
	t.Cleanup(authSrv.Close)

	mustParse := func(raw string) url.URL {
		u, perr := url.Parse(raw)
		require.NoError(t, perr)
		return *u
	}

	httpClient := &http.Client{}

	pushMux := http.NewServeMux()
	NewPushHandler(service.NewPush(
		tableclient.NewClient(httpClient, mustParse(tableSrv.URL)), log), log).Register(pushMux)
	pushSrv := httptest.NewServer(pushMux)
	t.Cleanup(pushSrv.Close)

	userService := service.NewUser(
		session.NewStore(),
		authclient.NewClient(httpClient, mustParse(authSrv.URL)),
		tableclient.NewClient(httpClient, mustParse(tableSrv.URL)),
		pushclient.NewClient(httpClient, mustParse(pushSrv.URL)),
		log,
	)

	userMux := http.NewServeMux()
	NewUserHandler(userService, log).Register(userMux)
	return userMux, store
}

func TestUserHandler_SignOnSignOff(t *testing.T) {
	mux, _ := newUserTopology(t)

	w := doRequest(mux, http.MethodPost, "/SignOn/DJKhaled", []byte(`{"Password":"password"}`))
	require.Equal(t, http.StatusOK, w.Code)

	// second sign-on is idempotent
	w = doRequest(mux, http.MethodPost, "/SignOn/DJKhaled", []byte(`{"Password":"password"}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(mux, http.MethodPost, "/SignOff/DJKhaled", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(mux, http.MethodPost, "/SignOff/DJKhaled", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_SignOn_BadCredentials(t *testing.T) {
	mux, _ := newUserTopology(t)

	w := doRequest(mux, http.MethodPost, "/SignOn/DJKhaled", []byte(`{"Password":"wrong"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(mux, http.MethodPost, "/SignOn/Nobody", []byte(`{"Password":"password"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(mux, http.MethodPost, "/SignOn/DJKhaled", []byte(`{"Wrong":"shape"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_FriendListRoundTrip(t *testing.T) {
	mux, _ := newUserTopology(t)

	w := doRequest(mux, http.MethodPost, "/SignOn/DJKhaled", []byte(`{"Password":"password"}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(mux, http.MethodPut, "/AddFriend/DJKhaled/Canada/Ted", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(mux, http.MethodGet, "/ReadFriendList/DJKhaled", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Canada;Ted", resp[model.PropFriends])

	// duplicate add keeps the list unchanged
	w = doRequest(mux, http.MethodPut, "/AddFriend/DJKhaled/Canada/Ted", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(mux, http.MethodGet, "/ReadFriendList/DJKhaled", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Canada;Ted", resp[model.PropFriends])

	w = doRequest(mux, http.MethodPut, "/UnFriend/DJKhaled/Canada/Ted", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(mux, http.MethodGet, "/ReadFriendList/DJKhaled", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp[model.PropFriends])

	// unfriending an absent friend still succeeds
	w = doRequest(mux, http.MethodPut, "/UnFriend/DJKhaled/Canada/Ted", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserHandler_RequiresSession(t *testing.T) {
	mux, _ := newUserTopology(t)

	w := doRequest(mux, http.MethodGet, "/ReadFriendList/DJKhaled", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(mux, http.MethodPut, "/AddFriend/DJKhaled/Canada/Ted", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(mux, http.MethodPut, "/UpdateStatus/DJKhaled/hello", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserHandler_UpdateStatus_FansOut(t *testing.T) {
	mux, store := newUserTopology(t)
	ctx := context.Background()

	w := doRequest(mux, http.MethodPost, "/SignOn/DJKhaled", []byte(`{"Password":"password"}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(mux, http.MethodPut, "/AddFriend/DJKhaled/Canada/Ted", nil)
	require.Equal(t, http.StatusOK, w.Code)
	// a friend that does not exist must not break the fan-out
	w = doRequest(mux, http.MethodPut, "/AddFriend/DJKhaled/Atlantis/Nobody", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(mux, http.MethodPut, "/UpdateStatus/DJKhaled/NewStatus", nil)
	require.Equal(t, http.StatusOK, w.Code)

	own, err := store.RetrieveEntity(ctx, model.DataTableName, "USA", "DJKhaled")
	require.NoError(t, err)
	assert.Equal(t, "NewStatus", own.Properties[model.PropStatus])

	ted, err := store.RetrieveEntity(ctx, model.DataTableName, "Canada", "Ted")
	require.NoError(t, err)
	assert.Equal(t, "NewStatus\n", ted.Properties[model.PropUpdates])
}
