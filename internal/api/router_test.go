package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-social/folio/internal/accounts"
	"github.com/folio-social/folio/internal/db"
	"github.com/folio-social/folio/internal/follow"
	"github.com/folio-social/folio/internal/models"
)

type viewEnvelope struct {
	Response models.AccountView `json:"response"`
}

func newMemoryRouter() *gin.Engine {
	store := db.NewMemoryStore()
	graph := follow.NewGraph(store)
	svc := accounts.NewService(store, graph, accounts.NewBcryptHasher(4))

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewRouter(svc, graph, store, WithMetrics(true)).SetupRoutes(engine)
	return engine
}

func registerVia(t *testing.T, router *gin.Engine, username, email, password, name string) models.AccountView {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/user/new_user", url.Values{
		"email": {email}, "username": {username}, "password": {password}, "name": {name},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env viewEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Response
}

func getVia(t *testing.T, router *gin.Engine, id int64) models.AccountView {
	t.Helper()
	w := doRequest(router, http.MethodGet, "/users/"+strconv.FormatInt(id, 10), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env viewEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Response
}

func TestRouter_EndToEnd(t *testing.T) {
	router := newMemoryRouter()

	alice := registerVia(t, router, "alice", "a@x.com", "p1", "Alice A")
	bob := registerVia(t, router, "bob", "b@x.com", "p2", "Bob B")
	assert.Empty(t, alice.FollowState.Following)
	assert.Empty(t, alice.FollowState.FollowedBy)
	assert.Empty(t, alice.Folios)

	// duplicate email
	w := doRequest(router, http.MethodPost, "/user/new_user", url.Values{
		"email": {"a@x.com"}, "username": {"alice2"}, "password": {"p"}, "name": {"Other"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// authentication round trip
	w = doRequest(router, http.MethodGet, "/user/authenticate", url.Values{"email": {"a@x.com"}, "password": {"p1"}})
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(router, http.MethodGet, "/user/authenticate", url.Values{"email": {"a@x.com"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// search by real name
	w = doRequest(router, http.MethodGet, "/user/search", url.Values{"query": {"Bob B"}})
	require.Equal(t, http.StatusOK, w.Code)
	var found viewEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	assert.Equal(t, bob.ID, found.Response.ID)

	// follow alice -> bob
	ids := url.Values{
		"follower_id": {strconv.FormatInt(alice.ID, 10)},
		"followed_id": {strconv.FormatInt(bob.ID, 10)},
	}
	w = doRequest(router, http.MethodPost, "/user/follow", ids)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []int64{bob.ID}, getVia(t, router, alice.ID).FollowState.Following)
	assert.Equal(t, []int64{alice.ID}, getVia(t, router, bob.ID).FollowState.FollowedBy)

	w = doRequest(router, http.MethodPost, "/user/follow", ids)
	assert.Equal(t, http.StatusConflict, w.Code)

	// folios
	w = doRequest(router, http.MethodPost, "/users/"+strconv.FormatInt(alice.ID, 10)+"/folios",
		url.Values{"folios": {"travel", "food"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"travel", "food"}, getVia(t, router, alice.ID).Folios)

	// deleting bob removes alice's edge to him
	w = doRequest(router, http.MethodPost, "/user/delete", url.Values{"id": {strconv.FormatInt(bob.ID, 10)}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, getVia(t, router, alice.ID).FollowState.Following)

	w = doRequest(router, http.MethodGet, "/users/"+strconv.FormatInt(bob.ID, 10), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodGet, "/users/"+strconv.FormatInt(alice.ID, 10)+"/details", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newMemoryRouter()
	w := doRequest(router, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	decodeEnvelope(t, w)

	w = doRequest(router, http.MethodGet, "/users/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_RegisterMultibytePassword(t *testing.T) {
	router := newMemoryRouter()

	// passes the rune-counted max=72 tag but is 80 bytes long
	w := doRequest(router, http.MethodPost, "/user/new_user", url.Values{
		"email": {"a@x.com"}, "username": {"alice"}, "password": {strings.Repeat("é", 40)}, "name": {"Alice A"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	decodeEnvelope(t, w)

	registerVia(t, router, "alice", "a@x.com", strings.Repeat("é", 36), "Alice A")
}
