package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/signup/internal/api"
	"github.com/zjrosen/signup/internal/registration"
)

func newServer(t *testing.T, store *Store, opts Options) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(Handler(store, opts))
	t.Cleanup(srv.Close)
	return srv
}

func TestHandler_CreateListDelete(t *testing.T) {
	store := NewStore()
	srv := newServer(t, store, Options{})
	client := api.New(srv.URL + "/{tenant}")
	ctx := context.Background()

	regs, err := client.List(ctx, "acme")
	require.NoError(t, err)
	require.Empty(t, regs)

	ack, err := client.Create(ctx, "acme", registration.Input{
		Username:        "annie",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		Email:           "a@a.com",
		Newsletter:      true,
	})
	require.NoError(t, err)
	require.Equal(t, "Registration for annie received.", ack.Message)

	regs, err = client.List(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, regs, 1)
	got := regs[0]
	require.NotEmpty(t, got.ID)
	require.Equal(t, "annie", got.Username)
	require.Empty(t, got.Password)
	require.Empty(t, got.ConfirmPassword)
	require.Equal(t, "yes", got.Newsletter.Cell())
	require.NotEmpty(t, got.Text)

	other, err := client.List(ctx, "other")
	require.NoError(t, err)
	require.Empty(t, other)

	deleted, err := client.Delete(ctx, "acme", got.ID)
	require.NoError(t, err)
	require.Equal(t, got.ID, deleted.ID)

	regs, err = client.List(ctx, "acme")
	require.NoError(t, err)
	require.Empty(t, regs)
}

func TestHandler_DeleteUnknownIsNotFound(t *testing.T) {
	srv := newServer(t, NewStore(), Options{})
	client := api.New(srv.URL + "/{tenant}")

	_, err := client.Delete(context.Background(), "acme", "nope")
	require.EqualError(t, err, "Not Found")

	var reqErr *api.RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, http.StatusNotFound, reqErr.StatusCode)
}

func TestHandler_FailDeletes(t *testing.T) {
	store := NewStore()
	store.Seed("acme", registration.Registration{ID: "1", Username: "ann"})
	srv := newServer(t, store, Options{FailDeletes: true})
	client := api.New(srv.URL + "/{tenant}")

	_, err := client.Delete(context.Background(), "acme", "1")
	require.EqualError(t, err, "Internal Server Error")
	require.Len(t, store.List("acme"), 1)
}

func TestHandler_BadCreateBody(t *testing.T) {
	srv := newServer(t, NewStore(), Options{})

	resp, err := http.Post(srv.URL+"/acme/register", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Bad Request", body)
}

func TestHandler_UnknownRoute(t *testing.T) {
	srv := newServer(t, NewStore(), Options{})

	resp, err := http.Get(srv.URL + "/acme/users")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_SeededNewsletterPassesThrough(t *testing.T) {
	store := NewStore()
	var odd registration.Newsletter
	require.NoError(t, json.Unmarshal([]byte(`"weekly"`), &odd))
	store.Seed("acme",
		registration.Registration{ID: "1", Username: "ann", Email: "a@a.com", Newsletter: registration.NewsletterOf(true), Text: "t"},
		registration.Registration{ID: "2", Username: "bob", Newsletter: registration.NewsletterOf(false)},
		registration.Registration{ID: "3", Username: "cy", Newsletter: odd},
	)
	srv := newServer(t, store, Options{})
	client := api.New(srv.URL + "/{tenant}")

	regs, err := client.List(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, regs, 3)
	require.Equal(t, "yes", regs[0].Newsletter.Cell())
	require.Equal(t, "no", regs[1].Newsletter.Cell())
	require.Equal(t, "weekly", regs[2].Newsletter.Cell())
}
