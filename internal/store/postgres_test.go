package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/tvgate/internal/models"
)

// newTestPostgres connects to TVGATE_TEST_DATABASE_URL, migrates it and
// truncates both tables. The test is skipped when the variable is unset.
func newTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("TVGATE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TVGATE_TEST_DATABASE_URL not set")
	}
	require.NoError(t, RunMigrations(dsn, MigrationsPath("../../migrations")))

	ctx := context.Background()
	pg, err := NewPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pg.Close)

	_, err = pg.pool.Exec(ctx, `TRUNCATE users, channels`)
	require.NoError(t, err)
	return pg
}

func TestPostgresUsers(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()

	u := &models.User{
		ID:            uuid.NewString(),
		Username:      "alice",
		Email:         "alice@gmail.com",
		PasswordHash:  "hash",
		PlaylistToken: "tok-alice",
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, pg.CreateUser(ctx, u))

	dup := *u
	dup.ID = uuid.NewString()
	dup.PlaylistToken = "tok-other"
	assert.ErrorIs(t, pg.CreateUser(ctx, &dup), ErrDuplicate)

	got, err := pg.GetUserByToken(ctx, "tok-alice")
	require.NoError(t, err)
	assert.Equal(t, u.Username, got.Username)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = pg.GetUserByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = pg.FindUserByUsernameOrEmail(ctx, "bob", "alice@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, pg.SetAdmin(ctx, "alice", true))
	assert.ErrorIs(t, pg.SetAdmin(ctx, "nobody", true), ErrNotFound)

	list, err := pg.ListUsers(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsAdmin)
	assert.Empty(t, list[0].PasswordHash)

	n, err := pg.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPostgresChannels(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()

	n, err := pg.InsertChannels(ctx, []models.Channel{
		{Name: "Zeta", Category: ptr("News"), Type: "m3u8", URL: "http://z"},
		{Name: "Alpha", Category: ptr("Sports"), Type: "mpd", URL: "http://a", DRMKeyID: ptr("kid"), DRMKey: ptr("key")},
		{Name: "Beta", Category: ptr("News"), Type: "m3u8", URL: "http://b"},
		{Name: "Orphan", Type: "stream", URL: "http://o"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	got, err := pg.ListChannels(ctx)
	require.NoError(t, err)
	var names []string
	for _, ch := range got {
		names = append(names, ch.Name)
	}
	assert.Equal(t, []string{"Orphan", "Beta", "Zeta", "Alpha"}, names)
	assert.Equal(t, "kid", *got[3].DRMKeyID)

	deleted, err := pg.DeleteAllChannels(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}

func TestPostgresChannelsBytewiseOrderMatchesMemory(t *testing.T) {
	pg := newTestPostgres(t)
	mem := NewMemory()
	ctx := context.Background()

	catalog := []models.Channel{
		{Name: "b", Category: ptr("news"), URL: "http://1"},
		{Name: "C", Category: ptr("news"), URL: "http://2"},
		{Name: "a", Category: ptr("News"), URL: "http://3"},
		{Name: "_x", Category: ptr("News"), URL: "http://4"},
		{Name: "z", URL: "http://5"},
	}
	_, err := pg.InsertChannels(ctx, catalog)
	require.NoError(t, err)
	_, err = mem.InsertChannels(ctx, catalog)
	require.NoError(t, err)

	names := func(chs []models.Channel) []string {
		var out []string
		for _, ch := range chs {
			out = append(out, ch.CategoryName()+"/"+ch.Name)
		}
		return out
	}
	fromPG, err := pg.ListChannels(ctx)
	require.NoError(t, err)
	fromMem, err := mem.ListChannels(ctx)
	require.NoError(t, err)

	want := []string{"/z", "News/_x", "News/a", "news/C", "news/b"}
	assert.Equal(t, want, names(fromPG))
	assert.Equal(t, want, names(fromMem))
}

func TestPostgresListUsersNegativeSkip(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()
	require.NoError(t, pg.CreateUser(ctx, newUser(1, time.Now())))

	users, err := pg.ListUsers(ctx, -10, 15)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
