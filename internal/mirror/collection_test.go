package mirror

import (
	"context"
	"errors"
	"strings"
	"testing"

	"schedly/internal/models"
	"schedly/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServices(t *testing.T) (*Collection[models.Service, *models.Service], *repository.MemoryMirrorStore) {
	t.Helper()
	store := repository.NewMemoryMirrorStore()
	return NewCollection[models.Service](store, "test", "services", nil), store
}

func TestCollectionReplaceAndFind(t *testing.T) {
	c, _ := newServices(t)
	ctx := context.Background()

	assert.Equal(t, "test:services", c.Key())
	assert.Empty(t, c.All(ctx))
	assert.Nil(t, c.Find(ctx, "a"))

	c.Replace(ctx, []*models.Service{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}})
	all := c.All(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, "B", c.Find(ctx, "b").Title)

	c.Replace(ctx, nil)
	assert.NotNil(t, c.All(ctx))
	assert.Empty(t, c.All(ctx))
}

func TestCollectionPutAndRemove(t *testing.T) {
	c, _ := newServices(t)
	ctx := context.Background()

	c.Put(ctx, &models.Service{ID: "a", Price: "10"})
	c.Put(ctx, &models.Service{ID: "b", Price: "20"})
	c.Put(ctx, &models.Service{ID: "a", Price: "15"})
	c.Put(ctx, &models.Service{Price: "no id"})

	all := c.All(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "15", all[0].Price)

	c.Remove(ctx, "a")
	all = c.All(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].ID)

	c.Remove(ctx, "missing")
	assert.Len(t, c.All(ctx), 1)
}

func TestCollectionSaveLocal(t *testing.T) {
	c, _ := newServices(t)
	ctx := context.Background()

	input := &models.Service{Title: "Offline"}
	saved := c.SaveLocal(ctx, input)
	require.NotNil(t, saved)
	assert.True(t, strings.HasPrefix(saved.ID, models.LocalIDPrefix))
	assert.Empty(t, input.ID, "caller's value is left untouched")
	assert.Equal(t, saved, c.Find(ctx, saved.ID))

	other := c.SaveLocal(ctx, &models.Service{Title: "Second"})
	assert.NotEqual(t, saved.ID, other.ID)

	updated := c.SaveLocal(ctx, &models.Service{ID: saved.ID, Title: "Renamed"})
	assert.Equal(t, saved.ID, updated.ID)
	assert.Len(t, c.All(ctx), 2)
	assert.Equal(t, "Renamed", c.Find(ctx, saved.ID).Title)

	appended := c.SaveLocal(ctx, &models.Service{ID: "server-1"})
	assert.Equal(t, "server-1", appended.ID)
	assert.Len(t, c.All(ctx), 3)

	assert.Nil(t, c.SaveLocal(ctx, nil))
}

func TestCollectionCorruptEntry(t *testing.T) {
	c, store := newServices(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, c.Key(), []byte("{not json")))
	assert.Empty(t, c.All(ctx))

	c.Put(ctx, &models.Service{ID: "a"})
	assert.Len(t, c.All(ctx), 1)
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk gone")
}
func (brokenStore) Store(context.Context, string, []byte) error { return errors.New("disk gone") }
func (brokenStore) Delete(context.Context, string) error        { return errors.New("disk gone") }

func TestCollectionStoreErrorsAreSwallowed(t *testing.T) {
	c := NewCollection[models.Appointment](brokenStore{}, "", "appointments", nil)
	ctx := context.Background()

	assert.Equal(t, "appointments", c.Key())
	assert.Empty(t, c.All(ctx))
	assert.NotPanics(t, func() {
		c.Put(ctx, &models.Appointment{ID: "a"})
		c.Remove(ctx, "a")
	})
	saved := c.SaveLocal(ctx, &models.Appointment{CustomerName: "Ann"})
	assert.True(t, strings.HasPrefix(saved.ID, models.LocalIDPrefix))
}

func TestCollectionClear(t *testing.T) {
	c, store := newServices(t)
	ctx := context.Background()

	c.Put(ctx, &models.Service{ID: "a"})
	c.Clear(ctx)
	assert.Empty(t, c.All(ctx))
	_, ok, err := store.Load(ctx, c.Key())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOwner(t *testing.T) {
	store := repository.NewMemoryMirrorStore()
	o := NewOwner(store, "test", nil)
	ctx := context.Background()

	assert.Equal(t, "", o.Get(ctx))
	o.Set(ctx, "u1")
	assert.Equal(t, "u1", o.Get(ctx))
	raw, ok, _ := store.Load(ctx, "test:owner")
	require.True(t, ok)
	assert.Equal(t, "u1", string(raw))

	o.Clear(ctx)
	assert.Equal(t, "", o.Get(ctx))
}
