package conversation

import (
	"context"
	"fmt"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savedContact struct {
	owner, category int64
	name, value     string
}

type fakeBook struct {
	categories map[string]bool
	contacts   []savedContact
}

func newFakeBook() *fakeBook {
	return &fakeBook{categories: make(map[string]bool)}
}

func (f *fakeBook) CreateCategory(_ context.Context, owner int64, name string) (bool, error) {
	key := fmt.Sprintf("%d/%s", owner, name)
	if f.categories[key] {
		return false, nil
	}
	f.categories[key] = true
	return true, nil
}

func (f *fakeBook) AddContact(_ context.Context, owner, category int64, name, value string) (string, error) {
	f.contacts = append(f.contacts, savedContact{owner, category, name, value})
	return "Contact '" + name + "' added", nil
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	bs, err := NewBadgerStore(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil), 0)
	require.NoError(t, err)
	t.Cleanup(func() { bs.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"badger": bs,
	}
}

func TestCreateCategoryFlow(t *testing.T) {
	for name, sessions := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			book := newFakeBook()
			e := NewEngine(sessions, book)

			reply, err := e.StartCategory(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, promptCategoryName, reply.Text)

			reply, handled, err := e.HandleText(ctx, 1, "  Designers  ")
			require.NoError(t, err)
			assert.True(t, handled)
			assert.Equal(t, "Category 'Designers' created ✅", reply.Text)
			assert.NotEmpty(t, reply.Keyboard)

			s, err := e.Session(ctx, 1)
			require.NoError(t, err)
			assert.True(t, s.IsIdle())

			_, err = e.StartCategory(ctx, 1)
			require.NoError(t, err)
			reply, _, err = e.HandleText(ctx, 1, "Designers")
			require.NoError(t, err)
			assert.Equal(t, "Category 'Designers' already exists ⚠️", reply.Text)
		})
	}
}

func TestCreateCategoryFlow_BlankReprompts(t *testing.T) {
	for name, sessions := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			book := newFakeBook()
			e := NewEngine(sessions, book)

			_, err := e.StartCategory(ctx, 1)
			require.NoError(t, err)

			reply, handled, err := e.HandleText(ctx, 1, " \t ")
			require.NoError(t, err)
			assert.True(t, handled)
			assert.Equal(t, blankCategoryName, reply.Text)
			assert.Empty(t, book.categories)

			s, err := e.Session(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, AwaitingCategoryName, s.State)
		})
	}
}

func TestAddContactFlow(t *testing.T) {
	for name, sessions := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			book := newFakeBook()
			e := NewEngine(sessions, book)

			reply, err := e.StartContact(ctx, 1, 5, "Designers")
			require.NoError(t, err)
			assert.Contains(t, reply.Text, "'Designers'")

			reply, _, err = e.HandleText(ctx, 1, "")
			require.NoError(t, err)
			assert.Equal(t, blankContactName, reply.Text)

			reply, _, err = e.HandleText(ctx, 1, "Jane")
			require.NoError(t, err)
			assert.Equal(t, promptContactValue, reply.Text)

			s, err := e.Session(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, AwaitingContactValue, s.State)
			require.NotNil(t, s.DisplayName)
			assert.Equal(t, "Jane", *s.DisplayName)

			reply, _, err = e.HandleText(ctx, 1, "   ")
			require.NoError(t, err)
			assert.Equal(t, blankContactValue, reply.Text)

			reply, _, err = e.HandleText(ctx, 1, "@jane")
			require.NoError(t, err)
			assert.Equal(t, "Contact 'Jane' added", reply.Text)
			assert.Equal(t, []savedContact{{1, 5, "Jane", "@jane"}}, book.contacts)

			s, err = e.Session(ctx, 1)
			require.NoError(t, err)
			assert.True(t, s.IsIdle())
			assert.Nil(t, s.CategoryID)
			assert.Nil(t, s.DisplayName)
		})
	}
}

func TestAddContactFlow_CancelBeforeValue(t *testing.T) {
	ctx := context.Background()
	book := newFakeBook()
	e := NewEngine(NewMemoryStore(), book)

	_, err := e.StartContact(ctx, 1, 5, "Designers")
	require.NoError(t, err)
	_, _, err = e.HandleText(ctx, 1, "Jane")
	require.NoError(t, err)

	require.NoError(t, e.Cancel(ctx, 1))

	_, handled, err := e.HandleText(ctx, 1, "@jane")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, book.contacts)
}

func TestAddContactFlow_InconsistentScratch(t *testing.T) {
	ctx := context.Background()
	book := newFakeBook()
	sessions := NewMemoryStore()
	e := NewEngine(sessions, book)

	require.NoError(t, sessions.Put(ctx, 1, Session{State: AwaitingContactValue}))

	reply, handled, err := e.HandleText(ctx, 1, "@jane")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, msgBrokenFlow, reply.Text)
	assert.Empty(t, book.contacts)
	assert.Zero(t, sessions.Len())

	require.NoError(t, sessions.Put(ctx, 1, Session{State: AwaitingContactName}))
	reply, _, err = e.HandleText(ctx, 1, "Jane")
	require.NoError(t, err)
	assert.Equal(t, msgBrokenFlow, reply.Text)
}

func TestHandleText_Idle(t *testing.T) {
	e := NewEngine(NewMemoryStore(), newFakeBook())
	_, handled, err := e.HandleText(context.Background(), 1, "hello")
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestBadgerStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	bs, err := NewBadgerStore(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil), 0)
	require.NoError(t, err)
	defer bs.Close()

	s, err := bs.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, Idle, s.State)

	id, name := int64(3), "Jane"
	require.NoError(t, bs.Put(ctx, 9, Session{State: AwaitingContactValue, CategoryID: &id, DisplayName: &name}))

	s, err = bs.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, AwaitingContactValue, s.State)
	assert.Equal(t, int64(3), *s.CategoryID)
	assert.Equal(t, "Jane", *s.DisplayName)

	require.NoError(t, bs.Clear(ctx, 9))
	require.NoError(t, bs.Clear(ctx, 9))
	s, err = bs.Get(ctx, 9)
	require.NoError(t, err)
	assert.True(t, s.IsIdle())
}
