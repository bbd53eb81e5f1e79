package contactbook

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pbaille/netbook/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "netbook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st), st
}

func setupCategory(t *testing.T, svc *Service, owner int64, name string) int64 {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, svc.SetupUser(ctx, owner))
	created, err := svc.CreateCategory(ctx, owner, name)
	require.NoError(t, err)
	require.True(t, created)
	id, err := svc.ResolveCategoryID(ctx, owner, name)
	require.NoError(t, err)
	return id
}

func TestRemoveCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := setupCategory(t, svc, 1, "Investors")
	require.NoError(t, svc.SetupUser(ctx, 2))

	msg, err := svc.RemoveCategory(ctx, 2, id)
	require.NoError(t, err)
	assert.Equal(t, "Category not found.", msg)

	msg, err = svc.RemoveCategory(ctx, 1, id)
	require.NoError(t, err)
	assert.Contains(t, msg, "'Investors' deleted")

	msg, err = svc.RemoveCategory(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, "Category not found.", msg)
}

func TestAddContact_NamesCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := setupCategory(t, svc, 1, "Designers")

	msg, err := svc.AddContact(ctx, 1, id, "Jane", "@jane")
	require.NoError(t, err)
	assert.Equal(t, "Contact 'Jane' added to 'Designers' ✅", msg)

	msg, err = svc.AddContact(ctx, 1, id, "Jane", "@jane")
	require.NoError(t, err)
	assert.Contains(t, msg, "added")

	contacts, err := svc.Contacts(ctx, 1, id)
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}

func TestAddContact_ForeignCategory(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	id := setupCategory(t, svc, 1, "Designers")

	msg, err := svc.AddContact(ctx, 2, id, "Mallory", "@m")
	require.NoError(t, err)
	assert.Equal(t, "Category not found.", msg)

	contacts, err := st.ListContacts(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestListContactsText(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := setupCategory(t, svc, 1, "Designers")

	text, err := svc.ListContactsText(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, "No contacts in 'Designers' yet.", text)

	_, err = svc.AddContact(ctx, 1, id, "Zoe", "@zoe")
	require.NoError(t, err)
	_, err = svc.AddContact(ctx, 1, id, "Adam", "+1 555 0100")
	require.NoError(t, err)

	text, err = svc.ListContactsText(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, "Contacts in 'Designers':\n- Adam: +1 555 0100\n- Zoe: @zoe", text)

	text, err = svc.ListContactsText(ctx, 1, id+1)
	require.NoError(t, err)
	assert.Equal(t, "Category not found.", text)
}

func TestRemoveContact(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := setupCategory(t, svc, 1, "Designers")
	_, err := svc.AddContact(ctx, 1, id, "Jane", "@jane")
	require.NoError(t, err)
	_, err = svc.AddContact(ctx, 1, id, "Jane", "@jane.work")
	require.NoError(t, err)

	msg, err := svc.RemoveContact(ctx, 1, id, "Jane")
	require.NoError(t, err)
	assert.Equal(t, "Contact 'Jane' removed from 'Designers' 🗑️", msg)

	contacts, err := svc.Contacts(ctx, 1, id)
	require.NoError(t, err)
	assert.Empty(t, contacts)

	msg, err = svc.RemoveContact(ctx, 1, id, "Jane")
	require.NoError(t, err)
	assert.Equal(t, "Contact 'Jane' not found in 'Designers'.", msg)
}

func TestResolveCategory_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ResolveCategoryName(ctx, 1, 99)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = svc.ResolveCategoryID(ctx, 1, "nope")
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = svc.Contacts(ctx, 1, 99)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategories_SortedAndScoped(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	setupCategory(t, svc, 1, "Investors")
	setupCategory(t, svc, 1, "Designers")
	setupCategory(t, svc, 2, "Founders")

	names, err := svc.Categories(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Designers", "Investors"}, names)

	full, err := svc.CategoriesFull(ctx, 2)
	require.NoError(t, err)
	require.Len(t, full, 1)
	assert.Equal(t, "Founders", full[0].Name)
}
