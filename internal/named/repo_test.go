package named

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"noteful/internal/domain"
	"noteful/internal/query"
	"noteful/internal/testutil"
)

func newRepo(t *testing.T, kind Kind) *Repo {
	t.Helper()
	repo := NewRepo(testutil.Mongo(t), kind)
	require.NoError(t, repo.EnsureIndexes(context.Background()))
	return repo
}

func TestRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, FolderKind)

	res := &Resource{Name: "Work"}
	require.NoError(t, repo.Insert(ctx, res))
	require.False(t, res.ID.IsZero())

	got, err := repo.FindByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Work", got.Name)
	assert.True(t, res.CreatedAt.Equal(got.CreatedAt))

	renamed, err := repo.Rename(ctx, res.ID, "Jobs")
	require.NoError(t, err)
	assert.Equal(t, "Jobs", renamed.Name)
	assert.False(t, renamed.UpdatedAt.Before(renamed.CreatedAt))

	require.NoError(t, repo.Delete(ctx, res.ID))
	_, err = repo.FindByID(ctx, res.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, res.ID), domain.ErrNotFound)
}

func TestRepo_UniqueName(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, TagKind)

	require.NoError(t, repo.Insert(ctx, &Resource{Name: "foo"}))
	other := &Resource{Name: "bar"}
	require.NoError(t, repo.Insert(ctx, other))

	err := repo.Insert(ctx, &Resource{Name: "foo"})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualError(t, err, TagKind.DuplicateMessage)

	_, err = repo.Rename(ctx, other.ID, "foo")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRepo_ListAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, FolderKind)

	var ids []primitive.ObjectID
	for _, name := range []string{"work", "hobby", "Homework"} {
		res := &Resource{Name: name}
		require.NoError(t, repo.Insert(ctx, res))
		ids = append(ids, res.ID)
	}

	all, err := repo.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "work", all[0].Name)

	byName, err := repo.List(ctx, ListQuery{SearchTerm: "WORK", Sort: query.SortByName})
	require.NoError(t, err)
	require.Len(t, byName, 2)
	assert.Equal(t, "Homework", byName[0].Name)
	assert.Equal(t, "work", byName[1].Name)

	found, err := repo.FindByIDs(ctx, []primitive.ObjectID{ids[1], primitive.NewObjectID()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "hobby", found[0].Name)
}
