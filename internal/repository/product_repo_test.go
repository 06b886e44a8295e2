package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/coursetree"
	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
	"github.com/qs3c/course_store_server/internal/pkg/logger"
	"github.com/qs3c/course_store_server/internal/testutil"
)

func TestProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore(0)
	repo := NewProductRepository(store, logger.Discard())

	p := testutil.TestProduct("p1")
	require.NoError(t, repo.Create(ctx, &p))
	assert.False(t, p.CreatedAt.IsZero())

	p.Title = "Renamed"
	require.NoError(t, repo.Update(ctx, &p))

	found, err := repo.GetByID("p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Title)

	// 重新加载后数据一致
	reloaded := NewProductRepository(store, logger.Discard())
	require.NoError(t, reloaded.Load(ctx))
	require.Len(t, reloaded.List(), 1)
	assert.Equal(t, "Renamed", reloaded.List()[0].Title)

	require.NoError(t, repo.Delete(ctx, "p1"))
	_, err = repo.GetByID("p1")
	assert.ErrorIs(t, err, ErrNotFound)

	missing := testutil.TestProduct("nope")
	assert.ErrorIs(t, repo.Update(ctx, &missing), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), ErrNotFound)
}

func TestProductRepository_UpdateModules(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore(0)
	repo := NewProductRepository(store, logger.Discard())

	p := testutil.TestProduct("course", testutil.WithModules(testutil.SampleCourse(t)))
	require.NoError(t, repo.Create(ctx, &p))

	updated, err := repo.UpdateModules(ctx, "course", func(tree *coursetree.Tree) (*coursetree.Tree, error) {
		return tree.InsertModule("", coursetree.Module{ID: "bonus", Title: "Bonus"})
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Tree().Len())

	reloaded := NewProductRepository(store, logger.Discard())
	require.NoError(t, reloaded.Load(ctx))
	got, err := reloaded.GetByID("course")
	require.NoError(t, err)
	assert.True(t, got.Tree().IsRoot("bonus"))
	first, ok := got.Tree().FirstContent()
	require.True(t, ok)
	assert.Equal(t, "f-welcome", first.ID)

	_, err = repo.UpdateModules(ctx, "course", func(tree *coursetree.Tree) (*coursetree.Tree, error) {
		return tree.DeleteModule("missing")
	})
	assert.ErrorIs(t, err, coursetree.ErrModuleNotFound)

	_, err = repo.UpdateModules(ctx, "missing", func(tree *coursetree.Tree) (*coursetree.Tree, error) {
		return tree, nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductRepository_UpdateModulesPersistFailure(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore(0)
	repo := NewProductRepository(store, logger.Discard())

	p := testutil.TestProduct("course", func(p *model.Product) { p.Modules = coursetree.New() })
	require.NoError(t, repo.Create(ctx, &p))

	// 换成失败的存储，内存中的目录仍然更新
	repo.products.store = brokenStore{}
	updated, err := repo.UpdateModules(ctx, "course", func(tree *coursetree.Tree) (*coursetree.Tree, error) {
		return tree.InsertModule("", coursetree.Module{ID: "m1", Title: "One"})
	})
	assert.ErrorIs(t, err, ErrPersist)
	require.NotNil(t, updated)
	assert.Equal(t, 1, updated.Tree().Len())
}
