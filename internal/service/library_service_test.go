package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/coursetree"
	"github.com/qs3c/course_store_server/internal/testutil"
)

func setupLibraryService(t *testing.T) (*LibraryService, *storeEnv) {
	t.Helper()

	env := newStoreEnv(t)
	env.addProduct(t, testutil.TestProduct("course", testutil.WithModules(testutil.SampleCourse(t))))
	ebook := testutil.TestProduct("book")
	ebook.Category = model.CategoryEbook
	ebook.Content = "<h1>Chapter 1</h1>"
	env.addProduct(t, ebook)

	svc := NewLibraryService(env.products, env.tiers, env.purchases, env.settings, testLogger())
	svc.now = clock
	return svc, env
}

func TestLibraryService_Player_LockedModuleHidesFiles(t *testing.T) {
	svc, env := setupLibraryService(t)
	env.grant(t, 1, "course")

	view, err := svc.Player(context.Background(), Viewer{UserID: 1}, "course")
	require.NoError(t, err)
	require.Len(t, view.Modules, 2)

	intro := view.Modules[0]
	assert.False(t, intro.Locked)
	require.Len(t, intro.Files, 1)

	advanced := view.Modules[1]
	assert.True(t, advanced.Locked)
	assert.Empty(t, advanced.Files)
	assert.Equal(t, "₹199.00", advanced.DisplayPrice)
	assert.Equal(t, "https://pay.example.com/advanced", advanced.PaymentLink)

	// 子模块未锁定，单独判断
	require.Len(t, advanced.Modules, 1)
	assert.False(t, advanced.Modules[0].Locked)
	assert.Len(t, advanced.Modules[0].Files, 1)

	require.NotNil(t, view.DefaultContent)
	assert.Equal(t, "f-welcome", view.DefaultContent.ID)
	assert.Equal(t, "intro", view.DefaultModule)
}

func TestLibraryService_Player_ModulePurchaseUnlocks(t *testing.T) {
	svc, env := setupLibraryService(t)
	env.grant(t, 1, "course", "advanced")

	view, err := svc.Player(context.Background(), Viewer{UserID: 1}, "course")
	require.NoError(t, err)
	advanced := view.Modules[1]
	assert.False(t, advanced.Locked)
	assert.Len(t, advanced.Files, 1)
	assert.Empty(t, advanced.DisplayPrice)
}

func TestLibraryService_Player_TierAccess(t *testing.T) {
	tests := []struct {
		name   string
		tier   model.SubscriptionTier
		access bool
	}{
		{"all", testutil.TestTier("t-all", model.AccessAll), true},
		{"specific includes product", testutil.TestTier("t-spec", model.AccessSpecific, "course"), true},
		{"specific other product", testutil.TestTier("t-other", model.AccessSpecific, "book"), false},
		{"none", testutil.TestTier("t-none", model.AccessNone), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, env := setupLibraryService(t)
			env.addTier(t, tt.tier)
			env.grant(t, 1, tt.tier.ID)

			view, err := svc.Player(context.Background(), Viewer{UserID: 1}, "course")
			if !tt.access {
				assert.Equal(t, ErrNotPurchased, err)
				return
			}
			require.NoError(t, err)
			assert.False(t, view.Modules[1].Locked, "tier unlocks every module of the product")
		})
	}
}

func TestLibraryService_Player_Errors(t *testing.T) {
	svc, env := setupLibraryService(t)
	ctx := context.Background()

	_, err := svc.Player(ctx, Viewer{UserID: 1}, "course")
	assert.Equal(t, ErrNotPurchased, err)

	_, err = svc.Player(ctx, Viewer{UserID: 1}, "missing")
	assert.Equal(t, ErrProductNotFound, err)

	env.grant(t, 1, "book")
	_, err = svc.Player(ctx, Viewer{UserID: 1}, "book")
	assert.Equal(t, ErrNotCourse, err)
}

func TestLibraryService_Player_AdminSeesEverything(t *testing.T) {
	svc, _ := setupLibraryService(t)

	view, err := svc.Player(context.Background(), Viewer{UserID: 99, Admin: true}, "course")
	require.NoError(t, err)
	assert.False(t, view.Modules[1].Locked)
	assert.Len(t, view.Modules[1].Files, 1)
}

func TestLibraryService_Player_OnlyLockedContent(t *testing.T) {
	svc, env := setupLibraryService(t)
	ctx := context.Background()

	locked := true
	_, err := env.products.UpdateModules(ctx, "course", func(tree *coursetree.Tree) (*coursetree.Tree, error) {
		return tree.UpdateModule("intro", coursetree.ModulePatch{IsLocked: &locked})
	})
	require.NoError(t, err)
	env.grant(t, 1, "course")

	view, err := svc.Player(ctx, Viewer{UserID: 1}, "course")
	require.NoError(t, err)
	require.NotNil(t, view.DefaultContent)
	assert.Equal(t, "f-extra", view.DefaultContent.ID)
	assert.Equal(t, "advanced-extra", view.DefaultModule)
}

func TestLibraryService_Library(t *testing.T) {
	svc, env := setupLibraryService(t)
	env.addTier(t, testutil.TestTier("t-spec", model.AccessSpecific, "book"))
	env.grant(t, 1, "t-spec", "advanced")

	lib, err := svc.Library(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"t-spec", "advanced"}, lib.PurchasedIDs)
	require.Len(t, lib.Products, 2)
	assert.Equal(t, "course", lib.Products[0].ID)
	assert.Equal(t, "book", lib.Products[1].ID)
	require.Len(t, lib.Tiers, 1)

	empty, err := svc.Library(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, empty.PurchasedIDs)
	assert.Empty(t, empty.Products)
	assert.NotNil(t, empty.Tiers)
}

func TestLibraryService_Ebook(t *testing.T) {
	svc, env := setupLibraryService(t)
	ctx := context.Background()

	_, err := svc.Ebook(ctx, Viewer{UserID: 1}, "book")
	assert.Equal(t, ErrNotPurchased, err)

	env.grant(t, 1, "book")
	view, err := svc.Ebook(ctx, Viewer{UserID: 1}, "book")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Chapter 1</h1>", view.Content)

	_, err = svc.Ebook(ctx, Viewer{UserID: 1}, "course")
	assert.Equal(t, ErrNotEbook, err)
}
