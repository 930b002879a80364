package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirtso/shirtso/internal/domain"
)

func seededProductUC() (*ProductUC, *fakeProductRepo) {
	repo := newFakeProductRepo(
		teeRow(1, "M", 3, 19.90),
		teeRow(2, "L", 2, 19.90),
		domain.Product{ID: 3, Slug: "hoodie", Name: "Hoodie", Size: "M", Stock: 4, Price: 39.90, Currency: "EUR", Active: true},
	)
	return NewProductUC(repo), repo
}

func TestListGroupedCollapsesVariants(t *testing.T) {
	uc, _ := seededProductUC()
	groups, total, err := uc.ListGrouped(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"M", "L"}, groups[0].AvailableSizes)
	assert.Equal(t, 5, groups[0].TotalStock)
}

func TestGetGroupUnknownSlug(t *testing.T) {
	uc, _ := seededProductUC()
	_, err := uc.GetGroup(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.GetGroup(context.Background(), "")
	assert.Error(t, err)
}

func TestResolveVariantDefaultsWhenSizeOmitted(t *testing.T) {
	uc, _ := seededProductUC()
	g, v, err := uc.ResolveVariant(context.Background(), "classic-crew-tee", "")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "Classic Crew Tee", g.Name)
	assert.Equal(t, "M", v.Size)
	assert.Equal(t, uint(1), v.ProductID)
}

func TestResolveVariantExplicitSize(t *testing.T) {
	uc, _ := seededProductUC()
	_, v, err := uc.ResolveVariant(context.Background(), "classic-crew-tee", "L")
	require.NoError(t, err)
	assert.Equal(t, uint(2), v.ProductID)

	_, _, err = uc.ResolveVariant(context.Background(), "classic-crew-tee", "XXL")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateFillsSlugAndCurrency(t *testing.T) {
	uc, repo := seededProductUC()
	p := &domain.Product{Name: "Long Sleeve Tee", Size: "M", Stock: 1, Price: 25}
	require.NoError(t, uc.Create(context.Background(), p))
	assert.Equal(t, "long-sleeve-tee", p.Slug)
	assert.Equal(t, "EUR", p.Currency)
	assert.NotZero(t, p.ID)
	assert.NotNil(t, repo.rows[p.ID])

	assert.Error(t, uc.Create(context.Background(), &domain.Product{Name: "  "}))
}

func TestAttachImagesFansOutToAllSiblings(t *testing.T) {
	uc, repo := seededProductUC()
	imgs := []domain.Image{{URL: "https://cdn.shirtso.dev/tee.jpg", Primary: true}}
	require.NoError(t, uc.AttachImages(context.Background(), "classic-crew-tee", imgs))

	for _, id := range []uint{1, 2} {
		require.Len(t, repo.rows[id].Images, 1, "row %d", id)
		assert.Equal(t, "https://cdn.shirtso.dev/tee.jpg", repo.rows[id].Images[0].URL)
	}
	assert.Empty(t, repo.rows[3].Images)
}

func TestRemoveImageFansOut(t *testing.T) {
	uc, repo := seededProductUC()
	imgs := []domain.Image{
		{URL: "https://cdn.shirtso.dev/a.jpg"},
		{URL: "https://cdn.shirtso.dev/b.jpg"},
	}
	require.NoError(t, uc.AttachImages(context.Background(), "classic-crew-tee", imgs))
	require.NoError(t, uc.RemoveImage(context.Background(), "classic-crew-tee", "https://cdn.shirtso.dev/a.jpg"))

	for _, id := range []uint{1, 2} {
		require.Len(t, repo.rows[id].Images, 1)
		assert.Equal(t, "https://cdn.shirtso.dev/b.jpg", repo.rows[id].Images[0].URL)
	}
}

func TestSetPrimaryImageFansOut(t *testing.T) {
	uc, repo := seededProductUC()
	imgs := []domain.Image{
		{URL: "https://cdn.shirtso.dev/a.jpg", Primary: true},
		{URL: "https://cdn.shirtso.dev/b.jpg"},
	}
	require.NoError(t, uc.AttachImages(context.Background(), "classic-crew-tee", imgs))
	require.NoError(t, uc.SetPrimaryImage(context.Background(), "classic-crew-tee", "https://cdn.shirtso.dev/b.jpg"))

	for _, id := range []uint{1, 2} {
		for _, im := range repo.rows[id].Images {
			assert.Equal(t, im.URL == "https://cdn.shirtso.dev/b.jpg", im.Primary)
		}
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "classic-crew-tee", Slugify("  Classic Crew Tee "))
	assert.Equal(t, "slim-fit-v-neck", Slugify("Slim Fit V-Neck"))
}
