package repository

import (
	"context"
	"testing"

	"github.com/atinyakov/FaultKeeper/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCatalogFilters(t *testing.T) {
	c := NewStaticCatalog(dataset.MustLoad())
	ctx := context.Background()

	brands, err := c.ListBrands(ctx)
	require.NoError(t, err)
	assert.Equal(t, "vaillant", brands[0].ID)

	ms, err := c.ListModels(ctx, "vaillant")
	require.NoError(t, err)
	for _, m := range ms {
		assert.Equal(t, "vaillant", m.BrandID)
	}
	assert.Len(t, ms, 2)

	faults, err := c.ListFaults(ctx, "baymak")
	require.NoError(t, err)
	require.Len(t, faults, 2)
	assert.Equal(t, "baymak-e03", faults[0].ID)

	all, err := c.ListFaults(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func TestStaticCatalogGet(t *testing.T) {
	c := NewStaticCatalog(dataset.MustLoad())
	ctx := context.Background()

	f, err := c.GetFault(ctx, "bosch-c6")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "C6", f.Code)

	missing, err := c.GetFault(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	st, err := c.GetStep(ctx, "vaillant-f22-s3")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 5, st.Order)
}

func TestStaticCatalogStepsSorted(t *testing.T) {
	c := NewStaticCatalog(dataset.MustLoad())

	steps, err := c.ListSteps(context.Background(), "vaillant-f28")
	require.NoError(t, err)
	require.Len(t, steps, 3)
	for i, st := range steps {
		assert.Equal(t, i+1, st.Order)
	}

	gaps, err := c.ListSteps(context.Background(), "vaillant-f22")
	require.NoError(t, err)
	var orders []int
	for _, st := range gaps {
		orders = append(orders, st.Order)
	}
	assert.Equal(t, []int{1, 2, 5}, orders)
}

func TestStaticCatalogGetFaultsSkipsUnknown(t *testing.T) {
	c := NewStaticCatalog(dataset.MustLoad())

	faults, err := c.GetFaults(context.Background(), []string{"eca-e05", "ghost", "vaillant-f22"})
	require.NoError(t, err)
	require.Len(t, faults, 2)
	assert.Equal(t, "vaillant-f22", faults[0].ID)
	assert.Equal(t, "eca-e05", faults[1].ID)
}

func TestStaticCatalogReturnsCopies(t *testing.T) {
	c := NewStaticCatalog(dataset.MustLoad())
	ctx := context.Background()

	b, err := c.GetBrand(ctx, "bosch")
	require.NoError(t, err)
	b.Name = "changed"

	again, err := c.GetBrand(ctx, "bosch")
	require.NoError(t, err)
	assert.Equal(t, "Bosch", again.Name)
}

func TestStaticCatalogCancelled(t *testing.T) {
	c := NewStaticCatalog(dataset.MustLoad())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListBrands(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
