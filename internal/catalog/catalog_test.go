package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogYAML = `
brands:
  - id: waka
    name: Waka
    flavors:
      - id: waka_blueberry
        name: Blueberry Ice
        price_kzt: 10000
        price_usdt: 19
      - id: waka_mango
        name: Mango Ice
        price_kzt: 10000
        price_usdt: 19
  - id: hqd
    name: HQD
    flavors:
      - id: hqd_kiwi
        name: Kiwi Passion
        price_kzt: 7000
        price_usdt: 13
`

func TestParseKeepsDeclarationOrder(t *testing.T) {
	cat, err := Parse([]byte(testCatalogYAML))
	require.NoError(t, err)

	brands := cat.ListBrands()
	require.Len(t, brands, 2)
	assert.Equal(t, "waka", brands[0].ID)
	assert.Equal(t, "hqd", brands[1].ID)

	flavors, ok := cat.ListFlavors("waka")
	require.True(t, ok)
	require.Len(t, flavors, 2)
	assert.Equal(t, "waka_blueberry", flavors[0].ID)
	assert.Equal(t, "waka_mango", flavors[1].ID)

	assert.Equal(t, 3, cat.Size())
}

func TestLookupFlavorAcrossBrands(t *testing.T) {
	cat, err := Parse([]byte(testCatalogYAML))
	require.NoError(t, err)

	brand, flavor, ok := cat.LookupFlavor("hqd_kiwi")
	require.True(t, ok)
	assert.Equal(t, "HQD", brand.Name)
	assert.Equal(t, "Kiwi Passion", flavor.Name)
	assert.Equal(t, 7000, flavor.PriceKZT)
	assert.Equal(t, 13, flavor.PriceUSDT)

	_, _, ok = cat.LookupFlavor("nope")
	assert.False(t, ok)
}

func TestListFlavorsUnknownBrand(t *testing.T) {
	cat, err := Parse([]byte(testCatalogYAML))
	require.NoError(t, err)

	_, ok := cat.ListFlavors("elfbar")
	assert.False(t, ok)
	assert.False(t, cat.HasBrand("elfbar"))
	assert.True(t, cat.HasBrand("waka"))
}

func TestNewRejectsDuplicateFlavorIDs(t *testing.T) {
	_, err := New([]Brand{
		{ID: "a", Name: "A", Flavors: []Flavor{{ID: "x", Name: "X"}}},
		{ID: "b", Name: "B", Flavors: []Flavor{{ID: "x", Name: "Other X"}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate flavor id")
}

func TestNewRejectsDuplicateBrandIDs(t *testing.T) {
	_, err := New([]Brand{
		{ID: "a", Name: "A"},
		{ID: "a", Name: "A again"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate brand id")
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse([]byte("brands: []"))
	assert.Error(t, err)
}
