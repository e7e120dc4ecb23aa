// Package catalog holds the read-only brand/flavor price table the shop sells
// from. The table is loaded once at startup, either from a YAML file or from
// Postgres, and never mutated afterwards.
package catalog

import "fmt"

// Flavor is a single sellable item with its price in both accepted currencies.
type Flavor struct {
	ID        string `yaml:"id" db:"id"`
	Name      string `yaml:"name" db:"name"`
	PriceKZT  int    `yaml:"price_kzt" db:"price_kzt"`
	PriceUSDT int    `yaml:"price_usdt" db:"price_usdt"`
}

// Brand groups flavors under a display name.
type Brand struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Flavors []Flavor `yaml:"flavors"`
}

type flavorRef struct {
	brand  int
	flavor int
}

// Catalog is an immutable lookup table. Brand and flavor order is the
// declaration order of the source, so keyboards render deterministically.
type Catalog struct {
	brands   []Brand
	byBrand  map[string]int
	byFlavor map[string]flavorRef
}

// New builds a Catalog from brand definitions. Flavor ids must be globally
// unique across brands; brand ids must be unique.
func New(brands []Brand) (*Catalog, error) {
	c := &Catalog{
		brands:   brands,
		byBrand:  make(map[string]int, len(brands)),
		byFlavor: make(map[string]flavorRef),
	}
	for bi, b := range brands {
		if b.ID == "" {
			return nil, fmt.Errorf("catalog: brand %d has empty id", bi)
		}
		if _, dup := c.byBrand[b.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate brand id %q", b.ID)
		}
		c.byBrand[b.ID] = bi
		for fi, f := range b.Flavors {
			if f.ID == "" {
				return nil, fmt.Errorf("catalog: brand %q flavor %d has empty id", b.ID, fi)
			}
			if _, dup := c.byFlavor[f.ID]; dup {
				return nil, fmt.Errorf("catalog: duplicate flavor id %q", f.ID)
			}
			c.byFlavor[f.ID] = flavorRef{brand: bi, flavor: fi}
		}
	}
	return c, nil
}

// ListBrands returns all brands in declaration order.
func (c *Catalog) ListBrands() []Brand {
	return c.brands
}

// ListFlavors returns the flavors of a brand in declaration order.
func (c *Catalog) ListFlavors(brandID string) ([]Flavor, bool) {
	bi, ok := c.byBrand[brandID]
	if !ok {
		return nil, false
	}
	return c.brands[bi].Flavors, true
}

// HasBrand reports whether the brand id is known.
func (c *Catalog) HasBrand(brandID string) bool {
	_, ok := c.byBrand[brandID]
	return ok
}

// LookupFlavor resolves a flavor id across all brands.
func (c *Catalog) LookupFlavor(flavorID string) (Brand, Flavor, bool) {
	ref, ok := c.byFlavor[flavorID]
	if !ok {
		return Brand{}, Flavor{}, false
	}
	return c.brands[ref.brand], c.brands[ref.brand].Flavors[ref.flavor], true
}

// Size returns the total number of flavors.
func (c *Catalog) Size() int {
	return len(c.byFlavor)
}
