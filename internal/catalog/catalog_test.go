package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsJSON = `[
  {"id": "p1", "name": "Portland Cement", "category": "cement", "price": 520, "unit": "bag", "weight": 50,
   "image": "img/cement.jpg", "brands": [{"name": "Shah", "price": 520}, {"name": "Akij", "price": 540}]},
  {"id": "r1", "name": "TMT Rod 10mm", "category": "steel", "price": "95", "unit": "kg", "weight": 1,
   "brands": ["BSRM", "KSRM"]},
  {"id": "b1", "name": "Red Brick", "category": "brick", "unit": "piece", "weight": 2.5, "brands": "Auto Bricks, Local"},
  {"id": "s1", "name": "Sylhet Sand", "category": "sand", "price": null, "unit": "cft", "weight": 45,
   "brand": "Jaflong Traders"},
  {"name": "no id"},
  {"id": "p1", "name": "Duplicate Cement", "category": "cement", "price": 1}
]`

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	products, err := Decode(strings.NewReader(productsJSON))
	require.NoError(t, err)
	return New(products)
}

func TestDecode(t *testing.T) {
	products, err := Decode(strings.NewReader(productsJSON))
	require.NoError(t, err)
	require.Len(t, products, 5)

	cement := products[0]
	assert.Equal(t, "p1", cement.ID)
	assert.Equal(t, "bag", cement.Unit)
	assertDecimal(t, "50", cement.Weight)
	assert.Equal(t, []string{"Shah", "Akij"}, BrandNames(&cement))

	rod := products[1]
	assertDecimal(t, "95", rod.Price)
	assertDecimal(t, "95", rod.Brands[1].Price)

	brick := products[2]
	assertDecimal(t, "0", brick.Price)
	assertDecimal(t, "2.5", brick.Weight)
	assert.Equal(t, []string{"Auto Bricks", "Local"}, BrandNames(&brick))

	sand := products[3]
	assertDecimal(t, "0", sand.Price)
	assert.Empty(t, sand.Brands)
	assert.Equal(t, "Jaflong Traders", sand.Brand)
}

func TestDecode_BrandListWithLeadingNull(t *testing.T) {
	products, err := DecodeBytes([]byte(`[{"id":"p1","price":520,"brands":[null,{"name":"Akij","price":540}]}]`))
	require.NoError(t, err)
	require.Len(t, products, 1)

	assert.Equal(t, []string{"Akij"}, BrandNames(&products[0]))
	assertDecimal(t, "540", ResolvePrice(&products[0], "Akij"))
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"not": "an array"}`))
	assert.Error(t, err)
}

func TestCatalog_Get(t *testing.T) {
	c := loadTestCatalog(t)

	p, ok := c.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "Portland Cement", p.Name)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCatalog_GetReturnsCopy(t *testing.T) {
	c := loadTestCatalog(t)

	p, _ := c.Get("p1")
	p.Name = "changed"

	again, _ := c.Get("p1")
	assert.Equal(t, "Portland Cement", again.Name)
}

func TestCatalog_Categories(t *testing.T) {
	c := loadTestCatalog(t)
	assert.Equal(t, []string{"cement", "steel", "brick", "sand"}, c.Categories())
}

func TestCatalog_Search(t *testing.T) {
	c := loadTestCatalog(t)

	ids := func(f Filter) []string {
		var out []string
		for _, p := range c.Search(f) {
			out = append(out, p.ID)
		}
		return out
	}

	assert.Len(t, ids(Filter{}), 5)
	assert.Len(t, ids(Filter{Category: "all"}), 5)
	assert.Equal(t, []string{"r1"}, ids(Filter{Category: "steel"}))
	assert.Equal(t, []string{"p1", "p1"}, ids(Filter{Query: "cement"}))
	assert.Equal(t, []string{"p1"}, ids(Filter{Query: " AKIJ "}))
	assert.Equal(t, []string{"r1"}, ids(Filter{Query: "ksrm", Category: "steel"}))
	assert.Empty(t, ids(Filter{Query: "ksrm", Category: "cement"}))
	assert.Equal(t, []string{"s1"}, ids(Filter{Query: "jaflong"}))
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("p1")
	assert.False(t, ok)
	assert.Nil(t, c.Search(Filter{}))
}
