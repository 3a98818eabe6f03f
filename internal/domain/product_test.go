package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinProductsValidate(t *testing.T) {
	for _, p := range Products() {
		assert.NoError(t, p.Validate(), p.Name)
	}
}

func TestLookupProduct(t *testing.T) {
	p, ok := LookupProduct("SST")
	require.True(t, ok)
	assert.Equal(t, KindScalar, p.Kind)
	assert.Equal(t, ProcessAll, p.FilePolicy)

	p, ok = LookupProduct("currents")
	require.True(t, ok)
	assert.Equal(t, "cur", p.Name)
	assert.True(t, p.WantsVectorGlyphs())
	assert.Equal(t, ProcessFirstOnly, p.FilePolicy)

	_, ok = LookupProduct("salinity")
	assert.False(t, ok)
}

func TestProductMatches(t *testing.T) {
	sst, cur := SSTProduct(), CurrentsProduct()
	name := "20240101_h-INGV--TEMP-MFSeas6-MEDATL-b20240101_fc-sv08.00.nc"

	assert.True(t, sst.Matches(name))
	assert.False(t, cur.Matches(name))
	assert.True(t, cur.Matches("20240101_h-INGV--RFVL-MFSeas6-MEDATL-b20240101_fc-sv08.00.nc"))
	assert.False(t, sst.Matches("TEMP-MFSeas5.nc"))
}

func TestProductDerive(t *testing.T) {
	sst := SSTProduct()
	f, err := sst.Derive([]Field{NewField(3, 2, 15.0)})
	require.NoError(t, err)
	assert.Equal(t, NewField(3, 2, 15.0), f)

	_, err = sst.Derive([]Field{NewField(1, 1, 0), NewField(1, 1, 0)})
	assert.Error(t, err)

	cur := CurrentsProduct()
	f, err = cur.Derive([]Field{NewField(3, 2, 3.0), NewField(3, 2, 4.0)})
	require.NoError(t, err)
	assert.Equal(t, NewField(3, 2, 5.0), f)

	_, err = cur.Derive([]Field{NewField(3, 2, 3.0), NewField(2, 2, 4.0)})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestProductTitle(t *testing.T) {
	data, err := NewTitleData("20240101", "2024-01-02T06:30:00")
	require.NoError(t, err)

	title, err := SSTProduct().Title(data)
	require.NoError(t, err)
	assert.Equal(t, "Sea surface temperature -- MFS \n Production Date: 2024-01-01 -- Reference Date and time: 2024-01-02, 06:30", title)

	title, err = CurrentsProduct().Title(data)
	require.NoError(t, err)
	assert.Equal(t, "MFS Currents for date 2024/01/02 at 06:00 (PD=20240101)", title)

	p := SSTProduct()
	p.TitleTemplate = "{{.Nope}}"
	_, err = p.Title(data)
	assert.Error(t, err)
}

func TestProductValidate_Rejects(t *testing.T) {
	p := CurrentsProduct()
	p.Variables = []string{"uo"}
	assert.Error(t, p.Validate())

	p = SSTProduct()
	p.ContourLevels = 1
	assert.Error(t, p.Validate())

	p = SSTProduct()
	p.TitleTemplate = "{{.Date"
	assert.Error(t, p.Validate())
}

func TestSalentoCatalog(t *testing.T) {
	c := SalentoCatalog()
	assert.Equal(t, 21, c.Len())

	pts := c.Points()
	pts[0].Name = "changed"
	assert.Equal(t, "Brindisi", c.Points()[0].Name)

	near := c.Within(Bounds{MinLat: 40.4, MaxLat: 40.7, MinLon: 17.9, MaxLon: 18.3})
	assert.Equal(t, 6, near.Len())
}
