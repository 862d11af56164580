package fixture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendzone/internal/geo"
	"vendzone/internal/model"
)

const sampleYAML = `
zones:
  - name: Connaught Place
    area: Central Delhi
    status: legal
    max_vendors: 40
    polygon: [[28.6129, 77.2080], [28.6129, 77.2100], [28.6149, 77.2100], [28.6149, 77.2080]]
vendors:
  - name: Ramesh
    phone: "9810000001"
    food_type: chaat
    latitude: 28.6139
    longitude: 77.2090
    hygiene_score: 4
reports:
  - vendor_phone: "9810000001"
    issue_type: garbage_disposal
    description: Waste dumped behind the stall
    severity: high
    latitude: 28.6139
    longitude: 77.2090
`

func TestYAMLRead(t *testing.T) {
	b, err := YAML{}.Read(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	require.Len(t, b.Zones, 1)
	assert.Equal(t, model.ZoneLegal, b.Zones[0].Status)
	assert.Len(t, geo.DecodePolygon(b.Zones[0].Coordinates), 4)
	require.Len(t, b.Vendors, 1)
	assert.Equal(t, "9810000001", b.Vendors[0].Phone)
	assert.Equal(t, model.FoodChaat, b.Vendors[0].FoodType)
	require.Len(t, b.Reports, 1)
	assert.Equal(t, "9810000001", b.Reports[0].VendorPhone)
	assert.Equal(t, model.SeverityHigh, b.Reports[0].Severity)
}

func TestYAMLRejectsUnknownFields(t *testing.T) {
	_, err := YAML{}.Read(strings.NewReader("zones:\n  - name: x\n    colour: red\n"))
	assert.Error(t, err)
}

func TestYAMLRequiresCoordinates(t *testing.T) {
	cases := map[string]string{
		"vendor without coordinates":   "vendors:\n  - name: Ravi\n    phone: \"9810000009\"\n    food_type: fruit\n    hygiene_score: 3\n",
		"vendor with null latitude":    "vendors:\n  - name: Ravi\n    phone: \"9810000009\"\n    latitude: null\n    longitude: 77.2\n",
		"report without longitude":     "reports:\n  - issue_type: drainage\n    description: Overflowing drain\n    severity: low\n    latitude: 28.6\n",
		"report with null coordinates": "reports:\n  - issue_type: drainage\n    description: Overflowing drain\n    severity: low\n    latitude: ~\n    longitude: ~\n",
	}
	for name, doc := range cases {
		_, err := YAML{}.Read(strings.NewReader(doc))
		assert.ErrorContains(t, err, "required", name)
	}

	b, err := YAML{}.Read(strings.NewReader("reports:\n  - issue_type: drainage\n    description: d\n    severity: low\n    latitude: 0\n    longitude: 0\n"))
	require.NoError(t, err, "explicit zeros are kept")
	require.Len(t, b.Reports, 1)
	assert.Zero(t, b.Reports[0].Latitude)
}

func TestVendorCSV(t *testing.T) {
	in := "\ufeffname,phone,food_type,latitude,longitude,hygiene_score,area\n" +
		"Sita,9810000002,juice,28.61,77.21,3,Karol Bagh\n" +
		"Mohan,9810000003,tea_snacks,28.62,77.22,5,\n"
	b, err := VendorCSV{}.Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, b.Vendors, 2)
	assert.Equal(t, "Karol Bagh", b.Vendors[0].Area)
	assert.Equal(t, 5, b.Vendors[1].HygieneScore)

	_, err = VendorCSV{}.Read(strings.NewReader("name,phone\nx,1\n"))
	assert.ErrorContains(t, err, "missing required column")

	_, err = VendorCSV{}.Read(strings.NewReader("name,phone,food_type,latitude,longitude,hygiene_score\nx,1,fruit,north,1,1\n"))
	assert.ErrorContains(t, err, "row 2")

	_, err = VendorCSV{}.Read(strings.NewReader("name,phone,food_type,latitude,longitude,hygiene_score\nx,1,fruit,28.6,,1\n"))
	assert.ErrorContains(t, err, "row 2: longitude", "blank cell is not 0")
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))
	b, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, b.Zones, 1)

	_, err = ReadFile(filepath.Join(dir, "seed.json"))
	assert.Error(t, err)
}
