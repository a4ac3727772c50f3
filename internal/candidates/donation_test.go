package candidates

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const soupKitchensCSV = `name,address,distance_from_ha_salon_km,opening_hours
Lasova,HaMasger 38,2.1,08:00-20:00
Meir Panim,Hahagana 12,4.7,09:00-18:00
Beit Tovei,Allenby 99,1.3,10:00-16:00
Carmel Kitchen,HaCarmel 5,0.9,07:00-15:00
Jaffa Table,Yefet 21,3.5,
Far Kitchen,Somewhere 1,42.0,
No Distance Listed,Nowhere 0,,
`

func TestFindDonationTargetPicksFromClosest(t *testing.T) {
	path := writeCSV(t, soupKitchensCSV)

	// The pick is random over the five closest centers; the far ones and
	// the distance-less row never win.
	closest := map[string]bool{
		"Lasova": true, "Meir Panim": true, "Beit Tovei": true,
		"Carmel Kitchen": true, "Jaffa Table": true,
	}
	for seed := int64(0); seed < 10; seed++ {
		finder := NewSoupKitchenFinder(path, seed)
		target, err := finder.FindDonationTarget(context.Background())
		require.NoError(t, err)
		require.NotNil(t, target)
		assert.True(t, closest[target.Name], "unexpected pick %q", target.Name)
	}
}

func TestFindDonationTargetHeaderOnly(t *testing.T) {
	path := writeCSV(t, "name,address,distance_from_ha_salon_km,opening_hours\n")
	finder := NewSoupKitchenFinder(path, 1)

	target, err := finder.FindDonationTarget(context.Background())
	require.NoError(t, err)
	assert.Nil(t, target)
}

func TestFindDonationTargetMissingFile(t *testing.T) {
	finder := NewSoupKitchenFinder(filepath.Join(t.TempDir(), "absent.csv"), 1)

	_, err := finder.FindDonationTarget(context.Background())
	assert.Error(t, err)
}

func TestFindDonationTargetCarriesDetails(t *testing.T) {
	path := writeCSV(t, "name,address,distance_from_ha_salon_km,opening_hours\nLasova,HaMasger 38,2.1,08:00-20:00\n")
	finder := NewSoupKitchenFinder(path, 1)

	target, err := finder.FindDonationTarget(context.Background())
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "Lasova", target.Name)
	assert.Equal(t, "HaMasger 38", target.Address)
	assert.Equal(t, 2.1, target.DistanceKm)
	assert.Equal(t, "08:00-20:00", target.Hours)
}
