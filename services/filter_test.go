package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vnkhanh/bkhome-server/models"
)

func TestBuildPredicateEmpty(t *testing.T) {
	p := BuildPredicate(RoomFilter{})

	assert.True(t, p.IsEmpty())
	assert.True(t, p.Attribute.IsEmpty())
}

func TestBuildPredicateRanges(t *testing.T) {
	p := BuildPredicate(RoomFilter{AreaFrom: 10, AreaTo: 30, PriceTo: 5_000_000})

	require.NotNil(t, p.Area.Gte)
	require.NotNil(t, p.Area.Lte)
	assert.Equal(t, 10.0, *p.Area.Gte)
	assert.Equal(t, 30.0, *p.Area.Lte)
	assert.Nil(t, p.Price.Gte)
	require.NotNil(t, p.Price.Lte)
	assert.Equal(t, 5_000_000.0, *p.Price.Lte)
	assert.True(t, p.DistanceToSchool.IsEmpty())
}

func TestBuildPredicateMergesAttributeConstraints(t *testing.T) {
	p := BuildPredicate(RoomFilter{
		WaterPriceFrom: 10000,
		WifiInternet:   true,
		SafeDevice:     true,
		AirConditioner: false,
	})

	assert.False(t, p.Attribute.IsEmpty())
	require.NotNil(t, p.Attribute.WaterPrice.Gte)
	assert.Nil(t, p.Attribute.WaterPrice.Lte)
	assert.Equal(t, Amenities{WifiInternet: true, SafeDevice: true}, p.Attribute.Amenities)
	assert.Equal(t, []string{"wifi_internet", "safed_device"}, p.Attribute.Amenities.columns())
}

func TestBuildPredicateTextAndTypes(t *testing.T) {
	p := BuildPredicate(RoomFilter{
		Name:  "  mini ",
		Types: []models.RoomType{models.RoomTypeKyTucXa},
	})

	assert.Equal(t, "mini", p.NameContains)
	assert.Empty(t, p.AddressContains)
	assert.Equal(t, []models.RoomType{models.RoomTypeKyTucXa}, p.Types)
}

func TestForOwnerDoesNotAlias(t *testing.T) {
	base := BuildPredicate(RoomFilter{Name: "x"})
	owned := base.ForOwner(3)

	assert.Nil(t, base.OwnerID)
	require.NotNil(t, owned.OwnerID)
	assert.EqualValues(t, 3, *owned.OwnerID)
}
