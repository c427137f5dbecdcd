package service

import (
	"testing"

	"github.com/dujiao-next/delivery/internal/geo"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stop(id uint, lat, lng float64, rate string) RouteStop {
	return RouteStop{StoreID: id, Location: &geo.Point{Lat: lat, Lng: lng}, RatePerKM: decimal.RequireFromString(rate)}
}

func TestRouteFeeSingleStoreAtEquator(t *testing.T) {
	o := NewRouteFeeOptimizer()
	stops := []RouteStop{stop(1, 0, 0, "10")}
	dest := geo.Point{Lat: 0, Lng: 1}

	got := o.EstimateFee(stops, dest)

	want := geo.Haversine(dest, geo.Point{Lat: 0, Lng: 0})
	assert.InDelta(t, want, got.DistanceKM, 1e-9)
	assert.InDelta(t, 111.19, got.DistanceKM, 0.01)
	expectedFee := decimal.NewFromFloat(want).Mul(decimal.NewFromInt(10)).Round(2)
	assert.True(t, expectedFee.Equal(got.Fee.Decimal), "fee %s want %s", got.Fee, expectedFee)
	assert.Equal(t, "1111.95", got.Fee.String())
}

func TestRouteFeeVisitsNearestFirst(t *testing.T) {
	o := NewRouteFeeOptimizer()
	dest := geo.Point{Lat: 0, Lng: 0}
	far := stop(1, 0, 2, "5")
	near := stop(2, 0, 1, "5")

	got := o.EstimateFee([]RouteStop{far, near}, dest)

	require.Equal(t, []uint{2, 1}, got.Route)
	legs := geo.Haversine(dest, *near.Location) + geo.Haversine(*near.Location, *far.Location)
	assert.InDelta(t, legs, got.DistanceKM, 1e-9)
}

func TestRouteFeeUsesMaxRate(t *testing.T) {
	o := NewRouteFeeOptimizer()
	dest := geo.Point{Lat: 0, Lng: 0}
	stops := []RouteStop{stop(1, 0, 1, "2.50"), stop(2, 0, 1, "4")}

	got := o.EstimateFee(stops, dest)

	assert.Equal(t, "4.00", got.RatePerKM.String())
	expected := decimal.NewFromFloat(got.DistanceKM).Mul(decimal.NewFromInt(4)).Round(2)
	assert.True(t, expected.Equal(got.Fee.Decimal))
}

func TestRouteFeeSkipsStoresWithoutCoordinates(t *testing.T) {
	o := NewRouteFeeOptimizer()
	dest := geo.Point{Lat: 0, Lng: 0}
	missing := RouteStop{StoreID: 3, RatePerKM: decimal.NewFromInt(100)}
	stops := []RouteStop{missing, stop(1, 0, 1, "1")}

	got := o.EstimateFee(stops, dest)

	assert.Equal(t, []uint{1}, got.Route)
	assert.InDelta(t, 111.19, got.DistanceKM, 0.01)
	// 缺失坐标的门店不参与路线，但其费率仍参与取最大值
	assert.Equal(t, "100.00", got.RatePerKM.String())
}

func TestRouteFeeNoValidStores(t *testing.T) {
	o := NewRouteFeeOptimizer()
	got := o.EstimateFee([]RouteStop{{StoreID: 1, RatePerKM: decimal.NewFromInt(3)}}, geo.Point{})

	assert.Zero(t, got.DistanceKM)
	assert.True(t, got.Fee.IsZero())
	assert.Empty(t, got.Route)

	assert.Zero(t, o.EstimateDistance(nil, geo.Point{Lat: 1, Lng: 1}))
}

func TestRouteFeeTieBreaksByStoreID(t *testing.T) {
	o := NewRouteFeeOptimizer()
	dest := geo.Point{Lat: 0, Lng: 0}
	got := o.EstimateFee([]RouteStop{stop(7, 0, 1, "1"), stop(3, 0, -1, "1")}, dest)
	assert.Equal(t, uint(3), got.Route[0])
}
