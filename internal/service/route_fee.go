package service

import (
	"github.com/dujiao-next/delivery/internal/geo"
	"github.com/dujiao-next/delivery/internal/models"

	"github.com/shopspring/decimal"
)

// RouteStop 路线中的取货点
type RouteStop struct {
	StoreID          uint
	Location         *geo.Point
	RatePerKM        decimal.Decimal
	EstimatedMinutes int
}

// RouteEstimate 路线估算结果
type RouteEstimate struct {
	DistanceKM       float64      `json:"distance_km"`
	RatePerKM        models.Money `json:"rate_per_km"`
	Fee              models.Money `json:"fee"`
	EstimatedMinutes int          `json:"estimated_minutes"`
	Route            []uint       `json:"route"`
}

// RouteFeeOptimizer 多门店配送费估算（最近邻启发式）
type RouteFeeOptimizer struct{}

// NewRouteFeeOptimizer 创建配送费估算器
func NewRouteFeeOptimizer() *RouteFeeOptimizer {
	return &RouteFeeOptimizer{}
}

// RouteStopsFromStores 从门店构建取货点
func RouteStopsFromStores(stores []models.Store) []RouteStop {
	stops := make([]RouteStop, 0, len(stores))
	for i := range stores {
		store := stores[i]
		stop := RouteStop{
			StoreID:          store.ID,
			RatePerKM:        store.DeliveryFeePerKM.Decimal,
			EstimatedMinutes: store.EstimatedDeliveryTime,
		}
		if store.HasCoordinates() {
			stop.Location = &geo.Point{Lat: *store.Latitude, Lng: *store.Longitude}
		}
		stops = append(stops, stop)
	}
	return stops
}

// EstimateDistance 从收货点出发依次前往最近的未访问门店，返回总路程（公里）
func (o *RouteFeeOptimizer) EstimateDistance(stops []RouteStop, destination geo.Point) float64 {
	total, _ := o.route(stops, destination)
	return total
}

// EstimateFee 估算总路程与配送费，费率取所有门店中的最高费率
func (o *RouteFeeOptimizer) EstimateFee(stops []RouteStop, destination geo.Point) RouteEstimate {
	total, visited := o.route(stops, destination)

	rate := decimal.Zero
	minutes := 0
	for _, stop := range stops {
		if stop.RatePerKM.GreaterThan(rate) {
			rate = stop.RatePerKM
		}
		if stop.EstimatedMinutes > minutes {
			minutes = stop.EstimatedMinutes
		}
	}

	fee := decimal.Zero
	if len(visited) > 0 {
		fee = decimal.NewFromFloat(total).Mul(rate).Round(2)
	}
	return RouteEstimate{
		DistanceKM:       total,
		RatePerKM:        models.NewMoneyFromDecimal(rate),
		Fee:              models.NewMoneyFromDecimal(fee),
		EstimatedMinutes: minutes,
		Route:            visited,
	}
}

func (o *RouteFeeOptimizer) route(stops []RouteStop, destination geo.Point) (float64, []uint) {
	pending := make([]RouteStop, 0, len(stops))
	for _, stop := range stops {
		if stop.Location != nil {
			pending = append(pending, stop)
		}
	}

	current := destination
	total := 0.0
	visited := make([]uint, 0, len(pending))
	for len(pending) > 0 {
		nearest := -1
		nearestDist := 0.0
		for i, stop := range pending {
			d := geo.Haversine(current, *stop.Location)
			if nearest < 0 || d < nearestDist || (d == nearestDist && stop.StoreID < pending[nearest].StoreID) {
				nearest = i
				nearestDist = d
			}
		}
		total += nearestDist
		current = *pending[nearest].Location
		visited = append(visited, pending[nearest].StoreID)
		pending = append(pending[:nearest], pending[nearest+1:]...)
	}
	return total, visited
}
