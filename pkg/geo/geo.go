// Package geo 提供地理距离与线性衰减工具。
package geo

import "math"

const earthRadiusKm = 6371.0

// HaversineKm 计算两点之间的大圆距离（公里）。
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// LinearDecay 返回 1 - value/window，裁剪到 [0,1]。
// 用于距离衰减（value=距离, window=最大半径）和时间衰减（value=天数, window=窗口天数）。
// window <= 0 时返回 0（窗口未配置视为无信号）。
func LinearDecay(value, window float64) float64 {
	if window <= 0 {
		return 0
	}
	if value <= 0 {
		return 1
	}
	if value >= window {
		return 0
	}
	return 1 - value/window
}
