package model

import "github.com/talgya/floodsim/internal/social"

// Metrics is one row of the aggregate time series.
type Metrics struct {
	Step                 uint64  `json:"step" db:"step"`
	AverageFloodLevel    float64 `json:"average_flood_level" db:"avg_flood_level"`
	TotalDamage          float64 `json:"total_damage" db:"total_damage"`
	EvacuationRate       float64 `json:"evacuation_rate" db:"evacuation_rate"`
	ShelterOccupancyRate float64 `json:"shelter_occupancy_rate" db:"shelter_occupancy_rate"`
}

// AverageFloodLevel returns the mean water level across all rivers.
func (m *Model) AverageFloodLevel() float64 {
	if len(m.Rivers) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range m.Rivers {
		total += r.WaterLevel
	}
	return total / float64(len(m.Rivers))
}

// TotalEconomicDamage returns the summed uninsured damage across sectors.
func (m *Model) TotalEconomicDamage() float64 {
	total := 0.0
	for _, a := range m.Sectors {
		total += a.Damage
	}
	return total
}

// EvacuationRate returns the share of households that reached a shelter.
func (m *Model) EvacuationRate() float64 {
	if len(m.Households) == 0 {
		return 0
	}
	sheltered := 0
	for _, h := range m.Households {
		if h.Status == social.StatusSheltered {
			sheltered++
		}
	}
	return float64(sheltered) / float64(len(m.Households))
}

// ShelterOccupancyRate returns summed occupancy over summed capacity.
func (m *Model) ShelterOccupancyRate() float64 {
	capacity := 0
	occupancy := 0
	for _, s := range m.ShelterSet {
		capacity += s.Capacity()
		occupancy += s.Occupancy()
	}
	if capacity == 0 {
		return 0
	}
	return float64(occupancy) / float64(capacity)
}

// Snapshot builds the metric row for the current step. Safe to call after
// any completed step; it never mutates kernel state.
func (m *Model) Snapshot() Metrics {
	return Metrics{
		Step:                 m.CurrentStep(),
		AverageFloodLevel:    m.AverageFloodLevel(),
		TotalDamage:          m.TotalEconomicDamage(),
		EvacuationRate:       m.EvacuationRate(),
		ShelterOccupancyRate: m.ShelterOccupancyRate(),
	}
}
