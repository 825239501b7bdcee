// Package infra models evacuation shelters: capacity-gated admission, stocked
// resources with per-occupant consumption, maintenance degradation, and a
// FIFO resource request queue.
package infra

import (
	"errors"
	"math"

	"github.com/talgya/floodsim/internal/grid"
	"github.com/talgya/floodsim/internal/sim"
)

// Recoverable shelter errors, returned to the calling agent.
var (
	ErrAtCapacity      = errors.New("shelter at capacity")
	ErrUnknownResource = errors.New("unknown resource type")
	ErrUnavailable     = errors.New("requested quantity not available")
)

// Shelter status values, highest priority first.
const (
	StatusAtCapacity        = "at_capacity"
	StatusMaintenanceNeeded = "maintenance_needed"
	StatusResourceCritical  = "resource_critical"
	StatusOperational       = "operational"
	StatusNonOperational    = "non_operational"
)

// Stocked resource names.
const (
	ResourceFood     = "food"             // kg
	ResourceWater    = "water"            // liters
	ResourceMedical  = "medical_supplies" // units
	ResourceBlankets = "blankets"         // units
)

// defaultStock is the initial resource inventory of a new shelter.
func defaultStock() map[string]float64 {
	return map[string]float64{
		ResourceFood:     1000,
		ResourceWater:    5000,
		ResourceMedical:  100,
		ResourceBlankets: 500,
	}
}

// consumptionRates are per occupant per day.
var consumptionRates = map[string]float64{
	ResourceFood:     0.5,
	ResourceWater:    5.0,
	ResourceMedical:  0.1,
	ResourceBlankets: 0.2,
}

// Shelter is one evacuation shelter agent. It is the owning side of the
// shelter/household occupancy relationship: the occupant set and the
// occupancy count live here and nowhere else.
type Shelter struct {
	ID  string
	Pos grid.Point

	Cap              int
	Resources        map[string]float64
	Status           string
	Accessibility    float64
	MaintenanceLevel float64
	MaintenanceCost  float64
	PowerStatus      bool
	WaterSupply      bool

	occupants map[string]struct{}
	requests  []map[string]float64

	hist sim.History
}

// New creates an operational shelter at pos with the given capacity.
func New(id string, pos grid.Point, capacity int) *Shelter {
	return &Shelter{
		ID:               id,
		Pos:              pos,
		Cap:              capacity,
		Resources:        defaultStock(),
		Status:           StatusOperational,
		Accessibility:    1.0,
		MaintenanceLevel: 1.0,
		PowerStatus:      true,
		WaterSupply:      true,
		occupants:        make(map[string]struct{}),
	}
}

// AgentID implements grid.Occupant.
func (s *Shelter) AgentID() string { return s.ID }

// Position implements grid.Occupant.
func (s *Shelter) Position() grid.Point { return s.Pos }

// Occupancy is always the cardinality of the owned occupant set.
func (s *Shelter) Occupancy() int { return len(s.occupants) }

// Capacity returns the fixed capacity.
func (s *Shelter) Capacity() int { return s.Cap }

// Admit adds a household to the occupant set. The call is atomic: it either
// fully succeeds or returns ErrAtCapacity with nothing changed. Rejected
// households are not queued.
func (s *Shelter) Admit(householdID string) error {
	if len(s.occupants) >= s.Cap {
		return ErrAtCapacity
	}
	s.occupants[householdID] = struct{}{}
	s.record()
	return nil
}

// Release removes a household from the occupant set. Releasing a household
// that is not present is a no-op.
func (s *Shelter) Release(householdID string) {
	if _, ok := s.occupants[householdID]; !ok {
		return
	}
	delete(s.occupants, householdID)
	s.record()
}

// Request queues a resource request for later fulfillment. It is accepted
// only if every requested quantity is currently in stock; acceptance does not
// deduct anything — deduction happens when the queue is processed.
func (s *Shelter) Request(req map[string]float64) error {
	for name, amount := range req {
		stock, ok := s.Resources[name]
		if !ok {
			return ErrUnknownResource
		}
		if stock < amount {
			return ErrUnavailable
		}
	}
	s.requests = append(s.requests, req)
	return nil
}

// PendingRequests returns the number of queued resource requests.
func (s *Shelter) PendingRequests() int { return len(s.requests) }

// Step advances the shelter: consumption, maintenance, request processing,
// accessibility, status — in that order.
func (s *Shelter) Step(env sim.Env) {
	s.consumeResources()
	s.degradeMaintenance()
	s.processRequests()
	s.updateAccessibility()
	s.updateStatus()
}

// consumeResources deducts the daily per-occupant consumption, floored at
// zero for every resource.
func (s *Shelter) consumeResources() {
	for name, rate := range consumptionRates {
		s.Resources[name] = math.Max(0, s.Resources[name]-rate*float64(len(s.occupants)))
	}
	s.record()
}

// degradeMaintenance lowers maintenance proportionally to the occupancy
// ratio. Below 0.5 the shelter flags an estimated cost of bringing the
// building back up.
func (s *Shelter) degradeMaintenance() {
	degradation := 0.01 * float64(len(s.occupants)) / float64(s.Cap)
	s.MaintenanceLevel = math.Max(0, s.MaintenanceLevel-degradation)
	if s.MaintenanceLevel < 0.5 {
		s.MaintenanceCost = (1 - s.MaintenanceLevel) * float64(s.Cap) * 100
	}
	s.record()
}

// processRequests walks the queue in FIFO order, fulfilling only requests
// still fully satisfiable at processing time. A request that can no longer be
// fully met stays queued; it may become satisfiable after replenishment.
func (s *Shelter) processRequests() {
	remaining := s.requests[:0]
	for _, req := range s.requests {
		if !s.canFulfill(req) {
			remaining = append(remaining, req)
			continue
		}
		for name, amount := range req {
			s.Resources[name] -= amount
		}
	}
	s.requests = remaining
	s.record()
}

func (s *Shelter) canFulfill(req map[string]float64) bool {
	for name, amount := range req {
		if s.Resources[name] < amount {
			return false
		}
	}
	return true
}

// updateAccessibility recomputes the weighted composite score: maintenance
// 0.3, power 0.2, water 0.2, spare capacity 0.3.
func (s *Shelter) updateAccessibility() {
	power := 0.5
	if s.PowerStatus {
		power = 1.0
	}
	water := 0.5
	if s.WaterSupply {
		water = 1.0
	}
	spare := 1.0 - float64(len(s.occupants))/float64(s.Cap)

	s.Accessibility = 0.3*s.MaintenanceLevel + 0.2*power + 0.2*water + 0.3*spare
	s.record()
}

// updateStatus recomputes status by priority: at_capacity beats
// maintenance_needed beats resource_critical beats operational.
func (s *Shelter) updateStatus() {
	anyCritical := false
	for _, stock := range s.Resources {
		if stock < 100 {
			anyCritical = true
			break
		}
	}

	switch {
	case len(s.occupants) >= s.Cap:
		s.Status = StatusAtCapacity
	case s.MaintenanceLevel <= 0.3:
		s.Status = StatusMaintenanceNeeded
	case anyCritical:
		s.Status = StatusResourceCritical
	case s.MaintenanceLevel > 0.3 && s.PowerStatus && s.WaterSupply:
		s.Status = StatusOperational
	default:
		s.Status = StatusNonOperational
	}
	s.record()
}

// Replenish adds stock for a resource. Unknown names create a new stock line;
// relief deliveries may carry resource types the shelter did not start with.
func (s *Shelter) Replenish(name string, amount float64) {
	s.Resources[name] += amount
	s.record()
}

// StatusReport is the shelter view consumed by the data collector.
type StatusReport struct {
	ShelterID        string             `json:"shelter_id"`
	Occupancy        int                `json:"occupancy"`
	Capacity         int                `json:"capacity"`
	Status           string             `json:"status"`
	Accessibility    float64            `json:"accessibility"`
	MaintenanceLevel float64            `json:"maintenance_level"`
	Resources        map[string]float64 `json:"resources"`
	PowerStatus      bool               `json:"power_status"`
	WaterSupply      bool               `json:"water_supply"`
	ResourceStatus   string             `json:"resource_status"`
}

// Report builds a point-in-time status report.
func (s *Shelter) Report() StatusReport {
	resourceStatus := "adequate"
	for _, stock := range s.Resources {
		if stock < 50 {
			resourceStatus = "critical"
			break
		}
		if stock < 100 {
			resourceStatus = "low"
			break
		}
	}

	resources := make(map[string]float64, len(s.Resources))
	for name, stock := range s.Resources {
		resources[name] = stock
	}

	return StatusReport{
		ShelterID:        s.ID,
		Occupancy:        len(s.occupants),
		Capacity:         s.Cap,
		Status:           s.Status,
		Accessibility:    s.Accessibility,
		MaintenanceLevel: s.MaintenanceLevel,
		Resources:        resources,
		PowerStatus:      s.PowerStatus,
		WaterSupply:      s.WaterSupply,
		ResourceStatus:   resourceStatus,
	}
}

// History returns the per-mutation state log.
func (s *Shelter) History() *sim.History { return &s.hist }

func (s *Shelter) record() {
	s.hist.Record(sim.Snapshot{
		"occupancy":         len(s.occupants),
		"capacity":          s.Cap,
		"status":            s.Status,
		"accessibility":     s.Accessibility,
		"maintenance_level": s.MaintenanceLevel,
		"power_status":      s.PowerStatus,
		"water_supply":      s.WaterSupply,
	})
}
