package infra

import (
	"errors"
	"fmt"
	"testing"

	"github.com/talgya/floodsim/internal/grid"
)

func TestShelter_AdmitStopsAtCapacity(t *testing.T) {
	s := New("shelter_0", grid.Point{X: 1, Y: 1}, 2)

	if err := s.Admit("household_0"); err != nil {
		t.Fatalf("first admit: %v", err)
	}
	if err := s.Admit("household_1"); err != nil {
		t.Fatalf("second admit: %v", err)
	}
	if got := s.Occupancy(); got != 2 {
		t.Fatalf("occupancy = %d, want 2", got)
	}

	err := s.Admit("household_2")
	if !errors.Is(err, ErrAtCapacity) {
		t.Fatalf("third admit error = %v, want ErrAtCapacity", err)
	}
	if got := s.Occupancy(); got != 2 {
		t.Errorf("occupancy after rejected admit = %d, want 2", got)
	}
}

func TestShelter_OccupancyIsSetCardinality(t *testing.T) {
	s := New("shelter_0", grid.Point{}, 10)

	s.Admit("household_0")
	s.Admit("household_0") // already present, set semantics
	if got := s.Occupancy(); got != 1 {
		t.Errorf("occupancy after duplicate admit = %d, want 1", got)
	}

	s.Release("household_0")
	s.Release("household_0") // absent, no-op
	s.Release("never_admitted")
	if got := s.Occupancy(); got != 0 {
		t.Errorf("occupancy after releases = %d, want 0", got)
	}
}

func TestShelter_ResourcesNeverNegative(t *testing.T) {
	s := New("shelter_0", grid.Point{}, 200)
	for i := 0; i < 200; i++ {
		s.Admit(fmt.Sprintf("household_%d", i))
	}

	// 200 occupants drain the medical stock (100 units at 0.1/occupant) in
	// five steps; keep going well past exhaustion.
	for i := 0; i < 50; i++ {
		s.Step(nil)
	}
	for name, stock := range s.Resources {
		if stock < 0 {
			t.Errorf("resource %s went negative: %v", name, stock)
		}
	}
	if s.Resources[ResourceMedical] != 0 {
		t.Errorf("medical stock = %v after exhaustion, want 0", s.Resources[ResourceMedical])
	}
}

func TestShelter_RequestValidation(t *testing.T) {
	s := New("shelter_0", grid.Point{}, 10)

	if err := s.Request(map[string]float64{"helicopters": 1}); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("unknown resource error = %v, want ErrUnknownResource", err)
	}
	if err := s.Request(map[string]float64{ResourceFood: 1e6}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("oversized request error = %v, want ErrUnavailable", err)
	}
	if got := s.PendingRequests(); got != 0 {
		t.Errorf("rejected requests were queued: %d pending", got)
	}

	if err := s.Request(map[string]float64{ResourceFood: 10}); err != nil {
		t.Fatalf("valid request: %v", err)
	}
	if got := s.PendingRequests(); got != 1 {
		t.Errorf("pending = %d, want 1", got)
	}
	// Acceptance does not deduct.
	if s.Resources[ResourceFood] != 1000 {
		t.Errorf("food deducted at acceptance: %v", s.Resources[ResourceFood])
	}
}

func TestShelter_UnfulfillableRequestStaysQueued(t *testing.T) {
	s := New("shelter_0", grid.Point{}, 10)

	if err := s.Request(map[string]float64{ResourceBlankets: 400}); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if err := s.Request(map[string]float64{ResourceBlankets: 400}); err != nil {
		t.Fatalf("second request: %v", err)
	}

	// FIFO: the first request drains stock to 100, the second can no longer
	// be fully met and stays queued. All-or-nothing, no partial deduction.
	s.processRequests()
	if s.Resources[ResourceBlankets] != 100 {
		t.Errorf("blankets = %v, want 100", s.Resources[ResourceBlankets])
	}
	if got := s.PendingRequests(); got != 1 {
		t.Fatalf("pending = %d, want 1", got)
	}

	s.Replenish(ResourceBlankets, 500)
	s.processRequests()
	if got := s.PendingRequests(); got != 0 {
		t.Errorf("request not fulfilled after replenishment, %d pending", got)
	}
	if s.Resources[ResourceBlankets] != 200 {
		t.Errorf("blankets = %v, want 200", s.Resources[ResourceBlankets])
	}
}

func TestShelter_StatusPriority(t *testing.T) {
	s := New("shelter_0", grid.Point{}, 2)

	// Full shelter with broken maintenance and empty stock: at_capacity wins.
	s.Admit("household_0")
	s.Admit("household_1")
	s.MaintenanceLevel = 0.1
	s.Resources[ResourceFood] = 0
	s.updateStatus()
	if s.Status != StatusAtCapacity {
		t.Errorf("status = %q, want %q", s.Status, StatusAtCapacity)
	}

	// Free a slot: maintenance outranks resource shortage.
	s.Release("household_0")
	s.updateStatus()
	if s.Status != StatusMaintenanceNeeded {
		t.Errorf("status = %q, want %q", s.Status, StatusMaintenanceNeeded)
	}

	// Repair the building: the empty food stock now surfaces.
	s.MaintenanceLevel = 0.9
	s.updateStatus()
	if s.Status != StatusResourceCritical {
		t.Errorf("status = %q, want %q", s.Status, StatusResourceCritical)
	}

	// Restock: fully operational.
	s.Resources[ResourceFood] = 1000
	s.updateStatus()
	if s.Status != StatusOperational {
		t.Errorf("status = %q, want %q", s.Status, StatusOperational)
	}
}

func TestShelter_AccessibilityComposite(t *testing.T) {
	s := New("shelter_0", grid.Point{}, 10)
	s.Admit("household_0")
	s.Admit("household_1")
	s.PowerStatus = false
	s.updateAccessibility()

	// 0.3*1.0 maintenance + 0.2*0.5 power + 0.2*1.0 water + 0.3*0.8 spare.
	want := 0.3 + 0.1 + 0.2 + 0.24
	if diff := s.Accessibility - want; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("accessibility = %v, want %v", s.Accessibility, want)
	}
}

func TestShelter_MaintenanceDegradesWithOccupancy(t *testing.T) {
	s := New("shelter_0", grid.Point{}, 4)
	s.Admit("household_0")
	s.Admit("household_1")

	s.degradeMaintenance()
	// 1.0 - 0.01 * 2/4.
	if diff := s.MaintenanceLevel - 0.995; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("maintenance = %v, want 0.995", s.MaintenanceLevel)
	}
	if s.MaintenanceCost != 0 {
		t.Errorf("maintenance cost flagged above 0.5: %v", s.MaintenanceCost)
	}

	s.MaintenanceLevel = 0.4
	s.degradeMaintenance()
	if s.MaintenanceCost == 0 {
		t.Error("maintenance cost not flagged below 0.5")
	}
}

func TestShelter_ReportResourceStatus(t *testing.T) {
	s := New("shelter_0", grid.Point{}, 10)
	if got := s.Report().ResourceStatus; got != "adequate" {
		t.Errorf("fresh shelter resource status = %q, want adequate", got)
	}

	s.Resources[ResourceMedical] = 30
	if got := s.Report().ResourceStatus; got != "critical" {
		t.Errorf("resource status = %q, want critical", got)
	}
}
