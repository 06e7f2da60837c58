package automation

import (
	"math/rand"
	"time"

	"go-food-delivery/models"
)

const (
	// SimulationSteps is the number of discrete location updates per delivery.
	SimulationSteps = 20
	// SimulationInterval is the pause between consecutive updates.
	SimulationInterval = 3 * time.Second
	// jitterDegrees bounds the pseudo-random wobble added to each point.
	jitterDegrees = 0.0005
	// arrivingThreshold marks the delivery "arriving" once this few steps remain.
	arrivingThreshold = 3
)

// LocationSimulator produces the finite sequence of simulated driver
// positions between the restaurant and the customer.
type LocationSimulator struct {
	Steps    int
	Interval time.Duration
	Jitter   func() float64
}

func NewLocationSimulator() *LocationSimulator {
	return &LocationSimulator{
		Steps:    SimulationSteps,
		Interval: SimulationInterval,
		Jitter: func() float64 {
			return (rand.Float64()*2 - 1) * jitterDegrees
		},
	}
}

// PointAt linearly interpolates between from and to at step/Steps, with
// jitter on both coordinates for visual realism.
func (s *LocationSimulator) PointAt(from, to models.Location, step int) models.Location {
	if step < 0 {
		step = 0
	}
	if step > s.Steps {
		step = s.Steps
	}
	progress := float64(step) / float64(s.Steps)
	return models.Location{
		Lat: from.Lat + (to.Lat-from.Lat)*progress + s.Jitter(),
		Lng: from.Lng + (to.Lng-from.Lng)*progress + s.Jitter(),
	}
}

// ETAAt computes the estimated arrival after the given step has been reached.
func (s *LocationSimulator) ETAAt(now time.Time, step int) time.Time {
	remaining := s.Steps - step
	if remaining < 0 {
		remaining = 0
	}
	return now.Add(time.Duration(remaining) * s.Interval)
}
