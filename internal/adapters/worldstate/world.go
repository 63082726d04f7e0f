package worldstate

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed bodies.yaml
var defaultBodies []byte

var ErrMissingHomeBody = errors.New("missing home body")

type rawWorld struct {
	Home   string             `yaml:"home"`
	Bodies map[string]float64 `yaml:"bodies"`
}

// World is the simulation state the achievement core consults but never owns.
//
// Universal time and roster size are whatever the event source last reported.
type World struct {
	home        string
	multipliers map[string]float64

	mutex         sync.RWMutex
	timeObserved  bool
	universalTime float64
	assignedCrew  int
}

func (w *World) HomeBody() string {
	return w.home
}

// BodyMultiplier returns 1 for bodies the world does not know about
func (w *World) BodyMultiplier(body string) float64 {
	multiplier, ok := w.multipliers[body]
	if !ok {
		return 1
	}
	return multiplier
}

func (w *World) UniversalTime() float64 {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.universalTime
}

// HasUniversalTime reports whether any event has reported a universal time yet
func (w *World) HasUniversalTime() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.timeObserved
}

func (w *World) AssignedCrew() int {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.assignedCrew
}

// Observe records a world-state snapshot reported alongside an event.
// Universal time never moves backwards.
func (w *World) Observe(universalTime *float64, assignedCrew *int) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if universalTime != nil && (!w.timeObserved || *universalTime > w.universalTime) {
		w.universalTime = *universalTime
		w.timeObserved = true
	}
	if assignedCrew != nil && *assignedCrew >= 0 {
		w.assignedCrew = *assignedCrew
	}
}

func New(home string, multipliers map[string]float64) (*World, error) {
	if home == "" {
		return nil, ErrMissingHomeBody
	}
	return &World{
		home:        home,
		multipliers: maps.Clone(multipliers),
	}, nil
}

func Parse(data []byte) (*World, error) {
	var raw rawWorld
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse world: %w", err)
	}
	return New(raw.Home, raw.Bodies)
}

// Load reads the world description at path, or the built-in one when path is empty
func Load(path string) (*World, error) {
	if path == "" {
		return Parse(defaultBodies)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}
	return Parse(data)
}
