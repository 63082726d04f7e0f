package eventlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Amund211/milestones/internal/domain"
)

const maxLineBytes = 1024 * 1024

type Vessel struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	CrewCount  int     `json:"crewCount"`
	Mass       float64 `json:"mass"`
	PartsCount int     `json:"partsCount"`
	Cost       float64 `json:"cost"`
}

// Event is the wire form of a gameplay event, shared by the HTTP port and event log files
type Event struct {
	Definition    string   `json:"definition"`
	Body          *string  `json:"body,omitempty"`
	Vessel        *Vessel  `json:"vessel,omitempty"`
	Value         *float64 `json:"value,omitempty"`
	Contributor   *string  `json:"contributor,omitempty"`
	UniversalTime *float64 `json:"universalTime,omitempty"`
	AssignedCrew  *int     `json:"assignedCrew,omitempty"`
}

func (e Event) ToDomain() domain.Event {
	event := domain.Event{
		DefinitionName:      e.Definition,
		Body:                e.Body,
		ExplicitValue:       e.Value,
		ExplicitContributor: e.Contributor,
		UniversalTime:       e.UniversalTime,
		AssignedCrew:        e.AssignedCrew,
	}
	if e.Vessel != nil {
		event.Vessel = &domain.Vessel{
			ID:         e.Vessel.ID,
			Name:       e.Vessel.Name,
			CrewCount:  e.Vessel.CrewCount,
			Mass:       e.Vessel.Mass,
			PartsCount: e.Vessel.PartsCount,
			Cost:       e.Vessel.Cost,
		}
	}
	return event
}

// Read decodes one JSON event per line and calls fn for each, in order.
//
// Blank lines are skipped. Decoding stops at the first malformed line or the first
// error returned by fn.
func Read(r io.Reader, fn func(lineNumber int, event Event) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			return fmt.Errorf("line %d: failed to decode event: %w", lineNumber, err)
		}
		if err := fn(lineNumber, event); err != nil {
			return fmt.Errorf("line %d: %w", lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}
	return nil
}
