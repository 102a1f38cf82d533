package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Departure is the origin side of a leg: where the cargo loaded and when it
// sailed.
type Departure struct {
	Location      string `json:"location"`
	DepartureDate string `json:"departureDate"`
}

// Arrival is the destination side of a leg.
type Arrival struct {
	Location    string `json:"location"`
	ArrivalDate string `json:"arrivalDate"`
}

// Transshipment is an interior point where cargo transfers between legs.
// ArrivalDate comes from the previous leg's destination; DepartureDate from
// the current leg's origin.
type Transshipment struct {
	Location      string `json:"location"`
	ArrivalDate   string `json:"arrivalDate"`
	DepartureDate string `json:"departureDate"`
}

// Route is the stitched itinerary: exactly one pol, zero or more numbered
// transshipment points in itinerary order, exactly one pod.
type Route struct {
	Pol            Departure
	Transshipments []Transshipment
	Pod            Arrival
}

// MarshalJSON emits the wire shape downstream consumers expect:
// {"pol":..., "ts1":..., ..., "tsN":..., "pod":...}.
func (r Route) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"pol":`)
	pol, err := json.Marshal(r.Pol)
	if err != nil {
		return nil, err
	}
	buf.Write(pol)
	for i, ts := range r.Transshipments {
		b, err := json.Marshal(ts)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, `,"ts%d":`, i+1)
		buf.Write(b)
	}
	buf.WriteString(`,"pod":`)
	pod, err := json.Marshal(r.Pod)
	if err != nil {
		return nil, err
	}
	buf.Write(pod)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ContainerEvent is one carrier-reported fact about a specific container.
type ContainerEvent struct {
	No        int    `json:"No"`
	Status    string `json:"status"`
	Location  string `json:"location"`
	CntrState string `json:"cntrState"`
	Date      string `json:"date"`
	Vessel    string `json:"vessel"`
}

// Container is one physical container on the bill of lading with its
// ordered event history.
type Container struct {
	ContainerNo string           `json:"containerNo"`
	SealNo      string           `json:"sealNo"`
	Size        string           `json:"size"`
	Events      []ContainerEvent `json:"events"`
}

// ContainerDetails is the containerInfo section of the canonical record.
// ContainerInfo is never nil; an empty grid yields an empty slice.
type ContainerDetails struct {
	ContainerInfo []Container `json:"containerInfo"`
}

// SinolinesRawData is the rawData payload for grid-scraped carriers.
// CleanedRoute stays null when the route table never appeared; that is a
// valid outcome, not an error.
type SinolinesRawData struct {
	CleanedRoute            *Route            `json:"cleanedRoute"`
	CleanedContainerDetails *ContainerDetails `json:"cleanedContainerDetails"`
	Error                   string            `json:"error,omitempty"`
	IsFailed                bool              `json:"isFailed,omitempty"`
}

// MaerskRawData wraps the payload of the telemetry-gated tracking API.
type MaerskRawData struct {
	Data any `json:"data,omitempty"`
}
