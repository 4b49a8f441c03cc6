package models

import (
	"encoding/json"
	"fmt"
)

// EventType discriminates the closed set of trajectory event variants.
type EventType string

const (
	EventTypeTaxi         EventType = "taxi"
	EventTypeHotel        EventType = "hotel"
	EventTypeFlight       EventType = "flight"
	EventTypeRailway      EventType = "railway"
	EventTypeFuel         EventType = "fuel"
	EventTypeDailyCheckIn EventType = "daily_checkin"
)

// AllEventTypes lists every variant tag, in declaration order.
var AllEventTypes = []EventType{
	EventTypeTaxi,
	EventTypeHotel,
	EventTypeFlight,
	EventTypeRailway,
	EventTypeFuel,
	EventTypeDailyCheckIn,
}

// Valid reports whether the tag names a known variant.
func (t EventType) Valid() bool {
	for _, known := range AllEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EventBase carries the fields shared by every trajectory event variant.
// Events are immutable facts ingested once per evaluation batch; the engine
// only reads and groups them.
type EventBase struct {
	EventID    string     `json:"eventId" db:"id"`
	UserID     string     `json:"userId" db:"user_id"`
	UserName   string     `json:"userName" db:"user_name"`
	Department string     `json:"department" db:"department"`
	Amount     float64    `json:"amount" db:"amount"`
	Remark     string     `json:"remark,omitempty" db:"remark"`
	TimeWindow TimeWindow `json:"timeWindow"`
	Location   Location   `json:"location"`
}

// Validate checks the construction-time invariants shared by all variants.
func (b EventBase) Validate() error {
	if b.EventID == "" {
		return fmt.Errorf("event id must not be empty")
	}
	if b.UserID == "" {
		return fmt.Errorf("event %s: user id must not be empty", b.EventID)
	}
	if b.Amount < 0 {
		return fmt.Errorf("event %s: amount must be non-negative, got %.2f", b.EventID, b.Amount)
	}
	if err := b.Location.Validate(); err != nil {
		return fmt.Errorf("event %s: %w", b.EventID, err)
	}
	if err := b.TimeWindow.Validate(); err != nil {
		return fmt.Errorf("event %s: %w", b.EventID, err)
	}
	return nil
}

// TrajectoryEvent is the read-only contract every variant supports.
type TrajectoryEvent interface {
	Base() EventBase
	Type() EventType
	Validate() error
}

// TaxiEvent is a taxi ride expense.
type TaxiEvent struct {
	EventBase
	FromLocation Location `json:"fromLocation"`
	ToLocation   Location `json:"toLocation"`
	IsSelfPaid   bool     `json:"isSelfPaid"`
}

func (e *TaxiEvent) Base() EventBase { return e.EventBase }
func (e *TaxiEvent) Type() EventType { return EventTypeTaxi }

// HotelEvent is a hotel stay; check-in and check-out are derived from the
// time window.
type HotelEvent struct {
	EventBase
	HotelName string `json:"hotelName"`
	RoomType  string `json:"roomType,omitempty"`
}

func (e *HotelEvent) Base() EventBase { return e.EventBase }
func (e *HotelEvent) Type() EventType { return EventTypeHotel }

// FlightEvent is a flight segment.
type FlightEvent struct {
	EventBase
	FromLocation Location `json:"fromLocation"`
	ToLocation   Location `json:"toLocation"`
	FlightNo     string   `json:"flightNo"`
	Airline      string   `json:"airline,omitempty"`
	CabinClass   string   `json:"cabinClass,omitempty"`
}

func (e *FlightEvent) Base() EventBase { return e.EventBase }
func (e *FlightEvent) Type() EventType { return EventTypeFlight }

// RailwayEvent is a train journey.
type RailwayEvent struct {
	EventBase
	FromLocation Location `json:"fromLocation"`
	ToLocation   Location `json:"toLocation"`
	TrainNumber  string   `json:"trainNumber"`
	TrainType    string   `json:"trainType,omitempty"`
	SeatClass    string   `json:"seatClass,omitempty"`
}

func (e *RailwayEvent) Base() EventBase { return e.EventBase }
func (e *RailwayEvent) Type() EventType { return EventTypeRailway }

// FuelEvent is a fuel purchase at a station.
type FuelEvent struct {
	EventBase
	StationName      string  `json:"stationName,omitempty"`
	VehiclePlate     string  `json:"vehiclePlate,omitempty"`
	FuelType         string  `json:"fuelType,omitempty"`
	FuelAmountLiters float64 `json:"fuelAmountLiters,omitempty"`
}

func (e *FuelEvent) Base() EventBase { return e.EventBase }
func (e *FuelEvent) Type() EventType { return EventTypeFuel }

// DailyCheckInEvent is a customer-visit check-in.
type DailyCheckInEvent struct {
	EventBase
	CustomerName string `json:"customerName,omitempty"`
	Activity     string `json:"activity,omitempty"`
}

func (e *DailyCheckInEvent) Base() EventBase { return e.EventBase }
func (e *DailyCheckInEvent) Type() EventType { return EventTypeDailyCheckIn }

// UnmarshalEvent decodes the JSON encoding of the given variant. The result
// is validated, so a successfully decoded event satisfies the construction
// invariants.
func UnmarshalEvent(eventType EventType, data []byte) (TrajectoryEvent, error) {
	var event TrajectoryEvent
	switch eventType {
	case EventTypeTaxi:
		event = &TaxiEvent{}
	case EventTypeHotel:
		event = &HotelEvent{}
	case EventTypeFlight:
		event = &FlightEvent{}
	case EventTypeRailway:
		event = &RailwayEvent{}
	case EventTypeFuel:
		event = &FuelEvent{}
	case EventTypeDailyCheckIn:
		event = &DailyCheckInEvent{}
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", eventType, err)
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return event, nil
}

// MarshalEvent encodes an event for storage.
func MarshalEvent(event TrajectoryEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event %s: %w", event.Type(), event.Base().EventID, err)
	}
	return data, nil
}
