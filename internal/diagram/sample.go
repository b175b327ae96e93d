package diagram

import "github.com/inamate/timegraph/internal/typeid"

// NewEmptyDocument creates a diagram without stations or trains covering
// 06:00 to 10:00.
func NewEmptyDocument(id, name string) *Document {
	return &Document{
		ID:         id,
		Name:       name,
		Version:    1,
		Width:      1200,
		Height:     400,
		Background: "#fafafa",
		Start:      6 * 60,
		End:        10 * 60,
		Layers:     []Layer{{ID: typeid.NewLayerID(), Name: "Trains"}},
		Stations:   []Station{},
		Trains:     []Train{},
		Labels:     []Label{},
	}
}

// NewSampleDocument builds a three station line with two passenger
// trains and a freight train on separate layers.
func NewSampleDocument(id string) *Document {
	passengerID := typeid.NewLayerID()
	freightID := typeid.NewLayerID()

	kasselID := typeid.NewElementID()
	fuldaID := typeid.NewElementID()
	frankfurtID := typeid.NewElementID()

	iceID := typeid.NewElementID()
	rbID := typeid.NewElementID()
	freightTrainID := typeid.NewElementID()

	return &Document{
		ID:         id,
		Name:       "Kassel - Frankfurt",
		Version:    1,
		Width:      1200,
		Height:     400,
		Background: "#fafafa",
		Start:      6 * 60,
		End:        10 * 60,
		Layers: []Layer{
			{ID: freightID, Name: "Freight"},
			{ID: passengerID, Name: "Passenger"},
		},
		Stations: []Station{
			{ID: kasselID, Name: "Kassel-Wilhelmshoehe", Y: 60, Color: "#444444"},
			{ID: fuldaID, Name: "Fulda", Y: 200, Color: "#444444"},
			{ID: frankfurtID, Name: "Frankfurt (Main) Hbf", Y: 340, Color: "#444444"},
		},
		Trains: []Train{
			{
				ID:     iceID,
				Number: "ICE 571",
				Color:  "#e2001a",
				Layer:  passengerID,
				Stops: []Stop{
					{Station: kasselID, Arrival: 380},
					{Station: fuldaID, Arrival: 412, Departure: 414},
					{Station: frankfurtID, Arrival: 450},
				},
			},
			{
				ID:     rbID,
				Number: "RB 15",
				Color:  "#0a7c3e",
				Layer:  passengerID,
				Stops: []Stop{
					{Station: frankfurtID, Arrival: 390},
					{Station: fuldaID, Arrival: 460, Departure: 465},
					{Station: kasselID, Arrival: 540},
				},
			},
			{
				ID:     freightTrainID,
				Number: "GM 47",
				Color:  "#6b4f2a",
				Layer:  freightID,
				Stops: []Stop{
					{Station: kasselID, Arrival: 400},
					{Station: fuldaID, Arrival: 500, Departure: 520},
					{Station: frankfurtID, Arrival: 590},
				},
			},
		},
		Labels: []Label{
			{ID: typeid.NewElementID(), Train: iceID, X: 130, Y: 100},
			{ID: typeid.NewElementID(), Train: rbID, X: 330, Y: 280},
			{ID: typeid.NewElementID(), Train: freightTrainID, X: 420, Y: 110},
		},
		Transforms: map[string]Transform{},
	}
}
