package models

// Operator a transport operator (BRT, TER, Dem Dikk...)
// Server-authoritative: replaced wholesale on refresh, never patched field by field.
type Operator struct {
	ID             string `json:"id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	LogoURL        string `json:"logoUrl"`
	IsUrbainStatus bool   `json:"isUrbainStatus"`
	TicketValidity string `json:"ticketValidity"`
}

// Station a stop inside a zone; ZoneID/ZoneName are only set on flattened views
type Station struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name"`
	ZoneID   string `json:"zoneId,omitempty"`
	ZoneName string `json:"zoneName,omitempty"`
}

// Tariff a named price tier attached to a zone or line.
// Price is authoritative only from the network response; never synthesized locally.
type Tariff struct {
	ID        string  `json:"id" validate:"required"`
	NameTarif string  `json:"nameTarif"`
	Price     float64 `json:"price"`
}

// Zone a fare/geographic grouping of stations under one operator
type Zone struct {
	ID       string    `json:"id" validate:"required"`
	Name     string    `json:"name"`
	Order    int       `json:"order"`
	Stations []Station `json:"stations"`
	Tariffs  []Tariff  `json:"tariffs,omitempty"`
}

// OperatorWithZones the unit of storage and lookup in the operator cache
type OperatorWithZones struct {
	Operator Operator `json:"operator" validate:"required"`
	Zones    []Zone   `json:"zones"`
}

// FlattenStations returns every station of the operator decorated with its zone
func (ow OperatorWithZones) FlattenStations() []Station {
	var flat []Station
	for _, zone := range ow.Zones {
		for _, station := range zone.Stations {
			station.ZoneID = zone.ID
			station.ZoneName = zone.Name
			flat = append(flat, station)
		}
	}
	return flat
}

// StationCount total number of stations across all zones
func (ow OperatorWithZones) StationCount() int {
	count := 0
	for _, zone := range ow.Zones {
		count += len(zone.Stations)
	}
	return count
}
