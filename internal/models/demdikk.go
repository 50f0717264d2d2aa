package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Dem Dikk publishes its network as a nested line tree instead of the
// operator/zone format the other operators use. The DTOs below mirror that
// feed; NormalizeDemDikk folds it into the shared OperatorWithZones shape.

// DemDikkTariff a price tier on a Dem Dikk line
type DemDikkTariff struct {
	ID        string  `json:"id"`
	NameTarif string  `json:"nameTarif"`
	Price     float64 `json:"price"`
}

// DemDikkStation a stop on a Dem Dikk line zone
type DemDikkStation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DemDikkZone a zone on a Dem Dikk line; the numeric order is embedded in the name ("Zone 2")
type DemDikkZone struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Stations []DemDikkStation `json:"stations"`
	Tariffs  []DemDikkTariff  `json:"tarifs"`
}

// DemDikkLine one municipal bus line with its zones
type DemDikkLine struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Zones []DemDikkZone `json:"zones"`
}

// DemDikkResponse wire format of GET /demdikk
type DemDikkResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    struct {
		Operator Operator      `json:"operator"`
		Lines    []DemDikkLine `json:"lines"`
	} `json:"data"`
}

// IsSuccess reports whether the response carries a usable payload
func (r *DemDikkResponse) IsSuccess() bool {
	return r.Status == 0 || (r.Status >= 200 && r.Status < 300)
}

// GetErrorMessage human-readable error for a failed response
func (r *DemDikkResponse) GetErrorMessage() string {
	if r.Message != "" {
		return r.Message
	}
	return fmt.Sprintf("statut %d", r.Status)
}

// NormalizeDemDikk flattens the nested line tree into the shared
// OperatorWithZones form. Zone names are prefixed with their line so that
// "Zone 1" of two different lines stays distinguishable, and zones are
// ordered by the numeric suffix embedded in their name. Tariffs stay
// attached to their own zone; no cross-zone fallback is applied.
func NormalizeDemDikk(resp *DemDikkResponse) OperatorWithZones {
	result := OperatorWithZones{Operator: resp.Data.Operator}

	for _, line := range resp.Data.Lines {
		for _, dz := range line.Zones {
			zone := Zone{
				ID:    dz.ID,
				Name:  line.Name + " - " + dz.Name,
				Order: parseZoneOrder(dz.Name),
			}
			for _, ds := range dz.Stations {
				zone.Stations = append(zone.Stations, Station{ID: ds.ID, Name: ds.Name})
			}
			for _, dt := range dz.Tariffs {
				zone.Tariffs = append(zone.Tariffs, Tariff{ID: dt.ID, NameTarif: dt.NameTarif, Price: dt.Price})
			}
			result.Zones = append(result.Zones, zone)
		}
	}

	sort.SliceStable(result.Zones, func(i, j int) bool {
		return result.Zones[i].Order < result.Zones[j].Order
	})

	return result
}

// parseZoneOrder extracts the trailing number of a zone name ("Zone 3" -> 3)
func parseZoneOrder(name string) int {
	fields := strings.Fields(name)
	for i := len(fields) - 1; i >= 0; i-- {
		if n, err := strconv.Atoi(fields[i]); err == nil {
			return n
		}
	}
	return 0
}
