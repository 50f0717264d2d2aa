package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demDikkFixture() *DemDikkResponse {
	resp := &DemDikkResponse{Status: 200}
	resp.Data.Operator = Operator{ID: "dd-1", Name: "Dem Dikk"}
	resp.Data.Lines = []DemDikkLine{
		{
			ID:   "l8",
			Name: "Ligne 8",
			Zones: []DemDikkZone{
				{
					ID:   "l8-z2",
					Name: "Zone 2",
					Stations: []DemDikkStation{
						{ID: "s3", Name: "Liberte 6"},
					},
					Tariffs: []DemDikkTariff{{ID: "t2", NameTarif: "Standard", Price: 300}},
				},
				{
					ID:   "l8-z1",
					Name: "Zone 1",
					Stations: []DemDikkStation{
						{ID: "s1", Name: "Palais"},
						{ID: "s2", Name: "Place de l'Independance"},
					},
					Tariffs: []DemDikkTariff{{ID: "t1", NameTarif: "Standard", Price: 200}},
				},
			},
		},
		{
			ID:   "l12",
			Name: "Ligne 12",
			Zones: []DemDikkZone{
				{
					ID:       "l12-z1",
					Name:     "Zone 1",
					Stations: []DemDikkStation{{ID: "s4", Name: "Ouakam"}},
				},
			},
		},
	}
	return resp
}

func TestNormalizeDemDikk(t *testing.T) {
	normalized := NormalizeDemDikk(demDikkFixture())

	assert.Equal(t, "Dem Dikk", normalized.Operator.Name)
	require.Len(t, normalized.Zones, 3)

	// ordered by the numeric suffix of the zone name, stably
	assert.Equal(t, "Ligne 8 - Zone 1", normalized.Zones[0].Name)
	assert.Equal(t, "Ligne 12 - Zone 1", normalized.Zones[1].Name)
	assert.Equal(t, "Ligne 8 - Zone 2", normalized.Zones[2].Name)

	// line prefix keeps same-numbered zones of different lines apart
	assert.NotEqual(t, normalized.Zones[0].Name, normalized.Zones[1].Name)

	// stations carried over
	assert.Len(t, normalized.Zones[0].Stations, 2)
	assert.Equal(t, "Palais", normalized.Zones[0].Stations[0].Name)

	// tariffs stay attached to their own zone
	require.Len(t, normalized.Zones[0].Tariffs, 1)
	assert.Equal(t, float64(200), normalized.Zones[0].Tariffs[0].Price)
	assert.Empty(t, normalized.Zones[1].Tariffs, "no cross-zone tariff fallback")
	require.Len(t, normalized.Zones[2].Tariffs, 1)
	assert.Equal(t, float64(300), normalized.Zones[2].Tariffs[0].Price)
}

func TestNormalizeDemDikkEmpty(t *testing.T) {
	resp := &DemDikkResponse{Status: 200}
	resp.Data.Operator = Operator{ID: "dd-1", Name: "Dem Dikk"}

	normalized := NormalizeDemDikk(resp)
	assert.Equal(t, "dd-1", normalized.Operator.ID)
	assert.Empty(t, normalized.Zones)
}

func TestParseZoneOrder(t *testing.T) {
	assert.Equal(t, 3, parseZoneOrder("Zone 3"))
	assert.Equal(t, 12, parseZoneOrder("Zone 12"))
	assert.Equal(t, 0, parseZoneOrder("Zone centrale"), "no number defaults to zero")
	assert.Equal(t, 0, parseZoneOrder(""))
}

func TestOperatorWithZonesFlattenStations(t *testing.T) {
	ow := OperatorWithZones{
		Operator: Operator{ID: "brt-1", Name: "BRT"},
		Zones: []Zone{
			{ID: "z1", Name: "Zone 1", Stations: []Station{{ID: "s1", Name: "Guediawaye"}}},
			{ID: "z2", Name: "Zone 2", Stations: []Station{{ID: "s2", Name: "Grand Medine"}, {ID: "s3", Name: "Petersen"}}},
		},
	}

	flat := ow.FlattenStations()
	require.Len(t, flat, 3)
	assert.Equal(t, "z1", flat[0].ZoneID)
	assert.Equal(t, "Zone 1", flat[0].ZoneName)
	assert.Equal(t, "z2", flat[2].ZoneID)
	assert.Equal(t, 3, ow.StationCount())
}
