package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/azybler/streetrunner/pkg/geo"
)

// ParseManualCSV reads a hand-drawn street list: one row per segment, each
// row a street name followed by an even number of lat/lon pairs tracing its
// path (name,lat1,lon1,lat2,lon2,...). This is the escape hatch for streets
// Overpass doesn't know about or areas with no OSM coverage at all.
func ParseManualCSV(data []byte) ([]StreetSegment, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var segments []StreetSegment
	row := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("manual csv: row %d: %w", row, err)
		}
		row++
		if len(record) < 3 || (len(record)-1)%2 != 0 {
			return nil, fmt.Errorf("manual csv: row %d: expected name,lat,lon,lat,lon,...", row)
		}
		name := record[0]
		coordFields := record[1:]
		path := make([]geo.LatLng, 0, len(coordFields)/2)
		for i := 0; i < len(coordFields); i += 2 {
			lat, err := strconv.ParseFloat(coordFields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("manual csv: row %d: bad latitude %q: %w", row, coordFields[i], err)
			}
			lon, err := strconv.ParseFloat(coordFields[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("manual csv: row %d: bad longitude %q: %w", row, coordFields[i+1], err)
			}
			path = append(path, geo.LatLng{Lat: lat, Lon: lon})
		}
		if len(path) < 2 {
			continue
		}
		segments = append(segments, NewManualSegment(fmt.Sprintf("manual-%d", row), name, path))
	}
	return segments, nil
}
