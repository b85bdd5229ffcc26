package serialize

import (
	"encoding/xml"
	"fmt"

	"github.com/azybler/streetrunner/pkg/geo"
)

type gpxTrkpt struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

type gpxTrkseg struct {
	Points []gpxTrkpt `xml:"trkpt"`
}

type gpxTrk struct {
	Segments []gpxTrkseg `xml:"trkseg"`
}

type gpxDoc struct {
	Tracks []gpxTrk `xml:"trk"`
}

// parseActivityPoints parses a GPX document produced by ToGPX back into its
// flat point list, used to verify that serialization round-trips.
func parseActivityPoints(data []byte) ([]geo.LatLng, error) {
	var doc gpxDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse gpx: %w", err)
	}
	var out []geo.LatLng
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, pt := range seg.Points {
				out = append(out, geo.LatLng{Lat: pt.Lat, Lon: pt.Lon})
			}
		}
	}
	return out, nil
}
