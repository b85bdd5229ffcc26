// Package serialize renders a planned route as GPX or AML, and builds the
// launch URLs that hand a finished plan off to a maps app.
package serialize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/azybler/streetrunner/pkg/geo"
	"github.com/azybler/streetrunner/pkg/planner"
)

// routePoints flattens a plan's steps into one continuous polyline.
func routePoints(p *planner.Plan) []geo.LatLng {
	var out []geo.LatLng
	for _, step := range p.Steps {
		if len(step.Path) == 0 {
			continue
		}
		if len(out) > 0 {
			last := out[len(out)-1]
			if last == step.Path[0] {
				out = append(out, step.Path[1:]...)
				continue
			}
		}
		out = append(out, step.Path...)
	}
	return out
}

// ToGPX renders p as a GPX 1.1 document with a single track and segment.
func ToGPX(p *planner.Plan, name string, createdAt time.Time) []byte {
	points := routePoints(p)
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<gpx version="1.1" creator="streetrunner" xmlns="http://www.topografix.com/GPX/1/1">` + "\n")
	b.WriteString("  <metadata>\n")
	fmt.Fprintf(&b, "    <name>%s</name>\n", escapeXML(name))
	fmt.Fprintf(&b, "    <time>%s</time>\n", createdAt.UTC().Format(time.RFC3339))
	b.WriteString("  </metadata>\n")
	b.WriteString("  <trk>\n")
	fmt.Fprintf(&b, "    <name>%s</name>\n", escapeXML(name))
	b.WriteString("    <trkseg>\n")
	for _, pt := range points {
		fmt.Fprintf(&b, "      <trkpt lat=\"%s\" lon=\"%s\"></trkpt>\n",
			formatCoord(pt.Lat), formatCoord(pt.Lon))
	}
	b.WriteString("    </trkseg>\n")
	b.WriteString("  </trk>\n")
	b.WriteString("</gpx>\n")
	return []byte(b.String())
}

// ToAML renders p as the application's own AML route format: a metadata
// block plus a flat, 1-indexed list of points (the same joined polyline the
// GPX track carries, one entry per path vertex).
func ToAML(p *planner.Plan, name string, createdAt time.Time) []byte {
	points := routePoints(p)
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<aml version="1.0">` + "\n")
	b.WriteString("  <metadata>\n")
	fmt.Fprintf(&b, "    <name>%s</name>\n", escapeXML(name))
	fmt.Fprintf(&b, "    <created>%s</created>\n", createdAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "    <distance_km>%.3f</distance_km>\n", p.TotalDistanceKm)
	fmt.Fprintf(&b, "    <nodes_completed>%d</nodes_completed>\n", p.NodesCovered)
	b.WriteString("  </metadata>\n")
	b.WriteString("  <route>\n")
	for i, pt := range points {
		fmt.Fprintf(&b, "    <point idx=\"%d\" lat=\"%s\" lon=\"%s\"/>\n",
			i+1, formatCoord(pt.Lat), formatCoord(pt.Lon))
	}
	b.WriteString("  </route>\n")
	b.WriteString("</aml>\n")
	return []byte(b.String())
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

var xmlEscapes = map[rune]string{
	'&':  "&amp;",
	'<':  "&lt;",
	'>':  "&gt;",
	'"':  "&quot;",
	'\'': "&apos;",
}

func escapeXML(s string) string {
	var b strings.Builder
	for _, r := range s {
		if esc, ok := xmlEscapes[r]; ok {
			b.WriteString(esc)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
