package ingest

import "testing"

func TestParseManualCSVParsesSegments(t *testing.T) {
	data := []byte("Oak Ave,1.0,2.0,1.0,2.001\nPine Rd,1.0,2.001,1.001,2.002\n")
	segments, err := ParseManualCSV(data)
	if err != nil {
		t.Fatalf("ParseManualCSV: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Name != "Oak Ave" {
		t.Fatalf("expected name %q, got %q", "Oak Ave", segments[0].Name)
	}
	if segments[0].Source != SourceManual {
		t.Fatalf("expected SourceManual, got %v", segments[0].Source)
	}
	if len(segments[0].Path) != 2 {
		t.Fatalf("expected 2-point path, got %d", len(segments[0].Path))
	}
}

func TestParseManualCSVSharedEndpointsGetSameNodeID(t *testing.T) {
	data := []byte("Oak Ave,1.0,2.0,1.0,2.001\nPine Rd,1.0,2.001,1.001,2.002\n")
	segments, err := ParseManualCSV(data)
	if err != nil {
		t.Fatalf("ParseManualCSV: %v", err)
	}
	if segments[0].EndNodeID != segments[1].StartNodeID {
		t.Fatalf("expected shared endpoint node ids, got %q and %q", segments[0].EndNodeID, segments[1].StartNodeID)
	}
}

func TestParseManualCSVRejectsOddCoordinateCount(t *testing.T) {
	data := []byte("Oak Ave,1.0,2.0,1.0\n")
	if _, err := ParseManualCSV(data); err == nil {
		t.Fatalf("expected error for odd coordinate count")
	}
}

func TestParseManualCSVRejectsBadFloat(t *testing.T) {
	data := []byte("Oak Ave,not-a-number,2.0\n")
	if _, err := ParseManualCSV(data); err == nil {
		t.Fatalf("expected error for unparseable latitude")
	}
}

func TestParseManualCSVSkipsSinglePointRows(t *testing.T) {
	data := []byte("Oak Ave,1.0,2.0\n")
	segments, err := ParseManualCSV(data)
	if err != nil {
		t.Fatalf("ParseManualCSV: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("expected single-point row to be skipped, got %d segments", len(segments))
	}
}
