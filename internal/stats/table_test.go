package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Category", "Picks", "Share"}
	rows := [][]string{
		{"synthetic-filtered", "12", "75.0%"},
		{"real-filtered", "4", "25.0%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Category           Picks Share" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "synthetic-filtered    12 75.0%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "real-filtered          4 25.0%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Name", "N"}, [][]string{{"日本", "1"}, {"ab", "2"}}, map[int]bool{1: true})
	if lines[1] != "日本 1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "ab   2" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}
