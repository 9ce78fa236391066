package usage

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goodtune/equtil/internal/equipment"
)

func TestWriteText(t *testing.T) {
	results := []CategoryUsage{
		{elliptical, []Usage{{1, 82}, {2, 23}}},
		{treadmill, []Usage{{1, 53}}},
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, results, false); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	want := "ELLIPTICAL\n" +
		"\t1 machines:\t82\n" +
		"\t2 machines:\t23\n" +
		"TREADMILL\n" +
		"\t1 machines:\t53\n"
	if buf.String() != want {
		t.Errorf("Expected:\n%q\ngot:\n%q", want, buf.String())
	}
}

func TestWriteText_Colorized(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, []CategoryUsage{{treadmill, []Usage{{1, 10}}}}, true); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("Expected ANSI escape in colorized output, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "\t1 machines:\t10\n") {
		t.Errorf("Expected usage row in output, got %q", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, []CategoryUsage{{treadmill, []Usage{{1, 10}}}}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded []struct {
		Category string `json:"category"`
		Usages   []struct {
			Machines int `json:"machines"`
			Minutes  int `json:"minutes"`
		} `json:"usages"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Category != "TREADMILL" {
		t.Fatalf("Unexpected decoded output: %+v", decoded)
	}
	if decoded[0].Usages[0].Machines != 1 || decoded[0].Usages[0].Minutes != 10 {
		t.Errorf("Unexpected usage row: %+v", decoded[0].Usages[0])
	}

	buf.Reset()
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON(nil) failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("Expected [] for nil results, got %q", buf.String())
	}
}

func TestWriteJSON_EmptyUsages(t *testing.T) {
	tests := []struct {
		name    string
		results func(t *testing.T) []CategoryUsage
	}{
		{
			name: "sub-minute session",
			results: func(t *testing.T) []CategoryUsage {
				got, err := Analyze([]equipment.Session{
					session(t, "Treadmill 1", treadmill, "08:40:10", "08:40:50"),
				})
				if err != nil {
					t.Fatalf("Analyze() failed: %v", err)
				}
				return got
			},
		},
		{
			name: "nil usages",
			results: func(t *testing.T) []CategoryUsage {
				return []CategoryUsage{{Category: treadmill}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteJSON(&buf, tt.results(t)); err != nil {
				t.Fatalf("WriteJSON failed: %v", err)
			}
			if !strings.Contains(buf.String(), `"usages": []`) {
				t.Errorf("Expected empty usages list, got %s", buf.String())
			}
			if strings.Contains(buf.String(), "null") {
				t.Errorf("Expected no null in output, got %s", buf.String())
			}
		})
	}
}
