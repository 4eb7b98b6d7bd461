package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestReportValid(t *testing.T) {
	r := NewReport("veh1", State{Position: Position{X: 1, Y: 2, Timestamp: 3}, Heading: 0.5, Speed: -2})
	if !r.Valid() {
		t.Fatalf("expected report to be valid")
	}
	if r.Speed != -2 || r.Timestamp != 3 {
		t.Fatalf("unexpected report %+v", r)
	}
}

func TestReportInvalid(t *testing.T) {
	if (Report{X: 1}).Valid() {
		t.Fatalf("report without id must be invalid")
	}
	if (Report{ID: "a", X: math.NaN()}).Valid() {
		t.Fatalf("NaN coordinate must be invalid")
	}
}

func TestReportWireNames(t *testing.T) {
	data, err := json.Marshal(Report{ID: "a", X: 1, Y: 2, Timestamp: 3, Speed: 4, Heading: 5})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]float64
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	m = map[string]float64{}
	for k, v := range raw {
		if f, ok := v.(float64); ok {
			m[k] = f
		}
	}
	if m["x"] != 1 || m["y"] != 2 || m["timestamp"] != 3 || m["speed"] != 4 || m["heading"] != 5 {
		t.Fatalf("unexpected wire format %s", data)
	}
	if raw["id"] != "a" {
		t.Fatalf("missing id in %s", data)
	}
}

func TestSetHeadingCommand(t *testing.T) {
	cmd := SetHeading(math.Pi)
	if cmd.Method != MethodSetHeading {
		t.Fatalf("unexpected method %s", cmd.Method)
	}
	var p HeadingParams
	if err := json.Unmarshal(cmd.Params, &p); err != nil {
		t.Fatal(err)
	}
	if p.Heading == nil || *p.Heading != math.Pi {
		t.Fatalf("unexpected params %s", cmd.Params)
	}
}

func TestNewCommandWithoutParams(t *testing.T) {
	cmd, err := NewCommand(MethodGetPosition, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Params != nil {
		t.Fatalf("expected no params got %s", cmd.Params)
	}
}

func TestFloatAcceptsNumericStrings(t *testing.T) {
	cases := map[string]float64{
		`12`:       12,
		`-1.5`:     -1.5,
		`"12"`:     12,
		`" 0.25 "`: 0.25,
		`"1e2"`:    100,
	}
	for in, want := range cases {
		var f Float
		if err := json.Unmarshal([]byte(in), &f); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if float64(f) != want {
			t.Fatalf("%s: got %v want %v", in, f, want)
		}
	}
	for _, in := range []string{`"north"`, `""`, `"NaN"`, `"Inf"`, `true`, `{}`} {
		var f Float
		if err := json.Unmarshal([]byte(in), &f); err == nil {
			t.Fatalf("%s: expected error", in)
		}
	}
}
