package sim

import "testing"

func TestSeriesEvictsOldest(t *testing.T) {
	s := NewSeries(3)
	for i := 0; i < 5; i++ {
		s.Append(Point{Time: float64(i), Value: float64(i * 10)})
	}

	if s.Len() != 3 {
		t.Fatalf("len: got %d want 3", s.Len())
	}
	pts := s.Points()
	if pts[0].Time != 2 || pts[2].Time != 4 {
		t.Errorf("expected window [2..4], got %v", pts)
	}
}

func TestSeriesValuesOrder(t *testing.T) {
	s := NewSeries(10)
	s.Append(Point{Time: 0, Value: 7})
	s.Append(Point{Time: 1, Value: 9})

	vals := s.Values()
	if len(vals) != 2 || vals[0] != 7 || vals[1] != 9 {
		t.Errorf("values: got %v", vals)
	}
}

func TestSeriesPointsIsCopy(t *testing.T) {
	s := NewSeries(4)
	s.Append(Point{Time: 0, Value: 1})

	pts := s.Points()
	pts[0].Value = 99
	if s.Points()[0].Value != 1 {
		t.Error("Points must return a copy")
	}
}

func TestParseLoop(t *testing.T) {
	cases := map[string]Loop{
		"temperature": LoopTemperature,
		"power":       LoopPower,
		"efficiency":  LoopEfficiency,
	}
	for name, want := range cases {
		got, err := ParseLoop(name)
		if err != nil {
			t.Fatalf("ParseLoop(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("ParseLoop(%q): got %s", name, got)
		}
	}
	if _, err := ParseLoop("voltage"); err == nil {
		t.Error("unknown loop name must error")
	}
}
