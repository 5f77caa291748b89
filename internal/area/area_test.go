package area

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		address string
		want    Area
	}{
		{"123 Panaji Road", NorthGoa},
		{"Near market, MAPUSA", NorthGoa},
		{"Porvorim, Bardez", NorthGoa},
		{"Pernem taluka", NorthGoa},
		{"Station Road, Margao", SouthGoa},
		{"Vasco da Gama", SouthGoa},
		{"Verna Industrial Estate", SouthGoa},
		{"Ponda", SouthGoa},
		{"Panjim office, branch at Margao", NorthGoa},
		{"Verna plant, HQ in Bicholim", NorthGoa},
		{"Mumbai", Unknown},
		{"", Unknown},
		{"   ", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			if got := Classify(tt.address); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.address, got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	for _, a := range All {
		if !a.IsValid() {
			t.Errorf("%q should be valid", a)
		}
	}
	if Area("Central Goa").IsValid() {
		t.Error("Central Goa should not be valid")
	}
	if Area("").IsValid() {
		t.Error("empty area should not be valid")
	}
}
