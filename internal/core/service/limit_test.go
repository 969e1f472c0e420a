package service

import "testing"

func TestClampLimit(t *testing.T) {
	cases := []struct {
		name                   string
		limit, def, max, want int
	}{
		{"zero uses default", 0, 20, 100, 20},
		{"negative uses default", -5, 20, 100, 20},
		{"within bounds passes through", 50, 20, 100, 50},
		{"above max clamps", 500, 20, 100, 100},
		{"missing default falls back", 0, 0, 0, DefaultListLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClampLimit(tc.limit, tc.def, tc.max); got != tc.want {
				t.Fatalf("ClampLimit(%d, %d, %d) = %d, want %d", tc.limit, tc.def, tc.max, got, tc.want)
			}
		})
	}
}
