package main

import "testing"

func TestListenPort(t *testing.T) {
	tests := []struct {
		addr string
		want int
	}{
		{":8080", 8080},
		{"0.0.0.0:9000", 9000},
		{"[::1]:7000", 7000},
		{":", 80},
		{"localhost", 80},
	}
	for _, tt := range tests {
		if got := listenPort(tt.addr); got != tt.want {
			t.Errorf("listenPort(%q) = %d, want %d", tt.addr, got, tt.want)
		}
	}
}
