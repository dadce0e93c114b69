// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Running a Lightning node", "running-a-lightning-node"},
		{"Bitcoin: sound money!", "bitcoin-sound-money"},
		{"  spaces   everywhere  ", "spaces-everywhere"},
		{"self-custody", "self-custody"},
		{"UTXO management 101", "utxo-management-101"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Generate(tt.in); got != tt.want {
			t.Errorf("Generate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
