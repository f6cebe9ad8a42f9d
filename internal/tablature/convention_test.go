// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tablature

import "testing"

func TestParseConvention(t *testing.T) {
	tests := []struct {
		input   string
		want    Convention
		wantErr bool
	}{
		{"french", French, false},
		{"FLT", French, false},
		{" Italian ", Italian, false},
		{"ilt", Italian, false},
		{"german", German, false},
		{"spanish", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseConvention(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseConvention(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseConvention(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestConventionLabels(t *testing.T) {
	tests := []struct {
		c        Convention
		abbr     string
		notation string
		expan    string
	}{
		{German, "GLT", "tab.lute.german", "German Lute Tablature"},
		{French, "FLT", "tab.lute.french", "French Lute Tablature"},
		{Italian, "ILT", "tab.lute.italian", "Italian Lute Tablature"},
	}
	for _, tt := range tests {
		if got := tt.c.Abbr(); got != tt.abbr {
			t.Errorf("%v.Abbr() = %q, want %q", tt.c, got, tt.abbr)
		}
		if got := tt.c.NotationType(); got != tt.notation {
			t.Errorf("%v.NotationType() = %q, want %q", tt.c, got, tt.notation)
		}
		if got := tt.c.Expansion(); got != tt.expan {
			t.Errorf("%v.Expansion() = %q, want %q", tt.c, got, tt.expan)
		}
	}
}

func TestIsSource(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Jud_1523-2_n1_enc_dipl_GLT.mei", true},
		{"dir/enc_ed_GLT.mei", true},
		{"enc_ed_CMN.mei", false},
		{"enc_GLT.mei.bak", false},
		{"GLT/enc_FLT.mei", false},
	}
	for _, tt := range tests {
		if got := IsSource(tt.name); got != tt.want {
			t.Errorf("IsSource(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		source string
		target Convention
		want   string
	}{
		{"/in/Jud_1523-2_n1_enc_dipl_GLT.mei", French, "Jud_1523-2_n1_enc_dipl_FLT.mei"},
		{"/in/Jud_1523-2_n1_enc_dipl_GLT.mei", Italian, "Jud_1523-2_n1_enc_dipl_ILT.mei"},
		{"GLT_piece_GLT.mei", French, "FLT_piece_FLT.mei"},
	}
	for _, tt := range tests {
		if got := OutputName(tt.source, tt.target); got != tt.want {
			t.Errorf("OutputName(%q, %v) = %q, want %q", tt.source, tt.target, got, tt.want)
		}
	}
}
