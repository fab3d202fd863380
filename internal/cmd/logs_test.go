package cmd

import "testing"

func TestValidateLogTail(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"100", false},
		{"all", false},
		{"0", false},
		{"-5", true},
		{"lots", true},
		{"200000", true},
	}

	for _, tt := range tests {
		err := validateLogTail(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateLogTail(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateLogSince(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"2h", false},
		{"1h30m", false},
		{"2024-01-15", false},
		{"2024-01-15T10:30:00", false},
		{"yesterday", true},
		{"2h; reboot", true},
	}

	for _, tt := range tests {
		err := validateLogSince(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateLogSince(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
