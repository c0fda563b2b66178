package conf

import (
	"testing"
)

func TestValidateEnvBool(t *testing.T) {
	valid := []string{"true", "false", "1", "0", "t", "f", "TRUE", "FALSE"}
	for _, v := range valid {
		if err := validateEnvBool(v); err != nil {
			t.Errorf("validateEnvBool(%q) unexpected error: %v", v, err)
		}
	}

	invalid := []string{"yes", "no", "on", ""}
	for _, v := range invalid {
		if err := validateEnvBool(v); err == nil {
			t.Errorf("validateEnvBool(%q) expected error, got nil", v)
		}
	}
}

func TestValidateEnvURL(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"https://api.sxcat.org", false},
		{"http://localhost:8080", false},
		{"ftp://mirror.sxcat.org", true},
		{"not a url", true},
	}

	for _, tt := range tests {
		err := validateEnvURL(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateEnvURL(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestValidateEnvFlavour(t *testing.T) {
	for _, v := range []string{"live", "dr1", "dr2", "LIVE", "Dr2"} {
		if err := validateEnvFlavour(v); err != nil {
			t.Errorf("validateEnvFlavour(%q) unexpected error: %v", v, err)
		}
	}
	for _, v := range []string{"nightly", "dr3", ""} {
		if err := validateEnvFlavour(v); err == nil {
			t.Errorf("validateEnvFlavour(%q) expected error", v)
		}
	}
}

func TestValidateEnvResolver(t *testing.T) {
	for _, v := range []string{"catalogue", "sesame", "Sesame"} {
		if err := validateEnvResolver(v); err != nil {
			t.Errorf("validateEnvResolver(%q) unexpected error: %v", v, err)
		}
	}
	if err := validateEnvResolver("simbad"); err == nil {
		t.Error("validateEnvResolver(simbad) expected error")
	}
}

func TestValidateEnvCoordinates(t *testing.T) {
	if err := validateEnvLatitude("65.3"); err != nil {
		t.Errorf("valid latitude rejected: %v", err)
	}
	if err := validateEnvLatitude("95"); err == nil {
		t.Error("out-of-range latitude accepted")
	}
	if err := validateEnvLatitude("abc"); err == nil {
		t.Error("non-numeric latitude accepted")
	}

	if err := validateEnvLongitude("-140.25"); err != nil {
		t.Errorf("valid longitude rejected: %v", err)
	}
	if err := validateEnvLongitude("181"); err == nil {
		t.Error("out-of-range longitude accepted")
	}
}

func TestValidateEnvNonNegativeFloat(t *testing.T) {
	if err := validateEnvNonNegativeFloat("2.5"); err != nil {
		t.Errorf("valid float rejected: %v", err)
	}
	if err := validateEnvNonNegativeFloat("0"); err != nil {
		t.Errorf("zero rejected: %v", err)
	}
	if err := validateEnvNonNegativeFloat("-0.1"); err == nil {
		t.Error("negative value accepted")
	}
	if err := validateEnvNonNegativeFloat("x"); err == nil {
		t.Error("non-numeric value accepted")
	}
}

func TestEnvBindingsCoverKnownKeys(t *testing.T) {
	bindings := getEnvBindings()

	want := map[string]bool{
		"SXCAT_BASEURL":   false,
		"SXCAT_FLAVOUR":   false,
		"SXCAT_THRESHOLD": false,
		"SXCAT_DESTDIR":   false,
		"SXCAT_DEBUG":     false,
	}

	for _, b := range bindings {
		if _, ok := want[b.EnvVar]; ok {
			want[b.EnvVar] = true
		}
	}

	for envVar, seen := range want {
		if !seen {
			t.Errorf("expected env binding for %s", envVar)
		}
	}
}
