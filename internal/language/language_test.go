package language

import (
	"testing"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// 2-letter codes pass through
		{"en", "en"},
		{"EN", "en"},
		{"es", "es"},
		// 3-letter codes convert
		{"eng", "en"},
		{"spa", "es"},
		{"fra", "fr"},
		{"fre", "fr"},
		{"deu", "de"},
		{"ger", "de"},
		{"ita", "it"},
		{"por", "pt"},
		{"jpn", "ja"},
		{"kor", "ko"},
		{"zho", "zh"},
		{"chi", "zh"},
		{"rus", "ru"},
		{"ara", "ar"},
		{"hin", "hi"},
		{"nld", "nl"},
		{"dut", "nl"},
		{"pol", "pl"},
		{"swe", "sv"},
		{"dan", "da"},
		{"nor", "no"},
		{"fin", "fi"},
		// Word forms
		{"english", "en"},
		{"French", "fr"},
		{"GERMAN", "de"},
		{"chinese", "zh"},
		// Unknown 2-letter passes through
		{"xy", "xy"},
		// Unknown 3-letter returns empty
		{"xyz", ""},
		// Empty
		{"", ""},
		{" ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ToISO2(tt.input)
			if result != tt.expected {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestToISO3(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "eng"},
		{"es", "spa"},
		{"fr", "fra"},
		{"de", "deu"},
		{"zh", "zho"},
		{"eng", "eng"},
		{"spa", "spa"},
		{"xyz", "xyz"}, // unknown 3-letter passes through
		{"xy", "und"},  // unknown 2-letter becomes undefined
		{"", "und"},    // empty
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ToISO3(tt.input)
			if result != tt.expected {
				t.Errorf("ToISO3(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "English"},
		{"eng", "English"},
		{"es", "Spanish"},
		{"spa", "Spanish"},
		{"fr", "French"},
		{"fre", "French"},
		{"fra", "French"},
		{"de", "German"},
		{"deu", "German"},
		{"ger", "German"},
		{"ja", "Japanese"},
		{"ko", "Korean"},
		{"zh", "Chinese"},
		{"chi", "Chinese"},
		{"zho", "Chinese"},
		{"nl", "Dutch"},
		{"dut", "Dutch"},
		{"nld", "Dutch"},
		{"", "Unknown"},
		{"xyz", "XYZ"},
		{"english", "English"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := DisplayName(tt.input)
			if result != tt.expected {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestBase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"fr", "fr"},
		{"fr-FR", "fr"},
		{"fr_CA", "fr"},
		{"FRA", "fr"},
		{"french", "fr"},
		{"en-US", "en"},
		{"pt-BR", "pt"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Base(tt.input); got != tt.expected {
				t.Errorf("Base(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	if !Matches("fr-CA", "fr") {
		t.Fatal("expected regional French to match fr")
	}
	if Matches("en", "fr") {
		t.Fatal("expected English not to match fr")
	}
	if Matches("", "") {
		t.Fatal("expected empty tags not to match")
	}
}

func TestTesseractCode(t *testing.T) {
	tests := map[string]string{
		"en":      "eng",
		"fr":      "fra",
		"de-DE":   "deu",
		"zh":      "chi_sim",
		"":        "eng",
		"klingon": "eng",
	}
	for input, want := range tests {
		if got := TesseractCode(input); got != want {
			t.Errorf("TesseractCode(%q) = %q, want %q", input, got, want)
		}
	}
}
