package textsig_test

import (
	"reflect"
	"testing"

	"clearout/internal/textsig"
)

func TestExtractIDs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "isbn with prefix",
			text: "ISBN 978-0-13-468599-1 printed on back cover",
			want: []string{"978-0-13-468599-1"},
		},
		{
			name: "fcc id",
			text: "FCC ID: ABC-12345 wireless module",
			want: []string{"ABC-12345"},
		},
		{
			name: "rn and ca tags",
			text: "RN 12345 CA 67890 made in USA",
			want: []string{"12345", "67890"},
		},
		{
			name: "model number",
			text: "Model: KSM150 stand mixer",
			want: []string{"KSM150"},
		},
		{
			name: "first match per recognizer",
			text: "RN 11111 RN 22222",
			want: []string{"11111"},
		},
		{
			name: "no identifiers",
			text: "just a plain description",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := textsig.ExtractIDs(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExtractIDs(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectHazards(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lithium battery",
			text: "Contains lithium-ion battery. Do not incinerate.",
			want: []string{"battery"},
		},
		{
			name: "aerosol implies pressurized",
			text: "Aerosol can, contents under pressure",
			want: []string{"aerosol", "pressurized"},
		},
		{
			name: "blade",
			text: "replacement razor blades",
			want: []string{"blade"},
		},
		{
			name: "chemical",
			text: "corrosive: contains muriatic acid",
			want: []string{"chemical"},
		},
		{
			name: "clean text",
			text: "ceramic mug",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := textsig.DetectHazards(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("DetectHazards(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractRN(t *testing.T) {
	got := textsig.ExtractRN("RN 12345 and rn#54321 and RN 12345 again")
	want := []string{"RN12345", "RN54321"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractRN = %v, want %v", got, want)
	}

	if got := textsig.ExtractRN("RN 123"); got != nil {
		t.Fatalf("expected short digits rejected, got %v", got)
	}
}
