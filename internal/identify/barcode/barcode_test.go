package barcode_test

import (
	"context"
	"errors"
	"testing"

	"clearout/internal/identify/barcode"
)

type stubDecoder struct {
	// hits maps rotation degrees to the code found there.
	hits     map[int]barcode.Code
	err      error
	attempts []int
}

func (s *stubDecoder) Decode(_ context.Context, _ []byte, rotation int) (barcode.Code, bool, error) {
	s.attempts = append(s.attempts, rotation)
	if s.err != nil {
		return barcode.Code{}, false, s.err
	}
	code, ok := s.hits[rotation]
	return code, ok, nil
}

func TestDetectStopsAtFirstRotationHit(t *testing.T) {
	decoder := &stubDecoder{hits: map[int]barcode.Code{
		90: {Format: "EAN_13", Text: "9780306406157"},
	}}
	d := barcode.NewDetector(decoder, nil)

	got := d.Detect(context.Background(), barcode.Request{Images: [][]byte{[]byte("img")}})
	if len(got.Codes) != 1 || got.Codes[0] != "EAN_13:9780306406157" {
		t.Fatalf("unexpected codes: %v", got.Codes)
	}
	want := []int{0, 90}
	if len(decoder.attempts) != len(want) {
		t.Fatalf("expected decode to stop after hit, attempts: %v", decoder.attempts)
	}
}

func TestDetectDeduplicatesAcrossImages(t *testing.T) {
	decoder := &stubDecoder{hits: map[int]barcode.Code{
		0: {Format: "UPC_A", Text: "012345678905"},
	}}
	d := barcode.NewDetector(decoder, nil)

	got := d.Detect(context.Background(), barcode.Request{
		Images: [][]byte{[]byte("a"), []byte("b")},
	})
	if len(got.Codes) != 1 {
		t.Fatalf("expected duplicate suppressed, got %v", got.Codes)
	}
}

func TestDetectFilenameFallback(t *testing.T) {
	d := barcode.NewDetector(barcode.NopDecoder{}, nil)

	got := d.Detect(context.Background(), barcode.Request{
		Images:            [][]byte{[]byte("img")},
		ImageNames:        []string{"book_isbn_9780306406157.jpg"},
		AllowFilenameText: true,
	})
	if len(got.Codes) != 1 || got.Codes[0] != "FILENAME:9780306406157" {
		t.Fatalf("unexpected codes: %v", got.Codes)
	}
}

func TestDetectFilenameFallbackGated(t *testing.T) {
	d := barcode.NewDetector(nil, nil)

	got := d.Detect(context.Background(), barcode.Request{
		Images:     [][]byte{[]byte("img")},
		ImageNames: []string{"book_isbn_9780306406157.jpg"},
	})
	if len(got.Codes) != 0 {
		t.Fatalf("expected no codes without filename permission, got %v", got.Codes)
	}
}

func TestDetectFilenameFallbackSkippedWhenDecoded(t *testing.T) {
	decoder := &stubDecoder{hits: map[int]barcode.Code{
		0: {Format: "QR_CODE", Text: "https://example.com"},
	}}
	d := barcode.NewDetector(decoder, nil)

	got := d.Detect(context.Background(), barcode.Request{
		Images:            [][]byte{[]byte("img")},
		ImageNames:        []string{"book_isbn_9780306406157.jpg"},
		AllowFilenameText: true,
	})
	if len(got.Codes) != 1 || got.Codes[0] != "QR_CODE:https://example.com" {
		t.Fatalf("unexpected codes: %v", got.Codes)
	}
}

func TestDetectSwallowsDecoderErrors(t *testing.T) {
	decoder := &stubDecoder{err: errors.New("lens cap on")}
	d := barcode.NewDetector(decoder, nil)

	got := d.Detect(context.Background(), barcode.Request{Images: [][]byte{[]byte("img")}})
	if len(got.Codes) != 0 {
		t.Fatalf("expected no codes, got %v", got.Codes)
	}
	if len(decoder.attempts) != 4 {
		t.Fatalf("expected all rotations tried, attempts: %v", decoder.attempts)
	}
}

func TestMapCodeToCategory(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"EAN_13:9780306406157", "Media > Books"},
		{"FILENAME:ISBN0306406152", "Media > Books"},
		{"ISBN 0-306-40615-2", "Media > Books"},
		{"UPC_A:012345678905", ""},
		{"QR_CODE:https://example.com", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := barcode.MapCodeToCategory(tt.code); got != tt.want {
			t.Errorf("MapCodeToCategory(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
