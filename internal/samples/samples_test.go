package samples_test

import (
	"testing"

	"calconv/internal/convert"
	"calconv/internal/samples"
)

func TestAllSamplesConvert(t *testing.T) {
	t.Parallel()

	all := samples.All()
	if len(all) != 11 {
		t.Fatalf("got %d samples, want 11", len(all))
	}

	for _, sample := range all {
		t.Run(sample.Name, func(t *testing.T) {
			t.Parallel()
			result, err := convert.Convert(sample.Text, convert.Options{})
			if err != nil {
				t.Fatalf("Convert() error: %v", err)
			}
			if result == nil || result.Output == "" {
				t.Fatal("Convert() produced no output")
			}
			if result.RoundTrip == "" {
				t.Fatal("Convert() produced no round-trip output")
			}
		})
	}
}

func TestRandomReturnsABundledSample(t *testing.T) {
	t.Parallel()

	names := make(map[string]bool)
	for _, sample := range samples.All() {
		names[sample.Name] = true
	}
	for range 20 {
		if sample := samples.Random(); !names[sample.Name] {
			t.Fatalf("Random() returned unknown sample %q", sample.Name)
		}
	}
}
