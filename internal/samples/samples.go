// Package samples bundles the example documents offered by the "random
// sample" action: three iCalendar, three vCard, three JSCalendar and two
// JSContact files.
package samples

import (
	"embed"
	"math/rand"
)

//go:embed *.ics *.vcf *.json
var files embed.FS

// Sample is one bundled document.
type Sample struct {
	Name string
	Text string
}

// All returns every bundled sample in stable (name) order.
func All() []Sample {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	samples := make([]Sample, 0, len(entries))
	for _, entry := range entries {
		data, err := files.ReadFile(entry.Name())
		if err != nil {
			continue
		}
		samples = append(samples, Sample{Name: entry.Name(), Text: string(data)})
	}
	return samples
}

// Random picks one bundled sample.
func Random() Sample {
	all := All()
	return all[rand.Intn(len(all))]
}
