package knowledge

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// Seed is the bundled starter knowledge set.
type Seed struct {
	Vitamins []*Vitamin `yaml:"vitamins"`
	Plants   []*Plant   `yaml:"plants"`
}

// LoadSeed decodes the bundled seed set. Every record is marked as local,
// high-confidence data.
func LoadSeed() (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(seedYAML, &s); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for _, v := range s.Vitamins {
		v.Source, v.Confidence = SourceLocal, ConfidenceHigh
	}
	for _, p := range s.Plants {
		p.Source, p.Confidence = SourceLocal, ConfidenceHigh
	}
	return &s, nil
}

// SeedReport counts what ApplySeed changed.
type SeedReport struct {
	Inserted int
	Updated  int
}

// ApplySeed upserts every seed record. Existing data is only gap-filled, so
// running it repeatedly is harmless.
func (s *Store) ApplySeed(ctx context.Context, seed *Seed) (SeedReport, error) {
	var rep SeedReport
	count := func(r UpsertResult) {
		switch r {
		case Inserted:
			rep.Inserted++
		case Updated:
			rep.Updated++
		}
	}
	for _, v := range seed.Vitamins {
		r, err := s.Vitamins.Upsert(ctx, v)
		if err != nil {
			return rep, fmt.Errorf("seed vitamin %q: %w", v.Name, err)
		}
		count(r)
	}
	for _, p := range seed.Plants {
		r, err := s.Plants.Upsert(ctx, p)
		if err != nil {
			return rep, fmt.Errorf("seed plant %q: %w", p.Name, err)
		}
		count(r)
	}
	s.logger.InfoContext(ctx, "Seed applied", "inserted", rep.Inserted, "updated", rep.Updated)
	return rep, nil
}
