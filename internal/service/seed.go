package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/zyra-incident-service/internal/domain"
)

// seedEntry accepts both the nested geo object of the seed files and flat lat/lon.
type seedEntry struct {
	domain.RawReport `yaml:",inline"`
	Geo              *struct {
		Lat float64 `yaml:"lat"`
		Lon float64 `yaml:"lon"`
	} `yaml:"geo"`
}

// SeedResult reports how a seed file was applied.
type SeedResult struct {
	Submitted []Submission `json:"submitted"`
	Failed    int          `json:"failed"`
}

// LoadSeedFile reads a JSON or YAML list of reports.
func LoadSeedFile(path string) ([]domain.RawReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var entries []seedEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	reports := make([]domain.RawReport, len(entries))
	for i, e := range entries {
		reports[i] = e.RawReport
		if e.Geo != nil {
			reports[i].Lat = e.Geo.Lat
			reports[i].Lon = e.Geo.Lon
		}
	}
	return reports, nil
}

// Seed submits every report in the file through Report. Invalid entries are
// logged and counted; a failure to persist stops the run.
func (s *Service) Seed(ctx context.Context, path string) (SeedResult, error) {
	reports, err := LoadSeedFile(path)
	if err != nil {
		return SeedResult{}, err
	}
	res := SeedResult{Submitted: make([]Submission, 0, len(reports))}
	for i, raw := range reports {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sub, err := s.Report(ctx, raw)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				res.Failed++
				s.logger.Warn("skipping invalid seed report", "index", i, "error", err)
				continue
			}
			return res, fmt.Errorf("seed report %d: %w", i, err)
		}
		res.Submitted = append(res.Submitted, sub)
	}
	s.logger.Info("seed complete", "path", path, "submitted", len(res.Submitted), "failed", res.Failed)
	return res, nil
}
