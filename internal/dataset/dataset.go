// Package dataset defines the immutable descriptor the fetch and clean stages
// share for one configured source.
package dataset

import (
	"fmt"
	"slices"
	"strings"

	"urbandata/internal/config"
	"urbandata/internal/failures"
)

// Descriptor describes one remote dataset and its bronze/silver locations.
type Descriptor struct {
	Name          string
	Kind          string
	URL           string
	Delimiter     rune
	RawPath       string
	CleanPath     string
	AggregatePath string
}

// FromConfig builds descriptors in configuration order.
func FromConfig(cfg *config.Config) []Descriptor {
	out := make([]Descriptor, 0, len(cfg.Datasets))
	for _, ds := range cfg.Datasets {
		out = append(out, Descriptor{
			Name:          ds.Name,
			Kind:          ds.Kind,
			URL:           ds.URL,
			Delimiter:     firstRune(ds.Delimiter),
			RawPath:       cfg.RawPath(ds.Name),
			CleanPath:     cfg.CleanPath(ds),
			AggregatePath: cfg.AggregatePath(ds),
		})
	}
	return out
}

// Select returns the descriptors whose names appear in names, keeping
// configuration order. An empty names list selects everything. Unknown names
// yield a configuration error listing the valid ones.
func Select(all []Descriptor, names []string) ([]Descriptor, error) {
	if len(names) == 0 {
		return all, nil
	}
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[strings.TrimSpace(name)] = struct{}{}
	}
	known := make([]string, 0, len(all))
	var out []Descriptor
	for _, d := range all {
		known = append(known, d.Name)
		if _, ok := wanted[d.Name]; ok {
			out = append(out, d)
			delete(wanted, d.Name)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for name := range wanted {
			unknown = append(unknown, name)
		}
		slices.Sort(unknown)
		return nil, failures.Wrap(failures.ErrConfiguration, "", "select datasets",
			fmt.Sprintf("unknown dataset(s) %s; known: %s", strings.Join(unknown, ", "), strings.Join(known, ", ")), nil)
	}
	return out, nil
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return ';'
}
