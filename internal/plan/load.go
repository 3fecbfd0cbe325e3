package plan

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/abtest-planner/internal/samplesize"
)

// Item is one unit of work in a plan: a single scenario, or a sweep over
// Alphas x Effects around Scenario.
type Item struct {
	Name     string
	Scenario samplesize.Scenario
	Sweep    bool
	Alphas   []float64
	Effects  []float64
}

// Plan is an ordered list of items loaded from one file.
type Plan struct {
	Source string
	Items  []Item
}

// File is the YAML plan layout. Defaults apply to every scenario.
type File struct {
	Defaults  Entry   `yaml:"defaults"`
	Scenarios []Entry `yaml:"scenarios"`
}

// Options configures plan loading.
type Options struct {
	SheetIndex int    // XLSX only; default 0
	SheetName  string // XLSX only; overrides SheetIndex
}

// Load reads a plan file, choosing the format from its extension
// (.yaml/.yml, .csv or .xlsx). base supplies every input an entry leaves
// unset.
func Load(path string, base samplesize.Scenario, opts Options) (*Plan, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path, base)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "plan: open %s", path)
		}
		defer f.Close()
		p, err := LoadCSV(f, base)
		if err != nil {
			return nil, err
		}
		p.Source = path
		return p, nil
	case ".xlsx":
		return LoadXLSX(path, base, opts)
	default:
		return nil, eris.Errorf("plan: unsupported file type %q", filepath.Ext(path))
	}
}

// LoadYAML reads a YAML plan file.
func LoadYAML(path string, base samplesize.Scenario) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "plan: read %s", path)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "plan: parse yaml")
	}

	p := build(f.Defaults.Apply(base), f.Scenarios)
	p.Source = path
	return p, nil
}

// LoadCSV reads a CSV plan with a header row. Header names are matched
// case-insensitively, with spaces treated as underscores.
func LoadCSV(r io.Reader, base samplesize.Scenario) (*Plan, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	entries, err := decodeRows(cr)
	if err != nil {
		return nil, err
	}
	return build(base, entries), nil
}

// LoadXLSX reads a plan from a worksheet whose first row is the header.
func LoadXLSX(path string, base samplesize.Scenario, opts Options) (*Plan, error) {
	rows, err := readSheet(path, opts)
	if err != nil {
		return nil, err
	}

	entries, err := decodeRows(&sheetReader{rows: rows})
	if err != nil {
		return nil, err
	}

	p := build(base, entries)
	p.Source = path
	return p, nil
}

func decodeRows(r csvutil.Reader) ([]Entry, error) {
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "plan: read header")
	}
	for i, h := range header {
		header[i] = normalizeHeader(h)
	}

	dec, err := csvutil.NewDecoder(r, header...)
	if err != nil {
		return nil, eris.Wrap(err, "plan: init decoder")
	}

	var entries []Entry
	for line := 2; ; line++ {
		var row Row
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrapf(err, "plan: decode row %d", line)
		}

		e, err := row.Entry()
		if err != nil {
			return nil, eris.Wrapf(err, "plan: row %d", line)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

func build(base samplesize.Scenario, entries []Entry) *Plan {
	p := &Plan{Items: make([]Item, 0, len(entries))}
	for i, e := range entries {
		s := e.Apply(base)
		if e.Name == "" {
			s.Name = defaultName(i)
		}

		item := Item{Name: s.Name, Scenario: s, Sweep: e.IsSweep()}
		if item.Sweep {
			item.Alphas = []float64{s.Alpha}
			if strings.TrimSpace(e.Alphas) != "" {
				item.Alphas = samplesize.ParseAlphaList(e.Alphas)
			}
			item.Effects = []float64{s.Effect}
			if strings.TrimSpace(e.Effects) != "" {
				item.Effects = samplesize.ParseEffectList(e.Effects, samplesize.EffectsArePercent(s))
			}
		}
		p.Items = append(p.Items, item)
	}
	return p
}
