// Package plan loads batches of planning scenarios from YAML, CSV and XLSX
// files and evaluates them.
package plan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/abtest-planner/internal/normal"
	"github.com/sells-group/abtest-planner/internal/samplesize"
)

// Entry is a sparse set of scenario inputs. Nil fields keep the value of the
// scenario the entry is applied to. An entry with Alphas or Effects set is a
// sweep. Validate tags check request shape only; value ranges are left to
// samplesize.
type Entry struct {
	Name         string   `json:"name,omitempty" yaml:"name" validate:"max=128"`
	Metric       *string  `json:"metric,omitempty" yaml:"metric" validate:"omitempty,oneof=proportion mean"`
	Baseline     *float64 `json:"baseline,omitempty" yaml:"baseline"`
	Effect       *float64 `json:"effect,omitempty" yaml:"effect"`
	EffectType   *string  `json:"effect_type,omitempty" yaml:"effect_type" validate:"omitempty,oneof=relative absolute"`
	MeanA        *float64 `json:"mean_a,omitempty" yaml:"mean_a"`
	MeanB        *float64 `json:"mean_b,omitempty" yaml:"mean_b"`
	SDA          *float64 `json:"sd_a,omitempty" yaml:"sd_a"`
	SDB          *float64 `json:"sd_b,omitempty" yaml:"sd_b"`
	Alpha        *float64 `json:"alpha,omitempty" yaml:"alpha"`
	Power        *float64 `json:"power,omitempty" yaml:"power"`
	Tails        *int     `json:"tails,omitempty" yaml:"tails" validate:"omitempty,oneof=1 2"`
	Ratio        *float64 `json:"ratio,omitempty" yaml:"ratio"`
	Variations   *int     `json:"variations,omitempty" yaml:"variations" validate:"omitempty,gte=1"`
	Bonferroni   *bool    `json:"bonferroni,omitempty" yaml:"bonferroni"`
	Dropoff      *float64 `json:"dropoff,omitempty" yaml:"dropoff"`
	DailyTraffic *float64 `json:"daily_traffic,omitempty" yaml:"daily_traffic"`

	// Comma-separated percent lists, as typed into the sweep form.
	Alphas  string `json:"alphas,omitempty" yaml:"alphas" validate:"max=512"`
	Effects string `json:"effects,omitempty" yaml:"effects" validate:"max=512"`
}

// IsSweep reports whether the entry describes a scenario sweep.
func (e Entry) IsSweep() bool {
	return strings.TrimSpace(e.Alphas) != "" || strings.TrimSpace(e.Effects) != ""
}

// Apply overlays the entry on base.
func (e Entry) Apply(base samplesize.Scenario) samplesize.Scenario {
	s := base
	if e.Name != "" {
		s.Name = e.Name
	}
	if e.Metric != nil {
		s.Metric = samplesize.Metric(*e.Metric)
	}
	if e.EffectType != nil {
		s.EffectType = samplesize.EffectType(*e.EffectType)
	}
	setFloat(&s.Baseline, e.Baseline)
	setFloat(&s.Effect, e.Effect)
	setFloat(&s.MeanA, e.MeanA)
	setFloat(&s.MeanB, e.MeanB)
	setFloat(&s.SDA, e.SDA)
	setFloat(&s.SDB, e.SDB)
	setFloat(&s.Alpha, e.Alpha)
	setFloat(&s.Power, e.Power)
	setFloat(&s.Ratio, e.Ratio)
	setFloat(&s.Dropoff, e.Dropoff)
	setFloat(&s.DailyTraffic, e.DailyTraffic)
	if e.Tails != nil {
		s.Tails = normal.Tails(*e.Tails)
	}
	if e.Variations != nil {
		s.Variations = *e.Variations
	}
	if e.Bonferroni != nil {
		s.Bonferroni = *e.Bonferroni
	}
	return s
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Row is one line of a tabular (CSV or XLSX) plan. Empty cells are unset.
type Row struct {
	Name         string `csv:"name"`
	Metric       string `csv:"metric"`
	Baseline     string `csv:"baseline"`
	Effect       string `csv:"effect"`
	EffectType   string `csv:"effect_type"`
	MeanA        string `csv:"mean_a"`
	MeanB        string `csv:"mean_b"`
	SDA          string `csv:"sd_a"`
	SDB          string `csv:"sd_b"`
	Alpha        string `csv:"alpha"`
	Power        string `csv:"power"`
	Tails        string `csv:"tails"`
	Ratio        string `csv:"ratio"`
	Variations   string `csv:"variations"`
	Bonferroni   string `csv:"bonferroni"`
	Dropoff      string `csv:"dropoff"`
	DailyTraffic string `csv:"daily_traffic"`
	Alphas       string `csv:"alphas"`
	Effects      string `csv:"effects"`
}

// Entry converts the row, reporting the first cell that does not parse.
func (r Row) Entry() (Entry, error) {
	p := &cellParser{}
	e := Entry{
		Name:         strings.TrimSpace(r.Name),
		Metric:       p.strVal(r.Metric),
		Baseline:     p.floatVal("baseline", r.Baseline),
		Effect:       p.floatVal("effect", r.Effect),
		EffectType:   p.strVal(r.EffectType),
		MeanA:        p.floatVal("mean_a", r.MeanA),
		MeanB:        p.floatVal("mean_b", r.MeanB),
		SDA:          p.floatVal("sd_a", r.SDA),
		SDB:          p.floatVal("sd_b", r.SDB),
		Alpha:        p.floatVal("alpha", r.Alpha),
		Power:        p.floatVal("power", r.Power),
		Tails:        p.intVal("tails", r.Tails),
		Ratio:        p.floatVal("ratio", r.Ratio),
		Variations:   p.intVal("variations", r.Variations),
		Bonferroni:   p.boolVal("bonferroni", r.Bonferroni),
		Dropoff:      p.floatVal("dropoff", r.Dropoff),
		DailyTraffic: p.floatVal("daily_traffic", r.DailyTraffic),
		Alphas:       r.Alphas,
		Effects:      r.Effects,
	}
	if p.err != nil {
		return Entry{}, p.err
	}
	return e, nil
}

// cellParser keeps the first parse error so a row converts in one pass.
type cellParser struct {
	err error
}

func (p *cellParser) fail(col, v string, err error) {
	if p.err == nil {
		p.err = eris.Wrapf(err, "plan: column %s: invalid value %q", col, v)
	}
}

func (p *cellParser) strVal(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	v = strings.ToLower(v)
	return &v
}

func (p *cellParser) floatVal(col, v string) *float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(col, v, err)
		return nil
	}
	return &f
}

func (p *cellParser) intVal(col, v string) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// Spreadsheets store whole numbers as floats.
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int(f)) {
			p.fail(col, v, err)
			return nil
		}
		n = int(f)
	}
	return &n
}

func (p *cellParser) boolVal(col, v string) *bool {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return nil
	}
	var b bool
	switch v {
	case "yes", "y", "on":
		b = true
	case "no", "n", "off":
		b = false
	default:
		var err error
		b, err = strconv.ParseBool(v)
		if err != nil {
			p.fail(col, v, err)
			return nil
		}
	}
	return &b
}

func defaultName(i int) string {
	return fmt.Sprintf("scenario-%d", i+1)
}
