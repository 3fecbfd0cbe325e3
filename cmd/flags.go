package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"

	"github.com/sells-group/abtest-planner/internal/plan"
	"github.com/sells-group/abtest-planner/internal/report"
	"github.com/sells-group/abtest-planner/internal/samplesize"
)

// scenarioFlags are the planning inputs shared by calc and sweep. Only flags
// the user sets override the configured defaults.
type scenarioFlags struct {
	name         string
	metric       string
	effectType   string
	baseline     float64
	effect       float64
	meanA        float64
	meanB        float64
	sdA          float64
	sdB          float64
	alpha        float64
	power        float64
	tails        int
	ratio        float64
	variations   int
	bonferroni   bool
	dropoff      float64
	dailyTraffic float64
}

func (f *scenarioFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "scenario name")
	fs.StringVar(&f.metric, "metric", "", "metric type: proportion or mean (default from config)")
	fs.StringVar(&f.effectType, "effect-type", "", "MDE type: relative or absolute (default from config)")
	fs.Float64Var(&f.baseline, "baseline", 0, "control conversion rate, e.g. 0.05")
	fs.Float64Var(&f.effect, "effect", 0, "minimum detectable effect as a fraction, e.g. 0.05")
	fs.Float64Var(&f.meanA, "mean-a", 0, "control mean")
	fs.Float64Var(&f.meanB, "mean-b", 0, "variation mean")
	fs.Float64Var(&f.sdA, "sd-a", 0, "control standard deviation")
	fs.Float64Var(&f.sdB, "sd-b", 0, "variation standard deviation")
	fs.Float64Var(&f.alpha, "alpha", 0, "significance level, e.g. 0.05")
	fs.Float64Var(&f.power, "power", 0, "statistical power, e.g. 0.8")
	fs.IntVar(&f.tails, "tails", 0, "1 or 2 tailed test")
	fs.Float64Var(&f.ratio, "ratio", 0, "allocation ratio variation:control")
	fs.IntVar(&f.variations, "variations", 0, "number of variations tested against control")
	fs.BoolVar(&f.bonferroni, "bonferroni", false, "apply Bonferroni correction across variations")
	fs.Float64Var(&f.dropoff, "dropoff", 0, "expected drop-off rate in [0,1)")
	fs.Float64Var(&f.dailyTraffic, "traffic", 0, "average daily traffic")
}

// entry collects the flags the user actually set.
func (f *scenarioFlags) entry(fs *pflag.FlagSet) plan.Entry {
	e := plan.Entry{Name: f.name}
	str := func(name string, v *string) *string {
		if fs.Changed(name) {
			return v
		}
		return nil
	}
	num := func(name string, v *float64) *float64 {
		if fs.Changed(name) {
			return v
		}
		return nil
	}
	integer := func(name string, v *int) *int {
		if fs.Changed(name) {
			return v
		}
		return nil
	}

	e.Metric = str("metric", &f.metric)
	e.EffectType = str("effect-type", &f.effectType)
	e.Baseline = num("baseline", &f.baseline)
	e.Effect = num("effect", &f.effect)
	e.MeanA = num("mean-a", &f.meanA)
	e.MeanB = num("mean-b", &f.meanB)
	e.SDA = num("sd-a", &f.sdA)
	e.SDB = num("sd-b", &f.sdB)
	e.Alpha = num("alpha", &f.alpha)
	e.Power = num("power", &f.power)
	e.Tails = integer("tails", &f.tails)
	e.Ratio = num("ratio", &f.ratio)
	e.Variations = integer("variations", &f.variations)
	e.Dropoff = num("dropoff", &f.dropoff)
	e.DailyTraffic = num("traffic", &f.dailyTraffic)
	if fs.Changed("bonferroni") {
		e.Bonferroni = &f.bonferroni
	}
	return e
}

// scenario returns the configured defaults overridden by set flags.
func (f *scenarioFlags) scenario(fs *pflag.FlagSet) samplesize.Scenario {
	return f.entry(fs).Apply(cfg.Plan.Scenario())
}

// outputFlags select the output format.
type outputFlags struct {
	format string
	plain  bool
}

func (o *outputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.format, "format", "table", "output format: table or json")
	fs.BoolVar(&o.plain, "plain", false, "disable colored output")
}

func (o *outputFlags) validate() error {
	switch o.format {
	case "table", "json":
		return nil
	default:
		return eris.Errorf("unknown output format %q (want table or json)", o.format)
	}
}

func (o *outputFlags) json() bool {
	return o.format == "json"
}

func (o *outputFlags) renderer(w io.Writer) *report.Renderer {
	plain := o.plain
	if f, ok := w.(*os.File); ok && !isatty.IsTerminal(f.Fd()) {
		plain = true
	}
	return report.NewRenderer(plain)
}
