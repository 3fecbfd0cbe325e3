package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/abtest-planner/internal/samplesize"
)

func TestCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{30245, "30,245"},
		{4443178, "4,443,178"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Count(tt.n))
	}
}

func TestNumberAndPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "100,000", Number(100000, 0))
	assert.Equal(t, "4.4", Number(4.36215, 1))
	assert.Equal(t, "-", Number(1.0/zero(), 1))
	assert.Equal(t, "5.0%", Percent(0.05, 1))
	assert.Equal(t, "5.25%", Percent(0.0525, 2))
}

func zero() float64 { return 0 }

func TestRenderer_Scenario(t *testing.T) {
	t.Parallel()

	s := samplesize.DefaultScenario()
	s.Name = "checkout"
	s.Dropoff = 0.1
	res, err := samplesize.Evaluate(s)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(true).Scenario(&buf, res))
	out := buf.String()

	assert.Contains(t, out, "Sample size plan: checkout")
	assert.Contains(t, out, "145,405")
	assert.Contains(t, out, "436,215")
	assert.Contains(t, out, "484,686")
	assert.Contains(t, out, "With 10.0% drop-off")
	assert.Contains(t, out, "Bonferroni")
	assert.Contains(t, out, "standard")
	assert.Contains(t, out, "5.25%")
	assert.Contains(t, out, "Short test")
}

func TestRenderer_ScenarioMeans(t *testing.T) {
	t.Parallel()

	s := samplesize.DefaultScenario()
	s.Metric = samplesize.MetricMean
	s.DailyTraffic = 0
	res, err := samplesize.Evaluate(s)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(false).Scenario(&buf, res))
	out := buf.String()

	assert.Contains(t, out, "105.00")
	assert.Contains(t, out, "516")
	assert.Contains(t, out, "daily traffic")
}

func TestRenderer_Sweep(t *testing.T) {
	t.Parallel()

	base := samplesize.DefaultScenario()
	base.Baseline = 0.5
	rows := samplesize.Sweep(base, []float64{0.01, 0.05, 0.1}, []float64{0.05, 1.5})

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(true).Sweep(&buf, "Scenario results", base, rows))
	out := buf.String()

	assert.Contains(t, out, "Scenario results (6 scenarios)")
	assert.Contains(t, out, "n (Control)")
	assert.Contains(t, out, "10.0%")
	assert.Contains(t, out, "150.0%")
	assert.Contains(t, out, "invalid")
	assert.Contains(t, out, "Legend:")
	assert.Contains(t, out, "p_b")
}

func TestRenderer_SweepPlainCellsPadded(t *testing.T) {
	t.Parallel()

	base := samplesize.DefaultScenario()
	rows := samplesize.Sweep(base, []float64{0.01, 0.05, 0.1}, []float64{0.05})

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(true).Sweep(&buf, "Scenario results", base, rows))
	out := buf.String()

	// Band-styled data cells get the same one-space padding as the header.
	assert.Contains(t, out, "│ Alpha")
	assert.Contains(t, out, "│ 1.0%")
	assert.Contains(t, out, "│ 10.0%")
	assert.NotRegexp(t, `│[^ \n]`, out)
}

func TestRenderer_SweepEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(true).Sweep(&buf, "Scenario results", samplesize.DefaultScenario(), nil))
	assert.Contains(t, buf.String(), "(0 scenarios)")
	assert.Contains(t, buf.String(), "No valid scenarios")
}

func TestRenderer_Checks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(true).Checks(&buf, []samplesize.Check{
		{Name: "first", Pass: true},
		{Name: "second", Pass: false},
	}))
	assert.Contains(t, buf.String(), "PASS first")
	assert.Contains(t, buf.String(), "FAIL second")
}

func TestJSON(t *testing.T) {
	t.Parallel()

	res, err := samplesize.Evaluate(samplesize.DefaultScenario())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, res))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.EqualValues(t, 436215, decoded["total"])
	assert.Equal(t, "standard", decoded["band"])
	assert.Contains(t, decoded, "scenario")
}
