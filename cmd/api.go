package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sells-group/abtest-planner/internal/config"
	"github.com/sells-group/abtest-planner/internal/normal"
	"github.com/sells-group/abtest-planner/internal/plan"
	"github.com/sells-group/abtest-planner/internal/samplesize"
)

const (
	maxBodyBytes = 64 << 10
	maxSweepRows = 400
)

// designRequest carries the test design of the raw formula endpoints.
// Unset fields take the configured defaults.
type designRequest struct {
	Alpha float64 `json:"alpha"`
	Power float64 `json:"power"`
	Tails int     `json:"tails" validate:"oneof=1 2"`
	Ratio float64 `json:"ratio"`
}

func (d designRequest) design() samplesize.Design {
	return samplesize.Design{Alpha: d.Alpha, Power: d.Power, Tails: normal.Tails(d.Tails), Ratio: d.Ratio}
}

type proportionsRequest struct {
	PA float64 `json:"p_a" validate:"required"`
	PB float64 `json:"p_b" validate:"required"`
	designRequest
}

type meansRequest struct {
	SDA   float64 `json:"sd_a" validate:"required"`
	SDB   float64 `json:"sd_b" validate:"required"`
	Delta float64 `json:"delta"`
	designRequest
}

type sweepResponse struct {
	Base samplesize.Scenario   `json:"base"`
	Rows []samplesize.SweepRow `json:"rows"`
}

type selfcheckResponse struct {
	Pass   bool               `json:"pass"`
	Checks []samplesize.Check `json:"checks"`
}

type errorResponse struct {
	Error string `json:"error"`
	Param string `json:"param,omitempty"`
}

// api serves the planner over HTTP. Every request starts from the configured
// plan defaults.
type api struct {
	defaults config.PlanConfig
	validate *validator.Validate
}

func newAPI(defaults config.PlanConfig) *api {
	return &api{defaults: defaults, validate: validator.New()}
}

func (a *api) baseDesign() designRequest {
	return designRequest{
		Alpha: a.defaults.Alpha,
		Power: a.defaults.Power,
		Tails: a.defaults.Tails,
		Ratio: a.defaults.Ratio,
	}
}

func (a *api) quantile(w http.ResponseWriter, r *http.Request) {
	p, ok := a.queryFloat(w, r, "p", nil, "gte=0,lte=1")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"p": p, "z": normal.Quantile(p)})
}

func (a *api) critical(w http.ResponseWriter, r *http.Request) {
	alpha, ok := a.queryFloat(w, r, "alpha", &a.defaults.Alpha, "gt=0,lt=1")
	if !ok {
		return
	}
	power, ok := a.queryFloat(w, r, "power", &a.defaults.Power, "gt=0,lt=1")
	if !ok {
		return
	}
	tails := a.defaults.Tails
	if raw := r.URL.Query().Get("tails"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !normal.Tails(n).Valid() {
			writeError(w, http.StatusBadRequest, "tails must be 1 or 2")
			return
		}
		tails = n
	}

	zAlpha, zBeta, err := samplesize.CriticalValues(alpha, power, normal.Tails(tails))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, criticalValues{
		Alpha:  alpha,
		Tails:  tails,
		Power:  power,
		ZAlpha: zAlpha,
		ZBeta:  zBeta,
	})
}

func (a *api) proportions(w http.ResponseWriter, r *http.Request) {
	req := proportionsRequest{designRequest: a.baseDesign()}
	if !a.decode(w, r, &req) {
		return
	}
	raw, err := samplesize.Proportions(samplesize.ProportionParams{PA: req.PA, PB: req.PB, Design: req.design()})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

func (a *api) means(w http.ResponseWriter, r *http.Request) {
	req := meansRequest{designRequest: a.baseDesign()}
	if !a.decode(w, r, &req) {
		return
	}
	raw, err := samplesize.Means(samplesize.MeanParams{SDA: req.SDA, SDB: req.SDB, Delta: req.Delta, Design: req.design()})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

func (a *api) scenario(w http.ResponseWriter, r *http.Request) {
	var e plan.Entry
	if !a.decode(w, r, &e) {
		return
	}
	res, err := samplesize.Evaluate(e.Apply(a.defaults.Scenario()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *api) sweep(w http.ResponseWriter, r *http.Request) {
	var e plan.Entry
	if !a.decode(w, r, &e) {
		return
	}
	base := e.Apply(a.defaults.Scenario())

	alphaList, effectList := e.Alphas, e.Effects
	if strings.TrimSpace(alphaList) == "" {
		alphaList = a.defaults.SweepAlphas
	}
	if strings.TrimSpace(effectList) == "" {
		effectList = a.defaults.SweepEffects
	}
	alphas := samplesize.ParseAlphaList(alphaList)
	effects := samplesize.ParseEffectList(effectList, samplesize.EffectsArePercent(base))
	if len(alphas)*len(effects) > maxSweepRows {
		writeError(w, http.StatusBadRequest, "sweep too large: at most "+strconv.Itoa(maxSweepRows)+" combinations")
		return
	}

	writeJSON(w, http.StatusOK, sweepResponse{
		Base: base,
		Rows: samplesize.Sweep(base, alphas, effects),
	})
}

func (a *api) selfcheck(w http.ResponseWriter, r *http.Request) {
	resp := selfcheckResponse{Pass: true, Checks: samplesize.SelfCheck()}
	for _, c := range resp.Checks {
		resp.Pass = resp.Pass && c.Pass
	}
	status := http.StatusOK
	if !resp.Pass {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, resp)
}

// decode reads a JSON body into v and validates it, writing a 400 on failure.
func (a *api) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := a.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// queryFloat parses a query parameter, falling back to def when it is absent.
// A nil def makes the parameter required.
func (a *api) queryFloat(w http.ResponseWriter, r *http.Request, name string, def *float64, rule string) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if def == nil {
			writeError(w, http.StatusBadRequest, name+" is required")
			return 0, false
		}
		return *def, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be a number")
		return 0, false
	}
	if err := a.validate.Var(v, rule); err != nil {
		writeError(w, http.StatusBadRequest, name+" out of range ("+rule+")")
		return 0, false
	}
	return v, true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Field() + " failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}

// writeDomainError maps samplesize input errors to 422.
func writeDomainError(w http.ResponseWriter, err error) {
	var de *samplesize.DomainError
	if errors.As(err, &de) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: de.Error(), Param: de.Param})
		return
	}
	zap.L().Error("api: evaluation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}
