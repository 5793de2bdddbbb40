package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/spf13/cast"

	"github.com/meenmo/zerocurve/marketdata"
	"github.com/meenmo/zerocurve/spline"
	"github.com/meenmo/zerocurve/utils"
	"github.com/meenmo/zerocurve/zerocurve"
)

// Tenor decodes either a month count (18) or a market label ("18M", "1Y").
// Day and week labels are converted once the request's day count is known.
type Tenor struct {
	months float64
	label  string
}

func (t *Tenor) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var label string
		if err := json.Unmarshal(b, &label); err != nil {
			return err
		}
		if _, err := zerocurve.ParseTenor(label); err != nil {
			return err
		}
		*t = Tenor{label: label}
		return nil
	}
	var months float64
	if err := json.Unmarshal(b, &months); err != nil {
		return fmt.Errorf("tenor must be a number of months or a label like \"3M\": %w", err)
	}
	*t = Tenor{months: months}
	return nil
}

// Months returns the tenor in months, reading D and W labels on a year of
// daysPerYear days.
func (t Tenor) Months(daysPerYear float64) (float64, error) {
	if t.label == "" {
		return t.months, nil
	}
	return zerocurve.ParseTenorBasis(t.label, daysPerYear)
}

type observationJSON struct {
	Tenor Tenor   `json:"tenor"`
	Yield float64 `json:"yield"`
}

// CurveRequest is the body of POST /curves. Zero fields fall back to the
// server configuration.
type CurveRequest struct {
	Observations  []observationJSON `json:"observations"`
	HorizonDays   int               `json:"horizon_days"`
	DaysPerYear   float64           `json:"days_per_year"`
	Boundary      string            `json:"boundary"`
	Extrapolation string            `json:"extrapolation"`
}

type CurveResponse struct {
	SnapshotDate  string             `json:"snapshot_date,omitempty"`
	Boundary      string             `json:"boundary"`
	Extrapolation string             `json:"extrapolation"`
	Samples       []zerocurve.Sample `json:"samples"`
}

type RateResponse struct {
	SnapshotDate string  `json:"snapshot_date"`
	Tenor        float64 `json:"tenor"`
	Label        string  `json:"label"`
	Rate         float64 `json:"rate"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// PostCurve builds a curve from the posted observations and returns its
// daily samples.
func (s *Server) PostCurve(w http.ResponseWriter, r *http.Request) {
	var req CurveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", MaxBodyBytes))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.Observations) > MaxObservations {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d observations are accepted, got %d", MaxObservations, len(req.Observations)))
		return
	}

	opts, err := s.requestOptions(req.Boundary, req.Extrapolation)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	grid := s.cfg.Grid()
	if req.HorizonDays != 0 {
		grid.Days = req.HorizonDays
	}
	if req.DaysPerYear != 0 {
		grid.DaysPerYear = req.DaysPerYear
	}
	if grid.Days > MaxHorizonDays {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("horizon_days must not exceed %d", MaxHorizonDays))
		return
	}

	obs := make([]zerocurve.Observation, len(req.Observations))
	for i, o := range req.Observations {
		tenor, err := o.Tenor.Months(grid.DaysPerYear)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		obs[i] = zerocurve.Observation{Tenor: tenor, Yield: o.Yield}
	}

	crv, err := zerocurve.ConstructWith(obs, opts)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	samples, err := grid.Resample(crv)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CurveResponse{
		Boundary:      crv.Boundary().String(),
		Extrapolation: crv.Extrapolation().String(),
		Samples:       samples,
	})
}

// GetRates returns the daily samples of a stored snapshot.
// Query: horizon (days, optional).
func (s *Server) GetRates(w http.ResponseWriter, r *http.Request) {
	date, err := utils.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	grid := s.cfg.Grid()
	if h := strings.TrimSpace(r.URL.Query().Get("horizon")); h != "" {
		n, err := cast.ToIntE(h)
		if err != nil || n < 1 || n > MaxHorizonDays {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("horizon must be an integer in [1, %d]", MaxHorizonDays))
			return
		}
		grid.Days = n
	}

	crv, err := s.snapshotCurve(r.Context(), date)
	if err != nil {
		s.writeSourceFailure(w, err)
		return
	}
	samples, err := grid.Resample(crv)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CurveResponse{
		SnapshotDate:  date.Format(utils.DateLayout),
		Boundary:      crv.Boundary().String(),
		Extrapolation: crv.Extrapolation().String(),
		Samples:       samples,
	})
}

// GetRate evaluates a stored snapshot at one tenor.
// Query: tenor (months or a label such as "18M"; D and W labels follow the
// configured day count).
func (s *Server) GetRate(w http.ResponseWriter, r *http.Request) {
	date, err := utils.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("tenor"))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing query param tenor")
		return
	}
	tenor, err := zerocurve.ParseTenorBasis(raw, s.cfg.DaysPerYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	crv, err := s.snapshotCurve(r.Context(), date)
	if err != nil {
		s.writeSourceFailure(w, err)
		return
	}
	rate, err := crv.Evaluate(tenor)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RateResponse{
		SnapshotDate: date.Format(utils.DateLayout),
		Tenor:        tenor,
		Label:        zerocurve.FormatTenor(tenor),
		Rate:         rate,
	})
}

func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) requestOptions(boundary, extrapolation string) (zerocurve.Options, error) {
	if boundary == "" {
		boundary = s.cfg.Boundary
	}
	if extrapolation == "" {
		extrapolation = s.cfg.Extrapolation
	}
	bc, err := spline.ParseBoundary(boundary)
	if err != nil {
		return zerocurve.Options{}, err
	}
	ex, err := spline.ParseExtrapolation(extrapolation)
	if err != nil {
		return zerocurve.Options{}, err
	}
	return zerocurve.Options{Boundary: bc, Extrapolation: ex}, nil
}

// writeFailure maps err onto a status code.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, zerocurve.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, marketdata.ErrNoObservations):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeSourceFailure is writeFailure for curves built from stored snapshots:
// unusable stored rows are not the client's fault.
func (s *Server) writeSourceFailure(w http.ResponseWriter, err error) {
	if errors.Is(err, zerocurve.ErrInvalidInput) {
		s.logger.Warn("stored snapshot unusable", "err", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.writeFailure(w, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
