package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/wayfinder/pkg/buildinfo"
	"github.com/matzehuels/wayfinder/pkg/errors"
	"github.com/matzehuels/wayfinder/pkg/graph"
	"github.com/matzehuels/wayfinder/pkg/navigator"
)

// AskRequest is the body of the ask_* endpoints. Start and Arrival are
// "<building>:<room>" references; Coords is [latitude, longitude].
type AskRequest struct {
	Start   string    `json:"start,omitempty"`
	Arrival string    `json:"arrival"`
	Coords  []float64 `json:"coords,omitempty"`
	Locale  string    `json:"locale,omitempty"`
	Refresh bool      `json:"refresh,omitempty"`
}

// RouteResponse is a navigation result with the id it was saved under.
type RouteResponse struct {
	ID string `json:"id"`
	*navigator.Result
}

// BuildingInfo describes one routable building.
type BuildingInfo struct {
	Name      string   `json:"name"`
	Floors    []int    `json:"floors"`
	Entrances []string `json:"entrances"`
	Nodes     int      `json:"nodes"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) buildings(w http.ResponseWriter, r *http.Request) {
	site := s.runner.Composer.Site()
	out := make([]BuildingInfo, 0)
	for _, name := range site.BuildingNames() {
		b, err := site.Building(name)
		if err != nil {
			writeError(w, err)
			return
		}
		out = append(out, BuildingInfo{
			Name:      name,
			Floors:    b.FloorNumbers(),
			Entrances: b.Entrances(),
			Nodes:     b.Len(),
		})
	}
	bound := site.Campus.Bound()
	writeJSON(w, http.StatusOK, map[string]any{
		"campus":   site.Campus.Name(),
		"revision": site.Revision,
		"bounds": [2]graph.LatLon{
			{Lat: bound.Min.Lat(), Lon: bound.Min.Lon()},
			{Lat: bound.Max.Lat(), Lon: bound.Max.Lon()},
		},
		"buildings": out,
	})
}

func (s *Server) askInside(w http.ResponseWriter, r *http.Request) {
	s.ask(w, r, navigator.KindInside)
}

func (s *Server) askOutside(w http.ResponseWriter, r *http.Request) {
	s.ask(w, r, navigator.KindOutside)
}

func (s *Server) askFromInside(w http.ResponseWriter, r *http.Request) {
	s.ask(w, r, "")
}

// ask answers one of the ask_* endpoints. A non-empty kind pins the query
// kind the endpoint accepts.
func (s *Server) ask(w http.ResponseWriter, r *http.Request, kind navigator.Kind) {
	var req AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	q := navigator.Query{From: req.Start, To: req.Arrival, Locale: req.Locale, Refresh: req.Refresh}
	if q.Locale == "" {
		q.Locale = s.cfg.Locale
	}
	if kind == navigator.KindOutside {
		if len(req.Coords) != 2 {
			writeError(w, errors.New(errors.ErrCodeInvalidQuery, "coords must be [latitude, longitude]"))
			return
		}
		if req.Start != "" {
			writeError(w, errors.New(errors.ErrCodeInvalidQuery, "ask_outside takes coords, not start"))
			return
		}
		q.At = &graph.LatLon{Lat: req.Coords[0], Lon: req.Coords[1]}
	} else if req.Start == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidQuery, "start is required"))
		return
	}
	if kind == navigator.KindInside {
		if err := q.ValidateAndSetDefaults(); err != nil {
			writeError(w, err)
			return
		}
		if q.Kind() != navigator.KindInside {
			writeError(w, errors.New(errors.ErrCodeInvalidQuery, "ask_inside needs start and arrival in the same building"))
			return
		}
	}

	res, err := s.runner.Execute(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := RouteResponse{Result: res}
	if resp.ID, err = s.save(r, res); err != nil {
		s.logger.Error("route not saved", "error", err)
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "could not save route"))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// save stores the result under a fresh id and returns the id.
func (s *Server) save(r *http.Request, res *navigator.Result) (string, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return "", err
	}
	return s.store.Save(r.Context(), data, s.ttl)
}

func (s *Server) getRoute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	var res navigator.Result
	if err := json.Unmarshal(data, &res); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "stored route %s is corrupt", id))
		return
	}
	writeJSON(w, http.StatusOK, RouteResponse{ID: id, Result: &res})
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidQuery, errors.ErrCodeInvalidPath,
		errors.ErrCodeUnknownNodeType:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound, errors.ErrCodeUnknownBuilding,
		errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNoRoute:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	var coded interface{ Code() errors.Code }
	if code == "" && stderrors.As(err, &coded) {
		code = coded.Code()
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := StatusFor(code)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Code: code, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
