package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

type apiRoute struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

func (s *Server) routes() []apiRoute {
	return []apiRoute{
		{
			Path:    "/curves",
			Method:  http.MethodPost,
			Handler: s.PostCurve,
		},
		{
			Path:    "/curves/{date}/rates",
			Method:  http.MethodGet,
			Handler: s.GetRates,
		},
		{
			Path:    "/curves/{date}/rate",
			Method:  http.MethodGet,
			Handler: s.GetRate,
		},
		{
			Path:    "/healthz",
			Method:  http.MethodGet,
			Handler: s.Health,
		},
	}
}

// Handler returns the router wrapped in the CORS and zstd middleware.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	for _, route := range s.routes() {
		r.HandleFunc(route.Path, route.Handler).Methods(route.Method)
	}
	return CORSMiddleware(ZstdMiddleware(r))
}
