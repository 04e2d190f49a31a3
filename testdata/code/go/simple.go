package server

import (
	"fmt"
	"net/http"
)

const DefaultPort = 8080

type Config struct {
	Port    int
	Verbose bool
}

type Handler struct {
	*Config
	mux *http.ServeMux
}

func NewHandler(config *Config) *Handler {
	if config == nil {
		config = &Config{Port: DefaultPort}
	}
	return &Handler{Config: config}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		fmt.Fprintf(w, "ok")
	case http.MethodHead:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
	if h.Verbose && r.URL != nil {
		fmt.Println(r.URL.Path)
	}
}
