package handlers

import (
	"io"
	"net/http"
)

type RootHandler struct {
	greeting string
}

func NewRootHandler(greeting string) *RootHandler {
	return &RootHandler{greeting: greeting}
}

func (h *RootHandler) Greeting(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, h.greeting)
}

func (h *RootHandler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "pong\n")
}

func (h *RootHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
