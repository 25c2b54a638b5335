package server

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// NewRouter wires the icon routes behind the request log.
func NewRouter(h *IconHandler, log *RequestLog) http.Handler {
	rt := httprouter.New()
	rt.GET("/*domain", h.Icon)
	return log.Execute(rt)
}
