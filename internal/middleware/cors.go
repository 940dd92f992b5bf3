package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// JoinCodeHeader carries the room access code on authenticated routes.
const JoinCodeHeader = "X-Join-Code"

// CORS allows browser clients from any origin.
var CORS func(http.Handler) http.Handler = cors.Handler(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
	AllowedHeaders:   []string{"Accept", "Content-Type", JoinCodeHeader},
	ExposedHeaders:   []string{"Retry-After"},
	AllowCredentials: false,
	MaxAge:           300,
})
