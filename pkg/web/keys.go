package web

type contextKey string

// requestIDKey is the context key under which the request ID is stored.
const requestIDKey = contextKey("request_id")
