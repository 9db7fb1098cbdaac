// Package respond provides small helpers for writing JSON responses.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/wb-go/wbf/zlog"
)

type successResponse struct {
	Data interface{} `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// JSON writes an arbitrary payload with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

// OK writes a 200 response with the payload wrapped in a data envelope.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, successResponse{Data: data})
}

// Created writes a 201 response with the payload wrapped in a data envelope.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, successResponse{Data: data})
}

// Fail writes an error response with the given status code.
func Fail(w http.ResponseWriter, status int, err error) {
	JSON(w, status, errorResponse{Error: err.Error()})
}
