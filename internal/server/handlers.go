package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/agbru/kdeconv/internal/errors"
	"github.com/agbru/kdeconv/internal/filterconv"
	"github.com/agbru/kdeconv/internal/logging"
	"github.com/agbru/kdeconv/internal/orchestration"
)

// handleHealth responds to liveness probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"engine":    s.conv.HasEngine(),
		"timestamp": time.Now().Unix(),
	})
}

// handleConvolve decodes a ConvolveRequest, runs the convolution under the
// request timeout and returns a ConvolveResponse.
//
// Status codes: 400 for malformed or invalid input, 413 for oversized
// input, 504 when the request timeout expires and 500 otherwise.
func (s *Server) handleConvolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	req, strategy, err := s.parseConvolveRequest(w, r)
	if err != nil {
		var reqErr requestError
		if errors.As(err, &reqErr) {
			s.writeErrorResponse(w, reqErr.StatusCode, reqErr.Message)
		} else {
			s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.convolve(ctx, req, strategy)
	duration := time.Since(start)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("convolution failed", err, logging.Int("signal_len", len(req.Signal)))
		}
		s.writeErrorResponse(w, status, err.Error())
		return
	}

	s.writeJSONResponse(w, http.StatusOK, ConvolveResponse{
		Result:    result,
		FilterLen: len(req.Filter),
		SignalLen: len(req.Signal),
		Strategy:  strategy.String(),
		Duration:  duration.String(),
	})
}

// parseConvolveRequest decodes and validates the request body.
func (s *Server) parseConvolveRequest(w http.ResponseWriter, r *http.Request) (ConvolveRequest, filterconv.Strategy, error) {
	var req ConvolveRequest
	body := http.MaxBytesReader(w, r.Body, s.securityConfig.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, 0, requestError{Message: "Request body too large", StatusCode: http.StatusRequestEntityTooLarge}
		}
		if errors.Is(err, io.EOF) {
			return req, 0, requestError{Message: "Empty request body", StatusCode: http.StatusBadRequest}
		}
		return req, 0, requestError{Message: "Malformed JSON: " + err.Error(), StatusCode: http.StatusBadRequest}
	}

	if len(req.Filter) > s.securityConfig.MaxFilterLength {
		return req, 0, requestError{
			Message:    fmt.Sprintf("Filter length exceeds maximum allowed (%d)", s.securityConfig.MaxFilterLength),
			StatusCode: http.StatusRequestEntityTooLarge,
		}
	}
	if len(req.Signal) > s.securityConfig.MaxSignalLength {
		return req, 0, requestError{
			Message:    fmt.Sprintf("Signal length exceeds maximum allowed (%d)", s.securityConfig.MaxSignalLength),
			StatusCode: http.StatusRequestEntityTooLarge,
		}
	}
	strategy, err := filterconv.ParseStrategy(req.Strategy)
	if err != nil {
		return req, 0, requestError{Message: err.Error(), StatusCode: http.StatusBadRequest}
	}
	return req, strategy, nil
}

// convolve runs the request under ctx. The variant returns as soon as ctx
// expires, even though the computation itself keeps running.
func (s *Server) convolve(ctx context.Context, req ConvolveRequest, strategy filterconv.Strategy) ([]float64, error) {
	mode := filterconv.ParallelAuto
	if req.Parallel != nil {
		mode = filterconv.ParallelModeOf(*req.Parallel)
	}

	var conv orchestration.Convolver
	var err error
	if req.NonNegative {
		conv, err = s.nonNegative.Curry(req.Filter)
	} else {
		conv, err = s.conv.Curry(req.Filter)
	}
	if err != nil {
		return nil, err
	}
	return orchestration.NewVariant(conv, strategy, mode).Run(ctx, req.Signal)
}

// statusFor maps an engine error to an HTTP status.
func statusFor(err error) int {
	switch {
	case apperrors.IsArgumentError(err):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONResponse writes data as JSON with the given status.
func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", err)
	}
}

// writeErrorResponse writes a standardized error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
