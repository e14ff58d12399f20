package endpoints

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anrid/kbguard/internal/core"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Handler is a custom endpoint handler: it returns the payload, the
// response status code and an error that is rendered verbatim, so
// handlers must keep denial messages uniform
type Handler func(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error)

// Endpoint adapts a Handler to net/http, owning response encoding and
// access logging
type Endpoint struct {
	core    *core.Core
	name    string
	handler Handler
}

// Response is the uniform envelope of every API response
type Response struct {
	RequestID     uuid.UUID     `json:"request_id"`
	Result        interface{}   `json:"result,omitempty"`
	Error         string        `json:"error,omitempty"`
	ExecutionTime time.Duration `json:"exec_time"`
}

// NewEndpoint initializes a named endpoint over a given handler
func NewEndpoint(c *core.Core, h Handler, name string) (e Endpoint) {
	if c == nil {
		panic(core.ErrNilCore)
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		panic(errors.New("empty endpoint name"))
	}

	if h == nil {
		panic(errors.Errorf("endpoint %s: nil handler", name))
	}

	return Endpoint{
		core:    c,
		name:    name,
		handler: h,
	}
}

func (e Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New()

	start := time.Now()

	result, code, err := e.handler(r.Context(), e.core, w, r)

	if code == 0 {
		code = http.StatusInternalServerError
	}

	response := Response{
		RequestID:     requestID,
		Result:        result,
		ExecutionTime: time.Since(start),
	}

	if err != nil {
		response.Error = err.Error()
		response.Result = nil
	}

	payload, merr := json.Marshal(response)
	if merr != nil {
		http.Error(
			w,
			errors.Wrap(merr, "failed to marshal server response").Error(),
			http.StatusInternalServerError,
		)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(code)
	w.Write(payload)

	e.core.Logger().Info(
		"handled request",
		zap.String("endpoint", e.name),
		zap.String("request_id", requestID.String()),
		zap.Int("code", code),
		zap.Duration("exec_time", time.Since(start)),
		zap.Error(err),
	)
}
