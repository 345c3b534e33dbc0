package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/purelabio/ethgate/eth"
	"github.com/purelabio/ethgate/gateway"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

const maxBodySize = 1 << 20

// Any request the gateway can't make sense of: bad JSON, bad path params.
var errBadRequest = errors.New("bad request")

/*
Adapts a function returning a payload or an error into a handler. Payloads are
flattened into the success envelope, so their JSON must be an object:

	{"status": "success", ...payload}

Errors are mapped to a status code by "statusOf" and written as

	{"status": "error", "message": "..."}
*/
func endpoint[T any](fun func(rew http.ResponseWriter, req *http.Request) (T, error)) http.HandlerFunc {
	return func(rew http.ResponseWriter, req *http.Request) {
		payload, err := fun(rew, req)
		if err != nil {
			writeError(rew, req, err)
			return
		}
		writeSuccess(rew, req, payload)
	}
}

func writeSuccess(rew http.ResponseWriter, req *http.Request, payload interface{}) {
	body, err := envelope(payload)
	if err != nil {
		hlog.FromRequest(req).Error().Err(err).Bool("fatal", true).Msg("failed to encode response")
		writeJson(rew, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJson(rew, http.StatusOK, body)
}

func writeError(rew http.ResponseWriter, req *http.Request, err error) {
	status := statusOf(err)

	var event *zerolog.Event
	if status >= http.StatusInternalServerError {
		event = hlog.FromRequest(req).Error()
	} else {
		event = hlog.FromRequest(req).Debug()
	}
	event.Err(err).Int("status", status).Msg("request failed")

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeJson(rew, status, errorBody(message))
}

func envelope(payload interface{}) (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		err = json.Unmarshal(raw, &out)
		if err != nil {
			return nil, errors.Wrapf(err, "payload of type %T is not a JSON object", payload)
		}
	}
	out["status"] = json.RawMessage(`"success"`)
	return out, nil
}

type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func errorBody(message string) errorEnvelope {
	return errorEnvelope{Status: "error", Message: message}
}

func writeJson(rew http.ResponseWriter, status int, body interface{}) {
	rew.Header().Set("Content-Type", "application/json")
	rew.WriteHeader(status)
	_ = json.NewEncoder(rew).Encode(body)
}

/*
Decodes the JSON request body. Unknown fields are ignored. Trailing data and
bodies over 1 MiB are rejected.
*/
func decodeBody(rew http.ResponseWriter, req *http.Request, out interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(rew, req.Body, maxBodySize))
	err := dec.Decode(out)
	if err != nil {
		if err == io.EOF {
			return errors.Wrap(errBadRequest, "empty request body")
		}
		return errors.Wrap(errBadRequest, err.Error())
	}
	if dec.More() {
		return errors.Wrap(errBadRequest, "unexpected data after the JSON body")
	}
	return nil
}

/*
Maps error kinds to HTTP status codes: upstream failures are 502, anything the
caller can fix is 400, the rest is 500.
*/
func statusOf(err error) int {
	switch {
	case errors.Is(err, gateway.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, errBadRequest),
		errors.Is(err, eth.ErrMalformedAmount),
		errors.Is(err, gateway.ErrInvalidInput),
		errors.Is(err, gateway.ErrInsufficientBalance),
		errors.Is(err, gateway.ErrInsufficientAllowance),
		errors.Is(err, gateway.ErrPercentageOverflow),
		errors.Is(err, gateway.ErrInvalidKey),
		errors.Is(err, gateway.ErrMalformedTx):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
