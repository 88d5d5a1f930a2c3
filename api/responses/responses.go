package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	zlog "github.com/rs/zerolog/log"

	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, SuccessEnvelope{Data: data})
}

// WriteError maps err onto its public envelope and logs it. Internal
// failures never leak their message; other codes surface it.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := asTyped(err)
	meta := pkgerrors.MetadataFor(typed.Code())

	if logg != nil {
		logRejection(ctx, logg, err, meta.HTTPStatus)
	}
	writeJSON(w, meta.HTTPStatus, envelopeFor(typed, meta))
}

func asTyped(err error) *pkgerrors.Error {
	if err == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "unknown error")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
}

func envelopeFor(typed *pkgerrors.Error, meta pkgerrors.Metadata) ErrorEnvelope {
	apiErr := APIError{Code: string(typed.Code()), Message: meta.PublicMessage}
	if typed.Code() != pkgerrors.CodeInternal && typed.Message() != "" {
		apiErr.Message = typed.Message()
	}
	if meta.DetailsAllowed {
		apiErr.Details = typed.Details()
	}
	return ErrorEnvelope{Error: apiErr}
}

func logRejection(ctx context.Context, logg *logger.Logger, err error, status int) {
	if err == nil {
		err = errors.New("unknown error")
	}
	dump := pkgerrors.Dump(err)
	ctx = logg.WithFields(ctx, map[string]any{
		"error":       dump.TopMessage,
		"error_code":  dump.Code,
		"error_chain": dump.Chain,
		"status":      status,
	})
	if status >= http.StatusInternalServerError {
		logg.Error(ctx, "request.error", err)
		return
	}
	logg.Warn(ctx, "request.rejected")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// headers are already out; all that is left is to record it
		zlog.Error().Err(err).Int("status", status).Msg("failed to encode response")
	}
}
