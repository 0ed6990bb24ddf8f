package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/priyamadhavan/gatekeeper-backend/api/responses"
	"github.com/priyamadhavan/gatekeeper-backend/internal/ingest"
	"github.com/priyamadhavan/gatekeeper-backend/internal/uploads"
	pkgerrors "github.com/priyamadhavan/gatekeeper-backend/pkg/errors"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/logger"
)

// Uploads larger than this are rejected before parsing.
const maxUploadBytes = 20 << 20

// UploadRoster ingests a spreadsheet and merges it into the gateway's roster.
func UploadRoster(svc uploads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload service unavailable"))
			return
		}

		gatewayID := chi.URLParam(r, "gatewayId")

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart request"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field is required"))
			return
		}
		defer file.Close()

		snapshot, err := ingest.Parse(header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"file_name": header.Filename,
				"snapshot":  ingest.Describe(snapshot),
			})
			logg.Info(ctx, "upload.received")
		}

		result, err := svc.Merge(r.Context(), gatewayID, snapshot, header.Filename, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// UploadHistory lists past merge batches for a gateway, newest first.
func UploadHistory(svc uploads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload service unavailable"))
			return
		}

		gatewayID := chi.URLParam(r, "gatewayId")

		history, err := svc.History(r.Context(), gatewayID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, history)
	}
}
