package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/service/recognizer"
	"github.com/facepay-lab/facepay/pkg/utils/errutil"
	"github.com/facepay-lab/facepay/pkg/utils/logging"
	"github.com/facepay-lab/facepay/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Default().Warn("failed to write response", "error", err)
	}
}

// extractionStatus maps recognizer failures onto client-facing responses.
// Anything else is an internal error.
func extractionStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, recognizer.ErrImageDecodeFailed):
		return http.StatusBadRequest, "could not decode image", true
	case errors.Is(err, recognizer.ErrNoFaceDetected):
		return http.StatusUnprocessableEntity, "no face detected in image", true
	case errors.Is(err, recognizer.ErrMultipleFacesDetected):
		return http.StatusUnprocessableEntity, "multiple faces detected", true
	case errors.Is(err, recognizer.ErrLowConfidenceDetection):
		return http.StatusUnprocessableEntity, "face detection confidence too low", true
	case errors.Is(err, recognizer.ErrNoUsableSamples):
		return http.StatusUnprocessableEntity, "no usable face samples", true
	default:
		return 0, "", false
	}
}

func (s *Server) readPart(ctx context.Context, file multipart.File) ([]byte, error) {
	defer safe.Close(ctx, file)
	data, err := io.ReadAll(io.LimitReader(file, s.maxImageBytes+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read uploaded image")
	}
	if int64(len(data)) > s.maxImageBytes {
		return nil, goerr.New("uploaded image too large", goerr.V("limit_bytes", s.maxImageBytes))
	}
	return data, nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(s.maxImageBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false, "message": "expected multipart form",
		})
		return
	}

	accountID := types.AccountID(r.FormValue("account_id"))
	displayName := r.FormValue("display_name")

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false, "message": "at least one image is required",
		})
		return
	}
	if len(files) > s.maxRegisterImages {
		files = files[:s.maxRegisterImages]
	}

	images := make([][]byte, 0, len(files))
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to open uploaded image"), http.StatusBadRequest)
			return
		}
		data, err := s.readPart(ctx, file)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}
		images = append(images, data)
	}

	reg, err := s.uc.Register(ctx, accountID, displayName, images)
	if err != nil {
		if code, msg, ok := extractionStatus(err); ok {
			writeJSON(w, code, map[string]any{"success": false, "message": msg})
			return
		}
		if accountID.Validate() != nil || displayName == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false, "message": "account_id and display_name are required",
			})
			return
		}
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"account_id": reg.AccountID.String(),
		"provenance": reg.Provenance.String(),
		"samples":    len(images),
	})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	image, ok := s.readMatchImage(w, r)
	if !ok {
		return
	}

	result, err := s.uc.Match(ctx, image)
	if err != nil {
		if code, msg, ok := extractionStatus(err); ok {
			writeJSON(w, code, map[string]any{"success": false, "message": msg})
			return
		}
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}
	if result == nil {
		// No score, no nearest candidate: rejection is deliberately opaque.
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false, "message": "no matching face found",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"account_id":   result.AccountID.String(),
		"display_name": result.DisplayName,
	})
}

// readMatchImage accepts either a multipart "image" field or a raw image
// body.
func (s *Server) readMatchImage(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if err := r.ParseMultipartForm(s.maxImageBytes); err == nil {
		file, _, ferr := r.FormFile("image")
		if ferr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false, "message": "image field is required",
			})
			return nil, false
		}
		data, rerr := s.readPart(r.Context(), file)
		if rerr != nil {
			errutil.HandleHTTP(r.Context(), w, rerr, http.StatusBadRequest)
			return nil, false
		}
		return data, true
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, s.maxImageBytes+1))
	if err != nil || len(data) == 0 || int64(len(data)) > s.maxImageBytes {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false, "message": "image body is required",
		})
		return nil, false
	}
	return data, true
}
