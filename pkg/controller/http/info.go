package http

import (
	"net/http"
	"time"

	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/utils/errutil"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, err := s.uc.Status(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"recognizer":       status.Recognizer,
		"registered_faces": status.RegisteredFaces,
		"chain_enabled":    status.ChainEnabled,
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	accountID := types.AccountID(chi.URLParam(r, "address"))

	balance, err := s.uc.Balance(r.Context(), accountID)
	if err != nil {
		if accountID.Validate() != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false, "message": "address is not valid",
			})
			return
		}
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": balance.AccountID.String(),
		"balance":    balance.Amount,
		"base_units": balance.BaseUnits,
		"decimals":   balance.Decimals,
	})
}

func (s *Server) handleFaces(w http.ResponseWriter, r *http.Request) {
	regs, err := s.uc.Faces(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	type face struct {
		AccountID    string    `json:"account_id"`
		DisplayName  string    `json:"display_name"`
		Provenance   string    `json:"provenance"`
		RegisteredAt time.Time `json:"registered_at"`
	}

	faces := make([]face, len(regs))
	for i, reg := range regs {
		faces[i] = face{
			AccountID:    reg.AccountID.String(),
			DisplayName:  reg.DisplayName,
			Provenance:   reg.Provenance.String(),
			RegisteredAt: reg.RegisteredAt,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"faces": faces,
		"count": len(faces),
	})
}
