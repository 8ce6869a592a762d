package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/facepay-lab/facepay/pkg/domain/interfaces"
	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/usecase"
	"github.com/facepay-lab/facepay/pkg/utils/logging"
	"github.com/facepay-lab/facepay/pkg/utils/safe"
)

// sseSink streams payment events to one HTTP response as server-sent
// events. Writes are serialized; a dead connection silently drops events so
// the payment flow is never blocked by the stream.
type sseSink struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSESink(w http.ResponseWriter) *sseSink {
	flusher, _ := w.(http.Flusher)
	return &sseSink{w: w, flusher: flusher}
}

var _ interfaces.EventSink = &sseSink{}

func (s *sseSink) Publish(ctx context.Context, ev model.PaymentEvent) {
	s.writeEvent(ctx, "stage", ev)
}

func (s *sseSink) writeEvent(ctx context.Context, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.From(ctx).Warn("failed to encode stream event", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	safe.Write(ctx, s.w, []byte("event: "+event+"\ndata: "+string(data)+"\n\n"))
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(s.maxImageBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false, "message": "expected multipart form",
		})
		return
	}

	req := &usecase.PayRequest{
		AccountID: types.AccountID(r.FormValue("account_id")),
		Amount:    r.FormValue("amount"),
	}
	if v := r.FormValue("recipient"); v != "" {
		if !common.IsHexAddress(v) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false, "message": "recipient is not a valid address",
			})
			return
		}
		req.Recipient = common.HexToAddress(v)
	}
	if file, _, err := r.FormFile("image"); err == nil {
		data, rerr := s.readPart(ctx, file)
		if rerr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false, "message": "could not read image",
			})
			return
		}
		req.Image = data
	}
	if req.Amount == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false, "message": "amount is required",
		})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sink := newSSESink(w)
	result, err := s.uc.PayWithSink(ctx, req, sink)
	if err != nil {
		// The stream already carried the failed stage event; close with a
		// generic terminal result. Details stay in the server log.
		msg := "payment failed"
		if errors.Is(err, usecase.ErrNotRecognized) {
			msg = "no matching face found"
		}
		sink.writeEvent(ctx, "result", map[string]any{
			"success": false, "message": msg,
		})
		return
	}

	sink.writeEvent(ctx, "result", map[string]any{
		"success":      true,
		"attempt_id":   result.AttemptID,
		"tx_hash":      result.TxHash.Hex(),
		"block_number": result.BlockNumber,
		"gas_used":     result.GasUsed,
	})
}
