// Package webhook exposes the callback endpoints the payment gateway
// and the courier invoke. Both handlers are replay-safe and always
// answer 200 once a payload has been accepted, so upstreams stop
// retrying.
package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"dailydeals-be/internal/logger"
	"dailydeals-be/internal/order"
	"dailydeals-be/internal/payment"

	"go.uber.org/zap"
)

// SignatureHeader carries the gateway's HMAC over the callback payload.
const SignatureHeader = "IK-SIGN"

type paymentEvent struct {
	PaylinkID             string `json:"paylinkID"`
	Status                string `json:"status"`
	ExternalTransactionID string `json:"externalTransactionID"`
	ResponseCode          string `json:"responseCode"`
}

type PaymentHandler struct {
	orders   order.Service
	payments payment.Provider
}

func NewPaymentHandler(orders order.Service, payments payment.Provider) *PaymentHandler {
	return &PaymentHandler{orders: orders, payments: payments}
}

func (h *PaymentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(zap.String("handler", "PaymentWebhook"))

	// The signature covers the exact bytes on the wire, so the body must
	// be verified raw before any decoding.
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", zap.Error(err))
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := h.payments.VerifyWebhook(rawBody, r.Header.Get(SignatureHeader)); err != nil {
		log.Warn("webhook signature rejected", zap.Error(err))
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var ev paymentEvent
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		log.Warn("malformed webhook payload", zap.Error(err))
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	if ev.ResponseCode != "00" {
		log.Warn("webhook carried non-success response code",
			zap.String("response_code", ev.ResponseCode),
			zap.String("paylink_id", ev.PaylinkID),
		)
		http.Error(w, "unexpected response code", http.StatusBadRequest)
		return
	}

	log = log.With(zap.String("paylink_id", ev.PaylinkID), zap.String("status", ev.Status))

	switch ev.Status {
	case "SUCCESS":
		applied, err := h.orders.ConfirmPayment(ctx, ev.PaylinkID)
		if h.reconcileFailed(w, log, err) {
			return
		}
		if !applied {
			log.Info("payment success webhook replayed")
		}
	case "FAILURE":
		applied, err := h.orders.FailPayment(ctx, ev.PaylinkID)
		if h.reconcileFailed(w, log, err) {
			return
		}
		if !applied {
			log.Info("payment failure webhook ignored, order already settled")
		}
	default:
		log.Info("ignoring unknown payment webhook status")
	}

	writeReceived(w)
}

// reconcileFailed writes the error response when reconciliation failed
// for a reason worth retrying. An unknown order is acknowledged so the
// gateway stops redelivering a payload we can never apply.
func (h *PaymentHandler) reconcileFailed(w http.ResponseWriter, log *zap.Logger, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, order.ErrOrderNotFound) {
		log.Warn("webhook references unknown order, acknowledging")
		writeReceived(w)
		return true
	}
	log.Error("failed to reconcile payment webhook", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
	return true
}

func writeReceived(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"received": true})
}
