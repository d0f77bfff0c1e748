package webhook

import (
	"encoding/json"
	"errors"
	"net/http"

	"dailydeals-be/internal/logger"
	"dailydeals-be/internal/order"

	"go.uber.org/zap"
)

type shipmentEvent struct {
	Event          string `json:"event"`
	TrackingNumber string `json:"tracking_number"`
}

// shipmentStatusByEvent maps courier lifecycle events onto order
// statuses. Events absent from the map are acknowledged and ignored.
var shipmentStatusByEvent = map[string]order.OrderStatus{
	"shipment.picked_up":        order.StatusProcessing,
	"shipment.in_transit":       order.StatusShipped,
	"shipment.out_for_delivery": order.StatusOutForDelivery,
	"shipment.delivered":        order.StatusCompleted,
	"shipment.failed":           order.StatusFailed,
}

type ShipmentHandler struct {
	orders order.Service
}

func NewShipmentHandler(orders order.Service) *ShipmentHandler {
	return &ShipmentHandler{orders: orders}
}

func (h *ShipmentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(zap.String("handler", "ShipmentWebhook"))

	var ev shipmentEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		log.Warn("malformed shipment webhook payload", zap.Error(err))
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	log = log.With(
		zap.String("event", ev.Event),
		zap.String("tracking_number", ev.TrackingNumber),
	)

	if ev.Event == "shipment.created" {
		// Label creation is already recorded at checkout time.
		writeReceived(w)
		return
	}

	status, ok := shipmentStatusByEvent[ev.Event]
	if !ok {
		log.Info("ignoring unknown shipment event")
		writeReceived(w)
		return
	}

	if ev.TrackingNumber == "" {
		log.Warn("shipment event without tracking number")
		http.Error(w, "missing tracking number", http.StatusBadRequest)
		return
	}

	if err := h.orders.ApplyShipmentStatus(ctx, ev.TrackingNumber, status); err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			log.Warn("shipment event for unknown tracking number, acknowledging")
			writeReceived(w)
			return
		}
		log.Error("failed to apply shipment status", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Info("order status advanced from shipment event", zap.String("status", string(status)))
	writeReceived(w)
}
