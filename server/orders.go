package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	callsession "github.com/orderline-ai/orderline/core"
	"github.com/orderline-ai/orderline/core/carrier"
	"github.com/orderline-ai/orderline/core/dialogue"
	"github.com/orderline-ai/orderline/core/order"
	"github.com/orderline-ai/orderline/core/respond"
	"github.com/orderline-ai/orderline/lookup"
)

type startOrderRequest struct {
	// Either a free-form restaurant query to resolve, or a phone number
	// to dial directly.
	RestaurantQuery string `json:"restaurant_query,omitempty"`
	RestaurantPhone string `json:"restaurant_phone,omitempty"`

	Items               []string `json:"items"`
	Type                string   `json:"type"`
	DeliveryAddress     string   `json:"delivery_address,omitempty"`
	PaymentMethod       string   `json:"payment_method,omitempty"`
	CustomerName        string   `json:"customer_name"`
	SpecialInstructions string   `json:"special_instructions,omitempty"`

	// CustomerPhone is the leg bridged in when the restaurant needs the
	// customer directly.
	CustomerPhone string `json:"customer_phone,omitempty"`
	// ListenIn dials CustomerPhone into a listen-only leg once the
	// restaurant answers.
	ListenIn bool `json:"listen_in,omitempty"`
}

type startOrderResponse struct {
	OrderID string       `json:"order_id"`
	Status  order.Status `json:"status"`
}

func (s *Server) handleStartOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "start order")
	defer span.End()

	var req startOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 || req.CustomerName == "" {
		http.Error(w, "items and customer_name are required", http.StatusBadRequest)
		return
	}
	if req.RestaurantQuery == "" && req.RestaurantPhone == "" {
		http.Error(w, "restaurant_query or restaurant_phone is required", http.StatusBadRequest)
		return
	}

	orderType := order.TypePickup
	if req.Type == string(order.TypeDelivery) {
		orderType = order.TypeDelivery
	}
	if orderType == order.TypeDelivery && req.DeliveryAddress == "" {
		http.Error(w, "delivery_address is required for delivery orders", http.StatusBadRequest)
		return
	}

	business := &order.Business{PhoneNumber: req.RestaurantPhone}
	if req.RestaurantQuery != "" {
		if s.lookup == nil {
			http.Error(w, "restaurant lookup is not configured", http.StatusBadRequest)
			return
		}
		resolved, err := s.lookup.FindRestaurant(ctx, req.RestaurantQuery)
		if err != nil {
			logger.WarnContext(ctx, "Restaurant lookup failed",
				"query", req.RestaurantQuery, "error", err)
			http.Error(w, "restaurant not found", http.StatusNotFound)
			return
		}
		business = resolved
	} else if normalized, err := lookup.NormalizePhoneNumber(req.RestaurantPhone); err == nil {
		business.PhoneNumber = normalized
	}

	orderContext := order.Context{
		Business:            business.Name,
		Items:               req.Items,
		Type:                orderType,
		DeliveryAddress:     req.DeliveryAddress,
		PaymentMethod:       req.PaymentMethod,
		CustomerName:        req.CustomerName,
		SpecialInstructions: req.SpecialInstructions,
	}

	if req.ListenIn && req.CustomerPhone == "" {
		http.Error(w, "customer_phone is required to listen in", http.StatusBadRequest)
		return
	}

	tracked := s.store.Create(orderContext, req.CustomerPhone)
	s.store.Update(tracked.ID, func(t *order.Tracked) {
		t.Business = business
		t.ListenIn = req.ListenIn
	})

	session := s.newSession(tracked.ID, orderContext, req.CustomerPhone)
	s.registerSession(tracked.ID, session)

	// The call outlives the request; only the trace context carries over.
	callCtx := context.WithoutCancel(ctx)
	var err error
	if req.ListenIn {
		// The user's listen-only leg goes out first; the restaurant is
		// dialed once the listener's media stream is up.
		_, err = s.carrier.PlaceCall(callCtx, carrier.DialParams{
			From:      s.fromNumber,
			To:        req.CustomerPhone,
			SessionID: listenerPrefix + tracked.ID,
		})
	} else {
		err = s.dialRestaurant(callCtx, tracked.ID)
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to start call", "order_id", tracked.ID, "error", err)
		s.store.Update(tracked.ID, func(t *order.Tracked) { t.Status = order.StatusFailed })
		http.Error(w, "failed to start call", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(startOrderResponse{OrderID: tracked.ID, Status: order.StatusDialing})
}

func (s *Server) newSession(id string, orderContext order.Context, customerPhone string) *callsession.Session {
	opts := []callsession.Option{
		callsession.WithID(id),
		callsession.WithCarrier(s.carrier),
		callsession.WithCustomerNumber(customerPhone),
		callsession.WithStatusSink(order.SinkFunc(func(sessionID string, status order.Status) {
			s.store.Update(sessionID, func(t *order.Tracked) { t.Status = status })
		})),
		callsession.WithDialogueOptions(s.dialogueOpts...),
	}
	if s.llm != nil {
		opts = append(opts, callsession.WithDialogueOptions(
			dialogue.WithResponder(respond.NewTurnComposer(s.llm, orderContext)),
		))
	}
	if s.newTranscriber != nil {
		opts = append(opts, callsession.WithTranscriber(s.newTranscriber()))
	}
	if s.newSynthesizer != nil {
		if synthesizer, err := s.newSynthesizer(); err == nil {
			opts = append(opts, callsession.WithSynthesizer(synthesizer))
		} else {
			logger.Warn("Failed to create synthesizer", "order_id", id, "error", err)
		}
	}
	if s.recordCalls {
		opts = append(opts, callsession.WithRecording())
	}
	return callsession.New(orderContext, opts...)
}

// dialRestaurant places the order call itself. For listen-in orders it
// can be triggered twice, by the listener stream starting and by the
// listener giving up; only the first trigger dials.
func (s *Server) dialRestaurant(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.dialed[id] {
		s.mu.Unlock()
		return nil
	}
	s.dialed[id] = true
	s.mu.Unlock()

	session, ok := s.session(id)
	if !ok {
		return fmt.Errorf("no session for order %s", id)
	}
	tracked, ok := s.store.Get(id)
	if !ok || tracked.Business == nil || tracked.Business.PhoneNumber == "" {
		return fmt.Errorf("no restaurant number for order %s", id)
	}
	return session.Dial(ctx, s.fromNumber, tracked.Business.PhoneNumber)
}

type getOrderResponse struct {
	OrderID      string       `json:"order_id"`
	Status       order.Status `json:"status"`
	Restaurant   string       `json:"restaurant,omitempty"`
	Items        []string     `json:"items"`
	RecordingURL string       `json:"recording_url,omitempty"`
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	tracked, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}

	response := getOrderResponse{
		OrderID:      tracked.ID,
		Status:       tracked.Status,
		Items:        tracked.Context.Items,
		RecordingURL: tracked.RecordingURL,
	}
	if tracked.Business != nil {
		response.Restaurant = tracked.Business.Name
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

type recordingResponse struct {
	RecordingURL         string `json:"recording_url"`
	ListenerRecordingURL string `json:"listener_recording_url,omitempty"`
}

// handleGetRecording returns the call recordings once the carrier has
// delivered them; until then the recording does not exist.
func (s *Server) handleGetRecording(w http.ResponseWriter, r *http.Request) {
	tracked, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	if tracked.RecordingURL == "" {
		http.Error(w, "no recording yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recordingResponse{
		RecordingURL:         tracked.RecordingURL,
		ListenerRecordingURL: tracked.ListenerRecordingURL,
	})
}
