package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"wordmate-subscription/internal/domain"
	"wordmate-subscription/internal/domain/model"
	"wordmate-subscription/internal/infra/logging"
	"wordmate-subscription/internal/infra/metrics"
	red "wordmate-subscription/internal/infra/redis"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeMessage(w http.ResponseWriter, status int, msgKey string) {
	s.writeJSON(w, status, errorResponse{Success: false, Message: s.tr.T(msgKey)})
}

// mapError translates domain errors to HTTP status + message key per the
// error taxonomy: validation 400, auth 401/403, not-found 404, business rule
// 400, downstream/config 500 with detail only in the log.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, "code_invalid"
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		return http.StatusBadRequest, "code_used"
	case errors.Is(err, domain.ErrCodeExpired):
		return http.StatusBadRequest, "code_expired"
	case errors.Is(err, domain.ErrOrderAlreadyPaid):
		return http.StatusBadRequest, "order_already_paid"
	case errors.Is(err, domain.ErrOrderNotPending):
		return http.StatusBadRequest, "order_not_pending"
	case errors.Is(err, domain.ErrAmountTooLow):
		return http.StatusBadRequest, "amount_too_low"
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "order_not_found"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "too_many_attempts"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, key := mapError(err)
	if status >= 500 {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("request failed")
	}
	s.writeMessage(w, status, key)
}

type createOrderRequest struct {
	Email  string `json:"email"`
	PlanID string `json:"planId"`
	Amount int64  `json:"amount"` // cents
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "invalid_request")
		return
	}

	order, err := s.orderUC.Create(r.Context(), req.Email, req.PlanID, req.Amount)
	if err != nil {
		// Create-specific messages: the only free-form field is the email,
		// and an unknown plan id is a 400, not a 404.
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			s.writeMessage(w, http.StatusBadRequest, "invalid_email")
		case errors.Is(err, domain.ErrNotFound):
			s.writeMessage(w, http.StatusBadRequest, "invalid_plan")
		default:
			s.writeError(w, r, err)
		}
		return
	}

	s.writeJSON(w, http.StatusCreated, struct {
		OrderID  string `json:"orderId"`
		Status   string `json:"status"`
		PlanName string `json:"planName"`
	}{
		OrderID:  order.ID,
		Status:   string(order.Status),
		PlanName: order.PlanName,
	})
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := s.orderUC.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		Status string     `json:"status"`
		PaidAt *time.Time `json:"paidAt"`
	}{
		Status: string(order.Status),
		PaidAt: order.PaidAt,
	})
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.orderUC.Cancel(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Status  string `json:"status"`
	}{Success: true, Status: string(model.OrderStatusCancelled)})
}

type confirmOrderRequest struct {
	OrderID string `json:"orderId"`
}

func (s *Server) handleConfirmOrder(w http.ResponseWriter, r *http.Request) {
	var req confirmOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		s.writeMessage(w, http.StatusBadRequest, "invalid_request")
		return
	}

	res, err := s.orderUC.Confirm(r.Context(), req.OrderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		Code       string `json:"code"`
		Email      string `json:"email"`
		EmailSent  bool   `json:"emailSent"`
		EmailError string `json:"emailError,omitempty"`
	}{
		Code:       res.Code,
		Email:      res.Email,
		EmailSent:  res.EmailSent,
		EmailError: res.EmailError,
	})
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	status := model.OrderStatus(r.URL.Query().Get("status"))
	orders, err := s.orderUC.List(r.Context(), status, 0, 200)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		Data []*model.Order `json:"data"`
	}{Data: orders})
}

type redeemRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		s.writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		s.writeMessage(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allow(r.Context(), red.RedeemAttemptKey(userID), s.attemptLimit, s.attemptWin)
		if err != nil {
			logging.With(r.Context(), s.log).Error().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			s.writeMessage(w, http.StatusTooManyRequests, "too_many_attempts")
			return
		}
	}

	start := time.Now()
	res, err := s.redeemUC.Redeem(r.Context(), userID, req.Code)
	metrics.ObserveRedeemLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		Success  bool       `json:"success"`
		Message  string     `json:"message"`
		Tier     string     `json:"tier"`
		PlanName string     `json:"planName"`
		EndDate  *time.Time `json:"endDate"`
	}{
		Success:  true,
		Message:  s.tr.T("redeem_success", res.PlanName),
		Tier:     string(res.Tier),
		PlanName: res.PlanName,
		EndDate:  res.EndDate,
	})
}
