package web

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"wordmate-subscription/internal/infra/api"
	"wordmate-subscription/internal/infra/i18n"
	"wordmate-subscription/internal/infra/logging"
	"wordmate-subscription/internal/usecase"
)

// AttemptLimiter throttles repeated requests per key. Nil disables limiting.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type ctxKey string

const ctxUserID ctxKey = "user_id"

// Server exposes the order and redemption API.
type Server struct {
	orderUC      usecase.OrderUseCase
	redeemUC     usecase.RedemptionUseCase
	adminKey     string
	jwtSecret    string
	limiter      AttemptLimiter
	attemptLimit int
	attemptWin   time.Duration
	tr           *i18n.Translator
	log          *zerolog.Logger
}

func NewServer(
	orderUC usecase.OrderUseCase,
	redeemUC usecase.RedemptionUseCase,
	adminKey string,
	jwtSecret string,
	limiter AttemptLimiter,
	attemptLimit int,
	attemptWin time.Duration,
	tr *i18n.Translator,
	logger *zerolog.Logger,
) *Server {
	srvLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		orderUC:      orderUC,
		redeemUC:     redeemUC,
		adminKey:     adminKey,
		jwtSecret:    jwtSecret,
		limiter:      limiter,
		attemptLimit: attemptLimit,
		attemptWin:   attemptWin,
		tr:           tr,
		log:          &srvLog,
	}
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(api.TraceID(s.log))
	r.Use(api.RequestLog(s.log))
	r.Use(api.Recover(s.log))
	r.Use(api.Timeout(15 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/orders", s.handleCreateOrder)
		r.Get("/orders/{id}", s.handleOrderStatus)
		r.Post("/orders/{id}/cancel", s.handleCancelOrder)

		r.Group(func(r chi.Router) {
			r.Use(s.adminMiddleware)
			r.Post("/admin/orders/confirm", s.handleConfirmOrder)
			r.Get("/admin/orders", s.handleListOrders)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.userAuthMiddleware)
			r.Post("/redeem", s.handleRedeem)
		})
	})
	return r
}

// adminMiddleware checks the shared admin secret in constant time so the
// comparison leaks nothing about the key.
func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminKey == "" {
			s.log.Error().Msg("admin key is not configured")
			s.writeMessage(w, http.StatusForbidden, "forbidden")
			return
		}
		got := r.Header.Get("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.adminKey)) != 1 {
			s.writeMessage(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userAuthMiddleware validates the Bearer JWT and stores the subject as the
// authenticated user id.
func (s *Server) userAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			s.writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(s.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			s.writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			s.writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, sub)
		ctx = logging.WithUserID(ctx, sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxUserID); v != nil {
		return v.(string)
	}
	return ""
}
