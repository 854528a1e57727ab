package http

import (
	"net/http"
	"time"

	httpmw "github.com/cwrk-planet/dm-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/dm-service/internal/transport/ws"
	"github.com/cwrk-planet/dm-service/pkg/httputil"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handler, verifier httpmw.IdentityVerifier, relay *ws.Relay, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)

	// WS endpoint живет вне API-группы: логирующий middleware оборачивает
	// ResponseWriter и ломает hijack при upgrade.
	r.Get("/ws/messages/{user_id}", relay.HandleWS)

	r.Group(func(api chi.Router) {
		api.Use(httputil.MiddlewareRequestID)
		api.Use(httputil.MiddlewareLogging)
		api.Use(middlewareChi.Compress(5))
		api.Use(middlewareChi.Timeout(30 * time.Second))

		api.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		// публичные маршруты
		api.Post("/api/auth/token", h.Token)
		api.Post("/api/users/register", h.RegisterUser)

		// всё остальное требует Bearer access-токен
		api.Group(func(pr chi.Router) {
			pr.Use(httpmw.Auth(verifier))

			pr.Route("/api/users", func(ur chi.Router) {
				ur.Get("/", h.ListUsers)
				ur.Post("/", h.CreateUser)
				ur.Get("/contacts", h.Contacts)

				ur.Route("/{id}", func(rr chi.Router) {
					rr.Get("/", h.GetUser)
					rr.Put("/", h.UpdateUser)
					rr.Delete("/", h.DeleteUser)
				})
			})

			pr.Route("/api/messages", func(mr chi.Router) {
				mr.Get("/", h.Dialog)
				mr.Post("/", h.SendMessage)
				mr.Get("/sent", h.Sent)
				mr.Get("/with/{user_id}", h.Between)
				mr.Delete("/{id}", h.DeleteMessage)
			})
		})
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
