package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	domainauth "github.com/NordCoder/Authly/internal/domain/auth"
	"github.com/NordCoder/Authly/internal/domain/user"
)

type RouterDeps struct {
	Auth   AuthService
	Codec  domainauth.TokenCodec
	Gate   BlacklistChecker
	Users  user.Repo
	Logger *zap.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	log := d.Logger
	if log == nil {
		log = zap.L()
	}
	h := &authHandler{svc: d.Auth, log: log.With(zap.String("component", "http.auth"))}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/refresh", h.refresh)

		r.Group(func(r chi.Router) {
			r.Use(Auth(d.Codec, d.Gate, d.Users, log))
			r.Post("/logout", h.logout)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(Auth(d.Codec, d.Gate, d.Users, log))
		r.Get("/v1/users/me", h.me)
	})

	return r
}
