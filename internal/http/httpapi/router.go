package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"lumafab/internal/http/handlers"
	appmw "lumafab/internal/middleware"
)

type RouterOptions struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	DefaultLocale  string
	RateLimit      int
	CountryLookup  appmw.CountryLookup
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		appmw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		appmw.Logger(opts.Logger),
		appmw.CORS(opts.AllowedOrigins),
		appmw.I18N(opts.DefaultLocale, opts.CountryLookup),
	)
	if opts.RateLimit > 0 {
		r.Use(appmw.RateLimit(opts.RateLimit, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/designs", func(r chi.Router) {
		r.Post("/generate", app.DesignsGenerate)
		r.Post("/isolate", app.DesignsIsolate)
	})
	r.Route("/v1/models", func(r chi.Router) {
		r.Post("/convert", app.ModelsConvert)
		r.Get("/{taskID}", app.ModelStatus)
	})
	r.Post("/v1/pricing/estimate", app.PricingEstimate)
	r.Post("/v1/orders", app.OrdersCreate)
	r.Post("/v1/newsletter", app.NewsletterSubscribe)
	r.Get("/v1/assets/proxy", app.AssetProxy)

	return r
}
