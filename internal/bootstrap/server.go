package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucavt/carpool/api"
	"github.com/lucavt/carpool/config"
	"github.com/lucavt/carpool/internal/auth"
	"github.com/lucavt/carpool/internal/service/booking"
	"github.com/lucavt/carpool/internal/service/rides"
	"github.com/lucavt/carpool/internal/service/users"
)

// Run starts the HTTP server and blocks until context is canceled or the
// server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	tokens *auth.TokenManager,
	rideSvc rides.RideUseCase,
	bookingSvc booking.BookingUseCase,
	userSvc users.UserUseCase,
) error {
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, tokens, rideSvc, bookingSvc, userSvc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(
	cfg *config.Config,
	tokens *auth.TokenManager,
	rideSvc rides.RideUseCase,
	bookingSvc booking.BookingUseCase,
	userSvc users.UserUseCase,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger())

	authMW := api.Authenticate(tokens)

	authHandler := api.NewAuthHandler(userSvc)
	rideHandler := api.NewRideHandler(rideSvc)
	bookingHandler := api.NewBookingHandler(bookingSvc)
	userHandler := api.NewUserHandler(userSvc)

	root := router.Group("/api")
	authHandler.Register(root.Group("/auth"))
	rideHandler.Register(root.Group("/rides"), authMW)
	bookingHandler.Register(root.Group("/bookings", authMW))
	userHandler.RegisterNotifications(root.Group("/notifications", authMW))
	userHandler.RegisterRatings(root.Group("/ratings", authMW))
	userHandler.RegisterReports(root.Group("/reports", authMW))

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/docs", func(c *gin.Context) {
			renderSwaggerUI(c.Writer, "/swagger/carpool.swagger.json")
		})
	}

	return router
}

func renderSwaggerUI(w http.ResponseWriter, jsonURL string) {
	html := fmt.Sprintf(`<!DOCTYPE html>
    <html>
    <head>
        <title>API Docs</title>
        <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@latest/swagger-ui.css">
    </head>
    <body>
        <div id="swagger-ui"></div>
        <script src="https://unpkg.com/swagger-ui-dist@latest/swagger-ui-bundle.js"></script>
        <script>
            window.onload = function() {
                window.ui = SwaggerUIBundle({
                    url: "%s",
                    dom_id: '#swagger-ui'
                });
            };
        </script>
    </body>
    </html>`, jsonURL)

	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(html))
}
