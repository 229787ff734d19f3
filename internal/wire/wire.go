package wire

import (
	"net/http"

	"movie-ticket/internal/adaptor"
	"movie-ticket/internal/data/repository"
	"movie-ticket/internal/usecase"
	"movie-ticket/pkg/database"
	"movie-ticket/pkg/mailer"
	"movie-ticket/pkg/middleware"
	"movie-ticket/pkg/utils"
	"movie-ticket/pkg/vietqr"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App bundles everything the server entrypoint needs.
type App struct {
	Router  *chi.Mux
	Sweeper *usecase.Sweeper
}

// Wire assembles repositories, services and handlers into a router.
func Wire(config *utils.Config, db database.PgxIface, log *zap.Logger) *App {
	repo := repository.NewRepository(db, log)

	qr := vietqr.NewClient(vietqr.Account{
		BankID:      config.Payment.BankID,
		AccountNo:   config.Payment.AccountNo,
		AccountName: config.Payment.AccountName,
		Template:    config.Payment.Template,
	}, log)
	mail := mailer.NewSMTPMailer(config.Email, log)

	authService := usecase.NewAuthService(repo, mail, config, log)
	userService := usecase.NewUserService(repo, log)
	movieService := usecase.NewMovieService(repo, log)
	roomService := usecase.NewRoomService(repo, log)
	showTimeService := usecase.NewShowTimeService(repo, config, log)
	bookingService := usecase.NewBookingService(repo, qr, mail, config, log)

	handler := &adaptor.Handler{
		Auth:     adaptor.NewAuthHandler(authService, log),
		User:     adaptor.NewUserHandler(userService, log),
		Movie:    adaptor.NewMovieHandler(movieService, showTimeService, log),
		Room:     adaptor.NewRoomHandler(roomService, log),
		ShowTime: adaptor.NewShowTimeHandler(showTimeService, log),
		Booking:  adaptor.NewBookingHandler(bookingService, qr, log),
	}

	authMW := middleware.AuthSession(repo.Session, repo.User, log)

	router := chi.NewRouter()
	router.Use(middleware.Recover(log))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS())

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			utils.ResponseInternalError(w, "Database unreachable")
			return
		}
		utils.ResponseSuccess(w, "OK", nil)
	})

	router.Route("/api", func(api chi.Router) {
		AuthRoutes(api, handler, authMW)
		CatalogRoutes(api, handler)
		BookingRoutes(api, handler, authMW)
		AdminRoutes(api, handler, authMW)
	})

	return &App{
		Router:  router,
		Sweeper: usecase.NewSweeper(repo, config, log),
	}
}
