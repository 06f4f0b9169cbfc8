package api

import (
	"code_arena/internal/api/handler"
	custommw "code_arena/internal/api/middleware"
	"code_arena/internal/app/service"
	"code_arena/internal/common/security"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	roomService *service.RoomService,
	questionService *service.QuestionService,
	submissionService *service.SubmissionService,
	matchService *service.MatchService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the Bearer token and puts claims in context; the
	// Authenticator below enforces them on the room routes.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/rooms", func(rooms chi.Router) {
			rooms.Use(custommw.Authenticator)

			handler.NewRoomHandler(roomService).RegisterRoutes(rooms)
			handler.NewQuestionHandler(questionService, submissionService).RegisterRoutes(rooms)
			handler.NewSubmissionHandler(submissionService).RegisterRoutes(rooms)
			handler.NewMatchHandler(matchService).RegisterRoutes(rooms)
		})
	})

	return r
}
