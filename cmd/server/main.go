package main

import (
	"code_arena/internal/api"
	"code_arena/internal/app/service"
	"code_arena/internal/app/worker"
	"code_arena/internal/common/security"
	"code_arena/internal/domain/repository"
	"code_arena/internal/platform/config"
	"code_arena/internal/platform/database"
	"code_arena/internal/platform/executor"
	"code_arena/internal/platform/queue"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	roomRepo := repository.NewPgRoomRepository(database.DB)
	questionRepo := repository.NewPgQuestionRepository(database.DB)
	roomQuestionRepo := repository.NewPgRoomQuestionRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	matchResultRepo := repository.NewPgMatchResultRepository(database.DB)
	profileRepo := repository.NewPgProfileRepository(database.DB)

	// 6. Initialize Services
	publisher := queue.NewEventPublisher(queue.RDB)
	sandbox := executor.NewPistonClient(config.AppConfig.SandboxURL, time.Duration(config.AppConfig.SandboxTimeoutSeconds)*time.Second)
	questionPool := service.NewQuestionPoolService(questionRepo)
	roomService := service.NewRoomService(roomRepo, roomQuestionRepo, matchResultRepo, questionPool, publisher, database.DB)
	questionService := service.NewQuestionService(questionRepo, roomRepo, roomQuestionRepo)
	submissionService := service.NewSubmissionService(submissionRepo, questionRepo, roomRepo, roomQuestionRepo, sandbox, publisher, database.DB)
	matchService := service.NewMatchService(matchResultRepo, submissionRepo, roomRepo, publisher, database.DB)

	// 7. Initialize Profile Worker (as a goroutine)
	profileWorker := worker.NewProfileWorker(queue.RDB, profileRepo)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go profileWorker.Start(workerCtx)
	fmt.Println("Profile worker started.")

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(roomService, questionService, submissionService, matchService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}
