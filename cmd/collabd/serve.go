package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lupamo/realtime-collab/internal/db/bunx"
	"github.com/lupamo/realtime-collab/internal/events"
	"github.com/lupamo/realtime-collab/internal/repository"
	"github.com/lupamo/realtime-collab/internal/server"
	"github.com/lupamo/realtime-collab/internal/services/iam"
	"github.com/lupamo/realtime-collab/internal/services/project"
	"github.com/lupamo/realtime-collab/internal/services/task"
	"github.com/lupamo/realtime-collab/internal/services/team"
	"github.com/lupamo/realtime-collab/internal/token"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Starts the HTTP server with the auth, team, project, and task endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Connect to database
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		log.Printf("Connected to database")

		// Initialize repositories
		userRepo := repository.NewBunUserRepository(db)
		refreshTokenRepo := repository.NewBunRefreshTokenRepository(db)
		teamRepo := repository.NewBunTeamRepository(db)
		membershipRepo := repository.NewBunMembershipRepository(db)
		projectRepo := repository.NewBunProjectRepository(db)
		taskRepo := repository.NewBunTaskRepository(db)
		commentRepo := repository.NewBunCommentRepository(db)

		// Event publishing: the in-process hub always runs; Redis fanout to
		// other processes joins in when REDIS_URL is set.
		hub := events.NewHub()
		publisher := events.Fanout{hub}
		if cfg.RedisURL != "" {
			redisPublisher, err := events.NewRedisPublisher(cfg.RedisURL, events.DefaultChannel)
			if err != nil {
				return fmt.Errorf("failed to connect to redis: %w", err)
			}
			defer redisPublisher.Close()
			publisher = append(publisher, redisPublisher)
			log.Printf("Publishing task events to redis channel %q", events.DefaultChannel)
		}

		// Initialize services
		tokenService := token.NewService(cfg.JWT, refreshTokenRepo)
		gate := iam.NewGate(tokenService, userRepo, membershipRepo)
		iamService := iam.NewService(userRepo, tokenService, cfg.BcryptCost)
		teamService := team.NewService(teamRepo, membershipRepo, userRepo, gate)
		projectService := project.NewService(projectRepo, gate)
		taskService := task.NewService(taskRepo, projectRepo, commentRepo, publisher)

		router := server.NewRouter(server.RouterOptions{
			IAMService:     iamService,
			Gate:           gate,
			TeamService:    teamService,
			ProjectService: projectService,
			TaskService:    taskService,
		})

		httpServer := &http.Server{
			Addr:              cfg.ServerAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Serve until interrupted, then drain in-flight requests.
		errCh := make(chan error, 1)
		go func() {
			log.Printf("Listening on %s", cfg.ServerAddr)
			errCh <- httpServer.ListenAndServe()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-stop:
			log.Printf("Received %s, shutting down", sig)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
		}

		log.Printf("Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
