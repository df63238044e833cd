// cmd/server/main.go is the entrypoint for the Rummy 500 game service.
package main

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/mvannier-2004/rummy500-multiplayer/internal/auth"
	"github.com/mvannier-2004/rummy500-multiplayer/internal/cache"
	"github.com/mvannier-2004/rummy500-multiplayer/internal/database"
	"github.com/mvannier-2004/rummy500-multiplayer/internal/handlers"
	"github.com/mvannier-2004/rummy500-multiplayer/internal/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	for _, arg := range os.Args[1:] {
		if arg == "-v" {
			logger.SetLevel(logrus.DebugLevel)
			logger.Debug("Verbose mode enabled")
		}
	}

	// init db connection
	database.ConnectDB()
	defer database.DB.Close()

	// init auth keys
	auth.Init()

	// Redis is optional: without it the action journal is simply disabled.
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("Redis unavailable, action journaling disabled: %v", err)
		cache.Rdb = nil
	}

	rs := handlers.NewRoomServer(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})

	mux.HandleFunc("/user/create", handlers.CreateUserHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)
	mux.HandleFunc("/user/claim", handlers.ClaimEphemeralHandler)

	mux.HandleFunc("/room/create", rs.CreateRoomHandler)
	mux.Handle("/room/ws/", handlers.RoomWSHandler(logger, rs))

	server := &http.Server{
		Handler:     middleware.LogMiddleware(logger)(mux),
		ReadTimeout: time.Second * 10,
		// No WriteTimeout: WebSocket connections are long-lived.
	}

	port := os.Getenv("RUMMY_SERVICE_PORT")
	if port == "" {
		port = "8080"
	}
	l, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	logger.Infof("listening on %s", l.Addr())

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("failed to serve: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
	}
}
