package main

// GET    /                 - API banner
// GET    /health           - liveness
// GET    /productos        - list products (?skip=&limit=)
// POST   /productos        - create a product
// GET    /productos/{id}   - fetch a product
// PUT    /productos/{id}   - partial update of a product
// DELETE /productos/{id}   - delete a product
// GET    /carrito          - list carts with their items
// POST   /carrito          - create a cart from {producto_id, cantidad} pairs
// GET    /carrito/{id}     - fetch a cart
// PUT    /carrito/{id}     - replace a cart's items, optionally its estado
// DELETE /carrito/{id}     - delete a cart
//
// Usage: tienda [serve | migrate [create|drop|reset] | seed]

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/gorillamux"
	"github.com/gorilla/mux"

	"online-store/config"
	"online-store/handler"
	"online-store/service"
	"online-store/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx := context.Background()

	// --- Store ---
	st, err := store.NewPostgresStore(ctx, cfg.DatabaseURL, cfg.Pool)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer st.Close()
	log.Println("Successfully connected to PostgreSQL")

	switch cmd {
	case "serve":
		err = serve(ctx, cfg, st)
	case "migrate":
		err = migrate(ctx, st, os.Args[2:])
	case "seed":
		err = seed(ctx, st)
	default:
		err = fmt.Errorf("unknown command %q (want serve, migrate or seed)", cmd)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func migrate(ctx context.Context, st *store.PostgresStore, args []string) error {
	mode := store.MigrateCreate
	if len(args) > 0 {
		var err error
		if mode, err = store.ParseMigrateMode(args[0]); err != nil {
			return err
		}
	}
	return st.Migrate(ctx, mode)
}

func serve(ctx context.Context, cfg config.Config, st *store.PostgresStore) error {
	// --- RUN MIGRATIONS ---
	if cfg.AutoMigrate {
		if err := st.Migrate(ctx, store.MigrateCreate); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	// --- Service / Router ---
	var svc service.ServiceInterface = service.NewService(st)
	r := handler.NewRouter(svc, cfg.AllowedOrigins)

	if cfg.Lambda {
		serveLambda(r)
		return nil
	}
	return serveHTTP(cfg, r)
}

func serveLambda(r *mux.Router) {
	adapter := gorillamux.New(r)
	log.Println("Running as AWS Lambda handler")
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}

func serveHTTP(cfg config.Config, r http.Handler) error {
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server running on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Println("Server shutdown complete")
	return nil
}
