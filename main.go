package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"commentd/app/controllers"
	"commentd/app/repositories"
	"commentd/app/routes"
	"commentd/app/services"
	"commentd/config"
	"commentd/logging"
)

const CliVersion = "1.0.0"

// exit is swapped out by tests
var exit = os.Exit

func main() {
	RealMain()
}

func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "help":
		printHelp()
	case "version":
		fmt.Printf("commentd version %s\n", CliVersion)
	case "serve":
		if err := serve(os.Args[2:]); err != nil {
			fmt.Printf("Error: %v\n", err)
			exit(1)
			return
		}
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		exit(1)
	}
}

func printHelp() {
	helpText := `Usage: commentd <command> [options]
Commands:
  help                           Display this help message.
  version                        Show version information.
  serve [--config <file.yaml>]   Run the task comment HTTP service.

Environment:
  COMMENTD_ADDR, COMMENTD_STORE (badger|sqlite), COMMENTD_LOG_LEVEL,
  COMMENTD_LOG_FORMAT (text|json), COMMENTD_SHUTDOWN_TIMEOUT
`
	fmt.Println(helpText)
}

// serve loads configuration and runs the service until SIGINT or SIGTERM.
func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log, os.Stderr)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServer(ctx, cfg, logger, ln)
}

// runServer wires the store, service, controller and router together and
// serves on ln until ctx is done. The store is discarded on return.
func runServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, ln net.Listener) (err error) {
	repo, err := repositories.Open(ctx, cfg.Store)
	if err != nil {
		ln.Close()
		return err
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close store: %w", closeErr))
		}
	}()

	commentService := services.NewCommentService(repo.Comments)
	commentController := controllers.NewCommentController(commentService, logger)
	handler := routes.SetupRoutes(commentController, logger)

	logger.Info("starting comment service",
		"addr", ln.Addr().String(),
		"store", repo.Driver(),
		"version", CliVersion,
	)
	if err := routes.StartServer(ctx, routes.NewServer(cfg.Addr, handler), ln, cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("comment service stopped")
	return nil
}
