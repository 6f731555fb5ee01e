package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/mcp-go/server"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/api"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/audit"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/catalog"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/coach"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/conflict"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/config"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/feedback"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/nutrition"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/nutritionix"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/ollama"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/profile"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/progress"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/rules"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/storage"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/workout"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the fitcoach server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running fitcoach server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show fitcoach system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "fitcoach.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

// llmCompleter adapts the Ollama client to the single-method completion
// interfaces the planners and generators consume.
type llmCompleter struct {
	client *ollama.Client
	model  string
}

func (l *llmCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return l.client.Generate(ctx, l.model, prompt)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "fitcoach version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("fitcoach is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("fitcoach is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Check local model readiness.
	ollamaClient := ollama.New(cfg.Ollama.BaseURL)
	if err := ollama.EnsureReady(ctx, ollamaClient, cfg.Ollama.Model, os.Stderr); err != nil {
		return err
	}

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Load the exercise catalog.
	exercises, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("loading exercise catalog: %w", err)
	}
	slog.Info("exercise catalog loaded", "exercises", len(exercises))

	// Assemble the coaching components.
	auditor := audit.NewLogger(store)
	completer := &llmCompleter{client: ollamaClient, model: cfg.Ollama.Model}

	profiles := profile.NewManager(store, auditor)
	interpreter := feedback.NewInterpreter(store, auditor)
	ruleGen := rules.NewGenerator(completer, store, exercises)
	resolver := conflict.NewResolver(ruleGen, auditor)
	workoutGen := workout.NewGenerator(completer, exercises, auditor)

	var lookup nutrition.NutrientLookup
	nxClient := nutritionix.NewClient(cfg.Nutritionix.BaseURL, cfg.Nutritionix.AppID, cfg.Nutritionix.APIKey)
	if nxClient.Configured() {
		lookup = nxClient
	} else {
		slog.Warn("Nutritionix credentials not set, macro lookups will use fixed defaults")
	}
	nutritionPlanner := nutrition.NewPlanner(completer, lookup, store, auditor)

	tracker := progress.NewTracker(store, auditor)
	orchestrator := coach.New(profiles, workoutGen, nutritionPlanner, interpreter, resolver, tracker, auditor)

	handler := api.NewAppHandler(api.AppDeps{
		Profiles:  profiles,
		Coach:     orchestrator,
		Workout:   workoutGen,
		Nutrition: nutritionPlanner,
		Feedback:  interpreter,
		Progress:  tracker,
		Audit:     store,
		Token:     cfg.API.Token,
	})

	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Profiles:  profiles,
		Workout:   workoutGen,
		Nutrition: nutritionPlanner,
		Feedback:  interpreter,
		Progress:  tracker,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	mcpAddr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.MCPPort)
	sseSrv := server.NewSSEServer(mcpSrv)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Fprintf(os.Stderr, "fitcoach listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		slog.Info("MCP server started (SSE transport)", "addr", mcpAddr)
		if err := sseSrv.Start(mcpAddr); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("mcp server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sseSrv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("MCP shutdown", "error", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("fitcoach is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop fitcoach (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to fitcoach (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	ollamaResp, err := client.Get(cfg.Ollama.BaseURL + "/api/version")
	if err != nil {
		printStatus("Ollama", "not running")
	} else {
		ollamaResp.Body.Close()
		printStatus("Ollama", "running at %s", cfg.Ollama.BaseURL)
	}

	printStatus("Model", "%s", cfg.Ollama.Model)
	if cfg.Nutritionix.AppID != "" && cfg.Nutritionix.APIKey != "" {
		printStatus("Nutritionix", "configured")
	} else {
		printStatus("Nutritionix", "not configured (using default macros)")
	}
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
