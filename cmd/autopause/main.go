package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/autopause/autopause/internal/config"
	"github.com/autopause/autopause/internal/daemon"
	"github.com/autopause/autopause/internal/database"
	"github.com/autopause/autopause/internal/ignore"
	"github.com/autopause/autopause/internal/monitor"
	"github.com/autopause/autopause/internal/reporter"
	"github.com/autopause/autopause/internal/web"
	"github.com/autopause/autopause/pkg/sampler"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "start":
		startDaemon(false)
	case "serve":
		startDaemon(true)
	case "stop":
		stopDaemon()
	case "status":
		showStatus()
	case "log":
		showActivityLog()
	case "ignore":
		manageIgnoreList()
	case "clear":
		clearDatabase()
	case "version":
		fmt.Printf("autopause version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`autopause - pauses your media player when other apps make noise

Usage:
  autopause <command> [options]

Commands:
  start                       Start the monitor daemon
  serve                       Start the daemon with the JSON API server
  stop                        Stop the monitor daemon
  status                      Show daemon status and current audio activity
  log [n] [--json]            Show the n most recent activity log entries
  ignore list                 Show the ignore list
  ignore add <pattern>        Add an application pattern to the ignore list
  ignore remove <pattern>     Remove a pattern from the ignore list
  clear                       Clear the activity log
  version                     Show version information
  help                        Show this help message

Examples:
  autopause start
  autopause status
  autopause log 10
  autopause ignore add Zoom
  autopause stop

Environment Variables:
  AUTOPAUSE_PLAYER            Controlled player name (default Spotify)
  AUTOPAUSE_DB_PATH           Activity log database path
  AUTOPAUSE_RETENTION_DAYS    Prune events older than this on start (0 keeps all)
  AUTOPAUSE_PLAYING_INTERVAL  Poll interval in seconds while playing
  AUTOPAUSE_IDLE_INTERVAL     Poll interval in seconds while idle
  AUTOPAUSE_DEBOUNCE_TICKS    Idle ticks before resuming
  AUTOPAUSE_IGNORE_LIST       Ignore list file path
  AUTOPAUSE_CONFIG            Config file path (default ~/.config/autopause/config.toml)
  AUTOPAUSE_PID_FILE          PID file path

Version: %s
`, version)
}

func startDaemon(withWeb bool) {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Check if already running
	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Daemon is already running (PID: %d)", pid)
	}

	if os.Getenv("AUTOPAUSE_DAEMON_CHILD") != "1" {
		// Parent process - fork and exit
		daemonize(cfg, withWeb)
		return
	}

	runDaemon(cfg, dm, withWeb)
}

func runDaemon(cfg *config.Config, dm *daemon.Daemon, withWeb bool) {
	// Redirect logs to file
	logFile, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	// Initialize database
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Ignore list with live reload
	store, err := ignore.NewStore(cfg.Monitor.IgnoreListPath)
	if err != nil {
		log.Fatalf("Failed to load ignore list: %v", err)
	}
	if err := store.Watch(); err != nil {
		log.Printf("Ignore list changes will not be picked up live: %v", err)
	}
	defer store.Close()

	// Audio sampler and player controller
	smp, err := sampler.New(cfg.Monitor.SamplerTimeout)
	if err != nil {
		log.Fatalf("Failed to initialize audio sampler: %v", err)
	}
	defer smp.Close()

	ctl, err := sampler.NewController(cfg.Player.Name, cfg.Player.CommandTimeout)
	if err != nil {
		log.Fatalf("Failed to initialize player controller: %v", err)
	}
	defer ctl.Close()

	log.Printf("Audio sampler initialized: %s", smp.Platform())

	// Write PID file
	if err := dm.WritePID(); err != nil {
		log.Fatalf("Failed to write PID file: %v", err)
	}
	defer dm.RemovePID()

	repo := database.NewRepository(db)

	// Prune the activity log before the loop starts writing to it.
	if days := cfg.Database.RetentionDays; days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		if pruned, err := repo.DeleteOldEvents(cutoff); err != nil {
			log.Printf("Failed to prune old activity events: %v", err)
		} else if pruned > 0 {
			log.Printf("Pruned %d activity events older than %d days", pruned, days)
		}
	}

	monitorSvc := monitor.NewService(cfg, repo, smp, ctl, store)

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var webServer *web.Server
	if withWeb {
		webServer = web.NewServer(cfg, repo, store, monitorSvc)
		go func() {
			if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Printf("Web server error: %v", err)
			}
		}()
		log.Printf("Web API available at: http://%s", webServer.GetAddress())
	}

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
		monitorSvc.Stop()
	}()

	log.Printf("Starting autopause daemon for %s...", cfg.Player.Name)
	log.Printf("Configuration:\n%s", cfg.String())

	if err := monitorSvc.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Monitor error: %v", err)
	}

	if webServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down web server: %v", err)
		}
	}

	log.Println("Daemon stopped successfully")
}

func stopDaemon() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}

	if !running {
		fmt.Println("Daemon is not running")
		return
	}

	fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
	if err := dm.Stop(); err != nil {
		log.Fatalf("Failed to stop daemon: %v", err)
	}

	fmt.Println("Daemon stopped successfully")
}

func showStatus() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}

	if !running {
		fmt.Println("Status: Not running")
	} else {
		fmt.Printf("Status: Running (PID: %d)\n", pid)
		fmt.Printf("Player: %s\n", cfg.Player.Name)
		fmt.Printf("Intervals: %v playing / %v idle\n",
			cfg.Monitor.PlayingInterval, cfg.Monitor.IdleInterval)
	}

	// Show what the monitor would see right now, daemon or not.
	ctl, err := sampler.NewController(cfg.Player.Name, cfg.Player.CommandTimeout)
	if err == nil {
		defer ctl.Close()
		if state, err := ctl.State(); err == nil {
			fmt.Printf("\n%s: %s\n", cfg.Player.Name, state)
		}
	}

	smp, err := sampler.New(cfg.Monitor.SamplerTimeout)
	if err != nil {
		fmt.Printf("\nCould not sample audio activity: %v\n", err)
		return
	}
	defer smp.Close()

	snap, err := smp.Sample()
	if err != nil {
		fmt.Printf("\nAudio sampling failed: %v\n", err)
		return
	}

	if snap.Empty() {
		fmt.Println("Audio activity: none")
	} else {
		fmt.Printf("Audio activity: %s\n", strings.Join(snap, ", "))
	}
}

func showActivityLog() {
	cfg := config.New()

	limit := 0
	jsonOutput := false
	for _, arg := range os.Args[2:] {
		if arg == "--json" {
			jsonOutput = true
		} else if n, err := strconv.Atoi(arg); err == nil {
			limit = n
		}
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	repo := database.NewRepository(db)
	rep := reporter.New(cfg, repo)

	events, err := rep.Recent(limit)
	if err != nil {
		log.Fatalf("Failed to read activity log: %v", err)
	}

	if jsonOutput {
		out, err := rep.FormatJSON(events)
		if err != nil {
			log.Fatalf("Failed to format JSON: %v", err)
		}
		fmt.Println(out)
	} else {
		fmt.Print(rep.FormatText(events))
	}
}

func manageIgnoreList() {
	cfg := config.New()

	store, err := ignore.NewStore(cfg.Monitor.IgnoreListPath)
	if err != nil {
		log.Fatalf("Failed to load ignore list: %v", err)
	}

	action := "list"
	if len(os.Args) > 2 {
		action = os.Args[2]
	}

	switch action {
	case "list":
		patterns := store.Patterns()
		if len(patterns) == 0 {
			fmt.Println("Ignore list is empty")
			return
		}
		for _, p := range patterns {
			fmt.Println(p)
		}

	case "add":
		if len(os.Args) < 4 {
			log.Fatal("Usage: autopause ignore add <pattern>")
		}
		if err := store.Add(os.Args[3]); err != nil {
			log.Fatalf("Failed to add pattern: %v", err)
		}
		fmt.Printf("Added %q to ignore list\n", os.Args[3])

	case "remove":
		if len(os.Args) < 4 {
			log.Fatal("Usage: autopause ignore remove <pattern>")
		}
		if err := store.Remove(os.Args[3]); err != nil {
			log.Fatalf("Failed to remove pattern: %v", err)
		}
		fmt.Printf("Removed %q from ignore list\n", os.Args[3])

	default:
		fmt.Printf("Unknown ignore action: %s\n", action)
		os.Exit(1)
	}
}

func clearDatabase() {
	cfg := config.New()

	fmt.Print("This will delete all activity log data. Are you sure? (yes/no): ")
	var response string
	fmt.Scanln(&response)

	if response != "yes" && response != "y" {
		fmt.Println("Operation cancelled")
		return
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	if err := repo.Clear(); err != nil {
		log.Fatalf("Failed to clear database: %v", err)
	}

	fmt.Println("Activity log cleared successfully")
}

func daemonize(cfg *config.Config, withWeb bool) {
	env := os.Environ()
	env = append(env, "AUTOPAUSE_DAEMON_CHILD=1")

	args := os.Args

	procAttr := &os.ProcAttr{
		Env:   env,
		Files: []*os.File{nil, nil, nil}, // stdin, stdout, stderr to /dev/null
		Sys: &syscall.SysProcAttr{
			Setsid: true, // Create new session
		},
	}

	process, err := os.StartProcess(args[0], args, procAttr)
	if err != nil {
		log.Fatalf("Failed to start daemon process: %v", err)
	}

	fmt.Printf("Daemon started successfully (PID: %d)\n", process.Pid)
	if withWeb {
		fmt.Printf("Web API available at: http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	}
	fmt.Printf("Logs: %s\n", cfg.Daemon.LogFile)
}
