package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"text/tabwriter"

	"helm/internal/app"
	helmclient "helm/internal/client"
	"helm/internal/config"
	"helm/internal/logging"
	"helm/internal/store"
	"helm/internal/types"
)

const usageText = `helm is a terminal control surface for the Helm orchestrator.

Usage:
  helm [command] [flags]

Commands:
  ui        run the terminal UI (default)
  sessions  list sessions
  new       create a session
  delete    delete a session
  rename    rename a session
  send      submit a task to a session
  cancel    cancel a running task
  history   dump session history as JSON
  config    print the effective configuration
  version   print the build version
  help      show help

Examples:
  helm
  helm sessions
  helm new --title "research" --kind autonomous
  helm rename <session-id> "incident review"
  helm send <session-id> "summarize the open incidents"
  helm cancel <session-id> <task-id>
`

const version = "dev"

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		exitOnErr("ui", runUI(nil))
		return
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
	case "ui":
		exitOnErr("ui", runUI(args[1:]))
	case "sessions":
		exitOnErr("sessions", runSessions(args[1:]))
	case "new":
		exitOnErr("new", runNew(args[1:]))
	case "delete":
		exitOnErr("delete", runDelete(args[1:]))
	case "rename":
		exitOnErr("rename", runRename(args[1:]))
	case "send":
		exitOnErr("send", runSend(args[1:]))
	case "cancel":
		exitOnErr("cancel", runCancel(args[1:]))
	case "history":
		exitOnErr("history", runHistory(args[1:]))
	case "config":
		exitOnErr("config", runConfig(args[1:]))
	case "version":
		fmt.Fprintln(os.Stdout, buildVersion())
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func newClient() (*helmclient.Client, config.CoreConfig, error) {
	cfg, err := config.LoadCoreConfig()
	if err != nil {
		return nil, config.CoreConfig{}, err
	}
	return helmclient.New(cfg), cfg, nil
}

func runUI(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	backend := fs.String("backend", "", "storage backend (bbolt or file)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, cfg, err := newClient()
	if err != nil {
		return err
	}
	uiCfg, err := config.LoadUIConfig()
	if err != nil {
		return err
	}

	logPath, err := config.LogPath()
	if err != nil {
		return err
	}
	logger, err := logging.NewFile(logPath, logging.ParseLevel(cfg.LogLevel()))
	if err != nil {
		return err
	}

	repo, err := openRepository(cfg, *backend)
	if err != nil {
		return err
	}
	defer repo.Close()

	return app.Run(app.NewClientAPI(client), repo, uiCfg, logger)
}

func openRepository(cfg config.CoreConfig, backendOverride string) (store.Repository, error) {
	sessionsPath, err := config.SessionsPath()
	if err != nil {
		return nil, err
	}
	statePath, err := config.StatePath()
	if err != nil {
		return nil, err
	}
	dbPath, err := config.DBPath()
	if err != nil {
		return nil, err
	}
	paths := store.RepositoryPaths{
		SessionsPath: sessionsPath,
		AppStatePath: statePath,
		DBPath:       dbPath,
	}
	backend := cfg.StorageBackend()
	if backendOverride != "" {
		backend = backendOverride
	}
	repo, err := store.OpenRepository(paths, backend)
	if err != nil {
		return nil, err
	}
	if err := store.SeedRepositoryFromFiles(context.Background(), repo, paths); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return repo, nil
}

func runSessions(args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, _, err := newClient()
	if err != nil {
		return err
	}
	sessions, err := client.ListSessions(context.Background())
	if err != nil {
		return err
	}
	printSessions(sessions)
	return nil
}

func runNew(args []string) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	title := fs.String("title", "", "session title")
	kind := fs.String("kind", string(types.SessionKindUser), "session kind (user or autonomous)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, _, err := newClient()
	if err != nil {
		return err
	}
	session, err := client.CreateSession(context.Background(), helmclient.CreateSessionRequest{
		Title: *title,
		Kind:  types.SessionKind(*kind),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, session.ID)
	return nil
}

func runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("delete requires a session id")
	}

	client, _, err := newClient()
	if err != nil {
		return err
	}
	if err := client.DeleteSession(context.Background(), fs.Arg(0)); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "ok")
	return nil
}

func runRename(args []string) error {
	fs := flag.NewFlagSet("rename", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("rename requires a session id and a title")
	}
	title := strings.Join(fs.Args()[1:], " ")

	client, _, err := newClient()
	if err != nil {
		return err
	}
	if err := client.RenameSession(context.Background(), fs.Arg(0), helmclient.RenameSessionRequest{Title: title}); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "ok")
	return nil
}

func runSend(args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("send requires a session id and task text")
	}
	id := fs.Arg(0)
	text := strings.Join(fs.Args()[1:], " ")

	client, _, err := newClient()
	if err != nil {
		return err
	}
	resp, err := client.SubmitTask(context.Background(), id, helmclient.SubmitTaskRequest{Text: text})
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, resp.TaskID)
	return nil
}

func runCancel(args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("cancel requires a session id and task id")
	}

	client, _, err := newClient()
	if err != nil {
		return err
	}
	if err := client.CancelTask(context.Background(), fs.Arg(0), fs.Arg(1)); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "ok")
	return nil
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	lines := fs.Int("lines", 200, "number of history items to fetch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("history requires a session id")
	}

	client, _, err := newClient()
	if err != nil {
		return err
	}
	resp, err := client.History(context.Background(), fs.Arg(0), *lines)
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(resp.Items)
}

func runConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadCoreConfig()
	if err != nil {
		return err
	}
	path, err := config.CoreConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "config path: %s\n", path)
	fmt.Fprintf(os.Stdout, "orchestrator: %s\n", cfg.OrchestratorBaseURL())
	fmt.Fprintf(os.Stdout, "log level: %s\n", cfg.LogLevel())
	backend := cfg.StorageBackend()
	if backend == "" {
		backend = store.RepositoryBackendBbolt
	}
	fmt.Fprintf(os.Stdout, "storage backend: %s\n", backend)
	return nil
}

func printSessions(sessions []*types.Session) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tKIND\tCREATED\tTITLE")
	for _, session := range sessions {
		created := "-"
		if !session.CreatedAt.IsZero() {
			created = session.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", session.ID, session.Kind, created, session.Title)
	}
	_ = writer.Flush()
}

func exitOnErr(label string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var revision string
		var modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if revision != "" {
			if modified == "true" {
				return revision + "-dirty"
			}
			return revision
		}
	}
	return version
}
