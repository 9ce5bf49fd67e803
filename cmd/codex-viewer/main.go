package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/burpheart/codex-viewer/internal/api"
	"github.com/burpheart/codex-viewer/internal/ingest"
	"github.com/burpheart/codex-viewer/internal/logging"
	"github.com/burpheart/codex-viewer/internal/markup"
	"github.com/burpheart/codex-viewer/internal/server"
	"github.com/burpheart/codex-viewer/internal/timeline"
	"github.com/burpheart/codex-viewer/pkg/types"
)

var (
	logPath    string
	configPath string
	host       string
	port       int
	title      string
	watch      bool
	logLevel   string
	noColor    bool

	outputPath string
	hideMeta   bool
	width      int
	apiAddr    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "codex-viewer",
		Short:        "Browse Codex JSONL session logs",
		Long:         `Render a Codex session log as a collapsible HTML timeline, served over HTTP with live reload.`,
		SilenceUsage: true,
	}

	// serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the timeline over HTTP",
		RunE:  runServe,
	}
	addLogFlags(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "127.0.0.1", "Listen host")
	serveCmd.Flags().IntVarP(&port, "port", "p", 8000, "Listen port")
	serveCmd.Flags().BoolVar(&watch, "watch", true, "Reload open pages when the log changes")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "basic", "Server log level (none, basic, requests, debug)")
	serveCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored server logs")

	// render command
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Write the timeline as a standalone HTML file",
		RunE:  runRender,
	}
	addLogFlags(renderCmd)
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")

	// dump command
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the timeline to the terminal",
		RunE:  runDump,
	}
	addLogFlags(dumpCmd)
	dumpCmd.Flags().BoolVar(&hideMeta, "hide-meta", false, "Omit bulk metadata entries")
	dumpCmd.Flags().IntVar(&width, "width", 100, "Wrap width in columns")

	// stats command
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics of a running viewer",
		RunE:  runStats,
	}
	statsCmd.Flags().StringVar(&apiAddr, "addr", "127.0.0.1:8000", "Address of the running viewer")

	rootCmd.AddCommand(serveCmd, renderCmd, dumpCmd, statsCmd)
	return rootCmd
}

func addLogFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&logPath, "log", "l", "", "Path to the JSONL log")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	cmd.Flags().StringVar(&title, "title", timeline.DefaultTitle, "Page title")
}

// loadConfig reads the config file, if any, and applies the flags given
// explicitly on the command line on top of it.
func loadConfig(cmd *cobra.Command) (*types.Config, error) {
	config := types.DefaultConfig()
	if configPath != "" {
		var err error
		if config, err = types.LoadConfig(configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("log") {
		config.LogPath = types.ExpandPath(logPath)
	}
	if flags.Changed("title") {
		config.Title = title
	}
	if flags.Changed("host") {
		config.Host = host
	}
	if flags.Changed("port") {
		config.Port = port
	}
	if flags.Changed("watch") {
		config.Watch = watch
	}
	if flags.Changed("log-level") {
		config.LogLevel = logLevel
	}
	if flags.Changed("no-color") {
		config.NoColor = noColor
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(config.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.New(
		logging.WithLevel(level),
		logging.WithColor(!config.NoColor),
	)

	srv, err := server.NewServer(*config, server.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	fmt.Printf("Serving %s at http://%s%s\n", config.LogPath, srv.Addr(), api.PathIndex)
	fmt.Println("Press Ctrl+C to stop...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Serve(ctx)
}

func loadDocument(config *types.Config) (timeline.Document, error) {
	lines, err := ingest.ReadFile(config.LogPath)
	if err != nil {
		return timeline.Document{}, err
	}
	return timeline.Assemble(config.Title, config.LogPath, ingest.Records(lines), server.NewRenderer(*config)), nil
}

func runRender(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := loadDocument(config)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(types.ExpandPath(outputPath))
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := markup.WriteHTML(w, doc); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	if outputPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d entries to %s\n", doc.Total, outputPath)
	}
	return nil
}

func runDump(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := loadDocument(config)
	if err != nil {
		return err
	}
	return markup.WriteText(cmd.OutOrStdout(), doc, markup.TextOptions{
		Width:           width,
		HideCollapsible: hideMeta,
	})
}

func runStats(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s%s", apiAddr, api.PathStats))
	if err != nil {
		return fmt.Errorf("connect to viewer: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("viewer returned %s", resp.Status)
	}

	var stats api.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Statistics:")
	fmt.Fprintf(out, "  Log:          %s\n", stats.Path)
	fmt.Fprintf(out, "  Lines:        %d (%d malformed)\n", stats.Lines, stats.Malformed)
	fmt.Fprintf(out, "  Entries:      %d (%d metadata)\n", stats.Cards, stats.Collapsible)
	fmt.Fprintf(out, "  Reloads:      %d\n", stats.Reloads)
	fmt.Fprintf(out, "  Live clients: %d\n", stats.WSClients)

	kinds := make([]string, 0, len(stats.Kinds))
	for k := range stats.Kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(out, "    %-32s %d\n", k, stats.Kinds[k])
	}
	return nil
}
