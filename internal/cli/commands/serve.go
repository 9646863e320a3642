package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/folio/internal/ui"
)

// devSessionSecret signs cookies when no ui.session_secret is configured.
const devSessionSecret = "folio-dev-secret-change-in-production" //nolint:gosec

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Start the resume builder",
		Long: `Start a local web server hosting the resume builder.

Modules from the catalog are listed in the toolbox and can be dragged onto
the canvas. Configurable modules open a settings dialog. When the catalog is
a local file, open pages reload when it changes.`,
		Example: `  # Start the builder on the default port
  folio serve

  # Use another catalog and port
  folio serve --catalog ./resume.yaml --port 3000

  # Serve a seeded SQLite store without opening a browser
  folio serve --store .folio/catalog.db --open=false`,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().String("host", "", "Host to bind (default: 127.0.0.1)")
	cmd.Flags().Bool("watch", true, "Reload pages when the catalog file changes")
	cmd.Flags().Bool("dev", false, "Serve unminified assets and enable hot reload")
	cmd.Flags().Bool("open", true, "Open the builder in a browser")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)
	cfg := cc.Cfg

	source, cleanup, err := openCatalogSource(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	secret := cfg.UI.SessionSecret
	if secret == "" {
		cc.Logger.Warn("ui.session_secret is not set, using the development secret")
		secret = devSessionSecret
	}

	watchPath := ""
	if cfg.Catalog.Store == "" && cfg.Catalog.URL == "" {
		watchPath = cfg.Catalog.Path
	}

	server := ui.NewServer(ui.Config{
		Source:        source,
		WatchPath:     watchPath,
		Host:          cfg.UI.Host,
		Port:          cfg.UI.Port,
		Watch:         cfg.UI.Watch,
		Dev:           cfg.UI.Dev,
		SessionSecret: secret,
		Preselect:     cfg.UI.PreselectSelection,
		WorkspaceTTL:  cfg.UI.WorkspaceTTL,
		Logger:        cc.Logger,
	})

	ln, err := net.Listen("tcp", cfg.UI.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.UI.Addr(), err)
	}

	url := "http://" + ln.Addr().String()
	if cfg.UI.AutoOpen {
		go openBrowser(url)
	}

	r := cc.Renderer
	r.Success("Serving " + describeSource(cfg))
	r.Println("Builder running at " + url)
	r.Muted("Press Ctrl+C to stop")

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return server.ServeListener(ctx, ln)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(context.Background(), "open", url)
	case "linux":
		cmd = exec.CommandContext(context.Background(), "xdg-open", url)
	case "windows":
		cmd = exec.CommandContext(context.Background(), "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}

	_ = cmd.Start()
}
