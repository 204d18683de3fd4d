// cmd/nereid/main.go
package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/bnomei/nereid/internal/config"
	"github.com/bnomei/nereid/internal/flowlayout"
	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
	"github.com/bnomei/nereid/internal/recents"
	"github.com/bnomei/nereid/internal/render"
	"github.com/bnomei/nereid/internal/routing"
	"github.com/bnomei/nereid/internal/rpcserver"
	"github.com/bnomei/nereid/internal/seqlayout"
	"github.com/bnomei/nereid/internal/sessionfolder"
	"github.com/bnomei/nereid/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPathFlag string
	durabilityFlag string

	newName string
	newKind string

	serveAddr  string
	serveLimit float64
	serveBurst int

	renderDiagramID string
)

func versionString() string {
	return fmt.Sprintf("nereid %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "nereid",
		Short:         "A sequence/flowchart diagram editor and server",
		Long:          "nereid — edit, serve, and render sequence and flowchart diagrams stored as session folders.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&durabilityFlag, "durability", "", "override durability mode (relaxed|durable)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(versionString())
		},
	}

	newCmd := &cobra.Command{
		Use:   "new <root>",
		Short: "Create a new session folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runNew(args[0])
		},
	}
	newCmd.Flags().StringVar(&newName, "diagram", "main", "initial diagram id/name")
	newCmd.Flags().StringVar(&newKind, "kind", "sequence", "initial diagram kind (sequence|flowchart)")

	editCmd := &cobra.Command{
		Use:   "edit <root>",
		Short: "Open a session folder in the interactive editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runEdit(args[0])
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve <root>",
		Short: "Serve a session folder over the JSON-RPC protocol",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runServe(args[0])
		},
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:4747", "address to listen on")
	serveCmd.Flags().Float64Var(&serveLimit, "rate", 10, "apply_ops requests allowed per second per connection")
	serveCmd.Flags().IntVar(&serveBurst, "burst", 20, "apply_ops burst size per connection")

	renderCmd := &cobra.Command{
		Use:   "render <root>",
		Short: "Render a diagram from a session folder to the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runRender(args[0])
		},
	}
	renderCmd.Flags().StringVar(&renderDiagramID, "diagram", "", "diagram id to render (defaults to the session's active diagram)")

	rootCmd.AddCommand(versionCmd, newCmd, editCmd, serveCmd, renderCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the config path and applies the --durability override.
func loadConfig() (config.Config, error) {
	cfgPath := configPathFlag
	if cfgPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return config.Config{}, fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgPath = filepath.Join(home, ".config", "nereid", "config.toml")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}

	if durabilityFlag != "" {
		cfg.Durability = config.Durability(durabilityFlag)
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}

	return cfg, nil
}

// openRecents opens the recents index at cfg's configured path. Failure to
// open it is never fatal — recents tracking is a convenience, not a
// correctness requirement for editing or serving a session folder.
func openRecents(cfg config.Config) *recents.Store {
	store, err := recents.Open(cfg.RecentsDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: recents index unavailable: %v\n", err)
		return nil
	}
	return store
}

func runNew(root string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := os.Stat(root); err == nil {
		return fmt.Errorf("new: %s already exists", root)
	}

	sessionName := filepath.Base(filepath.Clean(root))
	sessionID, err := ids.NewSessionId(sessionName)
	if err != nil {
		return fmt.Errorf("new: invalid session name %q: %w", sessionName, err)
	}
	session := model.NewSession(sessionID)

	diagramID, err := ids.NewDiagramId(newName)
	if err != nil {
		return fmt.Errorf("new: invalid diagram id %q: %w", newName, err)
	}

	var ast model.DiagramAst
	switch newKind {
	case "sequence":
		ast = model.NewSequenceDiagramAst()
	case "flowchart":
		ast = model.NewFlowchartDiagramAst()
	default:
		return fmt.Errorf("new: unknown diagram kind %q (want sequence or flowchart)", newKind)
	}
	diagram := model.NewDiagram(diagramID, newName, ast)
	session.Diagrams.Set(diagramID, diagram)
	session.ActiveDiagramID = &diagramID

	if err := sessionfolder.Save(session, root, cfg.Durability); err != nil {
		return fmt.Errorf("new: saving session folder: %w", err)
	}

	if store := openRecents(cfg); store != nil {
		defer store.Close()
		if err := store.Touch(root); err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording recent session: %v\n", err)
		}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	fmt.Printf("Created session folder at %s\n", abs)
	return nil
}

func runEdit(root string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	session, err := sessionfolder.Load(root)
	if err != nil {
		return fmt.Errorf("edit: loading session folder: %w", err)
	}

	store := openRecents(cfg)
	if store != nil {
		defer store.Close()
		if err := store.Touch(root); err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording recent session: %v\n", err)
		}
	}

	m := tui.NewModel(session, root, cfg, store)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("running editor: %w", err)
	}

	if err := sessionfolder.Save(session, root, cfg.Durability); err != nil {
		return fmt.Errorf("edit: saving session folder on exit: %w", err)
	}
	return nil
}

func runServe(root string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", serveAddr)
	if err != nil {
		return fmt.Errorf("serve: listening on %s: %w", serveAddr, err)
	}
	defer ln.Close()

	srv := rpcserver.New(cfg.Durability, rate.Limit(serveLimit), serveBurst)
	fmt.Printf("nereid serving %s on %s\n", root, ln.Addr())
	return srv.Serve(ln)
}

func runRender(root string) error {
	session, err := sessionfolder.Load(root)
	if err != nil {
		return fmt.Errorf("render: loading session folder: %w", err)
	}

	var diagram *model.Diagram
	if renderDiagramID != "" {
		diagramID, err := ids.NewDiagramId(renderDiagramID)
		if err != nil {
			return fmt.Errorf("render: invalid diagram id %q: %w", renderDiagramID, err)
		}
		d, ok := session.Diagrams.Get(diagramID)
		if !ok {
			return fmt.Errorf("render: no diagram %q in session", renderDiagramID)
		}
		diagram = d
	} else if session.ActiveDiagramID != nil {
		d, ok := session.Diagrams.Get(*session.ActiveDiagramID)
		if !ok {
			return fmt.Errorf("render: active diagram %q not found in session", session.ActiveDiagramID.String())
		}
		diagram = d
	} else if keys := session.Diagrams.Keys(); len(keys) > 0 {
		d, _ := session.Diagrams.Get(keys[0])
		diagram = d
	} else {
		return fmt.Errorf("render: session has no diagrams")
	}

	var out string
	switch diagram.Ast.Kind {
	case model.KindSequence:
		layout := seqlayout.Layout(diagram.Ast.Sequence)
		out = render.Sequence(diagram.Ast.Sequence, layout)
	case model.KindFlowchart:
		layout := flowlayout.Layout(diagram.Ast.Flowchart)
		routes := routing.Route(diagram.Ast.Flowchart, layout)
		out = render.Flowchart(diagram.Ast.Flowchart, layout, routes)
	default:
		return fmt.Errorf("render: unknown diagram kind")
	}

	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		if widest := widestLine(out); widest > width {
			fmt.Fprintf(os.Stderr, "warning: diagram is %d columns wide, terminal is %d\n", widest, width)
		}
	}

	fmt.Println(out)
	return nil
}

func widestLine(s string) int {
	widest := 0
	for _, line := range strings.Split(s, "\n") {
		if n := len([]rune(line)); n > widest {
			widest = n
		}
	}
	return widest
}
