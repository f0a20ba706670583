package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/diagrammer/pkg/buildinfo"
	"github.com/matzehuels/diagrammer/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "diagrammer"

	// configFile is the config file name inside the config directory.
	configFile = "config.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Persistent flags.
	configPath string
	backend    string
	namespace  string
	dataDir    string
	yes        bool
	verbose    bool

	// in and out are the terminal streams used by prompts and output.
	in  io.Reader
	out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Diagrammer edits node-and-edge diagrams",
		Long: `Diagrammer keeps a diagram of nodes and directed edges in a key-value store
and serves it to a browser canvas. The same diagram can be edited from the
command line.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/diagrammer/config.toml)")
	flags.StringVar(&c.backend, "backend", "", "storage backend: "+joinBackends())
	flags.StringVar(&c.namespace, "namespace", "", "keep the diagram under a separate set of keys")
	flags.StringVar(&c.dataDir, "data-dir", "", "directory for file, badger and sqlite storage")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.BoolVarP(&c.yes, "yes", "y", false, "answer yes to confirmation prompts")

	_ = root.RegisterFlagCompletionFunc("backend", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return config.Backends, cobra.ShellCompDirectiveNoFileComp
	})

	// Register all subcommands
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.nodeCommand())
	root.AddCommand(c.edgeCommand())
	root.AddCommand(c.changesCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.clearCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and applies flag overrides.
// An explicit --config must exist; the default location is optional.
func (c *CLI) loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		var dir string
		if dir, err = configDir(); err == nil {
			cfg, err = config.LoadOptional(filepath.Join(dir, configFile))
		}
	}
	if err != nil {
		return config.Config{}, err
	}

	if c.backend != "" {
		cfg.Storage.Backend = c.backend
	}
	if c.namespace != "" {
		cfg.Storage.Namespace = c.namespace
	}
	if c.dataDir != "" {
		cfg.Storage.Dir = c.dataDir
	}
	if cfg.Storage.Dir == "" {
		dir, err := dataDir()
		if err != nil {
			return config.Config{}, err
		}
		cfg.Storage.Dir = dir
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if !c.verbose {
		lvl, _ := log.ParseLevel(cfg.Log.Level)
		c.SetLogLevel(lvl)
	}
	return cfg, nil
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/diagrammer/).
func configDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// dataDir returns the data directory using XDG standard (~/.local/share/diagrammer/).
func dataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}
