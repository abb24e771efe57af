// Package cli implements the categories command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/categories/internal/app"
	"github.com/mesh-intelligence/categories/internal/form"
	"github.com/mesh-intelligence/categories/internal/paths"
	"github.com/mesh-intelligence/categories/internal/registry"
	"github.com/mesh-intelligence/categories/internal/serial"
	"github.com/mesh-intelligence/categories/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

var flags rootFlags

// NewRootCmd creates the top-level "categories" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "categories",
		Short: "Manage categorized content",
		Long: "categories stores pages and categories in a content tree, tags content\n" +
			"with categories, and exports and imports subtrees as XML.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/"+paths.DefaultConfigDirName+")")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newTypesCmd())
	root.AddCommand(newContentCmd())
	root.AddCommand(newCategoryCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newImportCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "categories:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode classifies err. Errors caused by the arguments are user errors;
// everything else is a system error.
func exitCode(err error) int {
	for _, userErr := range []error{
		errUsage,
		types.ErrNotFound,
		types.ErrInvalidTitle,
		types.ErrInvalidSlug,
		types.ErrDuplicatePath,
		types.ErrNotCategory,
		types.ErrInvalidItem,
		types.ErrInvalidType,
		types.ErrInvalidPath,
		registry.ErrUnknownType,
		form.ErrNotValid,
		serial.ErrMalformedRecord,
	} {
		if errors.Is(err, userErr) {
			return exitUserError
		}
	}
	return exitSysError
}

// errUsage marks invalid command arguments.
var errUsage = errors.New("invalid arguments")

// settings are the resolved directories and configuration of a run.
type settings struct {
	configDir string
	dataDir   string
	config    *viper.Viper
}

// loadSettings resolves the directories and reads config.yaml, writing the
// default file on first run.
func loadSettings() (settings, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return settings{}, fmt.Errorf("load config: %w", err)
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return settings{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return settings{configDir: configDir, dataDir: dataDir, config: cfg}, nil
}

// openApp attaches the store and builds the registries. The caller must
// Close the app.
func openApp(s settings) (*app.App, error) {
	logger, err := app.NewLogger(s.config.GetString(cfgKeyLogLevel), flags.verbose)
	if err != nil {
		return nil, err
	}
	return app.Open(app.Config{
		Store: types.Config{
			Backend: s.config.GetString(cfgKeyBackend),
			DataDir: s.dataDir,
		},
		Extends:    s.config.GetStringSlice(cfgKeyExtends),
		LightForms: s.config.GetBool(cfgKeyLightForms),
	}, logger)
}

// withApp opens the app, runs fn, and closes the app.
func withApp(fn func(a *app.App) error) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	a, err := openApp(s)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Logger.Sync()
		_ = a.Close()
	}()
	return fn(a)
}
