package dotlink

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotlink/internal/version"
	"github.com/arthur-debert/dotlink/pkg/cobrax/topics"
	"github.com/arthur-debert/dotlink/pkg/config"
	"github.com/arthur-debert/dotlink/pkg/filesystem"
	"github.com/arthur-debert/dotlink/pkg/installer"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/arthur-debert/dotlink/pkg/paths"
	"github.com/arthur-debert/dotlink/pkg/types"
	"github.com/arthur-debert/dotlink/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// globalOptions holds the persistent flags
type globalOptions struct {
	verbosity int
	dryRun    bool
	root      string
	home      string
	format    string
}

// env is everything a command needs once flags, config and paths are resolved
type env struct {
	paths  *paths.Paths
	config *config.Config
	format ui.Format
	fs     types.FS
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "dotlink",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLoggerTo(opts.verbosity, cmd.ErrOrStderr())
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		// With no command, install
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, opts)
		},
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&opts.root, "root", "", MsgFlagRoot)
	rootCmd.PersistentFlags().StringVar(&opts.home, "home", "", MsgFlagHome)
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", "", MsgFlagFormat)

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	// Set custom help template
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	// Add all commands
	rootCmd.AddCommand(newInstallCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newGuideCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	// Topic help: `dotlink help dirlinks`, `dotlink help topics`
	if err := initTopics(rootCmd, opts); err != nil {
		log.Warn().Err(err).Msg("Failed to initialize help topics")
	}

	return rootCmd
}

func initTopics(rootCmd *cobra.Command, opts *globalOptions) error {
	sub, err := fs.Sub(topicsFS, "msgs/topics")
	if err != nil {
		return err
	}

	renderer := topics.RendererFunc(func(content, ext string) string {
		if ext != ".md" {
			return content
		}
		format, err := ui.ParseFormat(opts.format)
		if err != nil {
			format = ui.FormatAuto
		}
		return ui.RenderGuide(content, ui.Resolve(format, rootCmd.OutOrStdout()), 80)
	})

	if err := topics.InitializeWithOptions(rootCmd, sub, topics.Options{Renderer: renderer}); err != nil {
		return err
	}
	rootCmd.SetHelpCommandGroupID("misc")
	return nil
}

// loadEnv resolves the repository root, configuration and paths for a run
func loadEnv(cmd *cobra.Command, opts *globalOptions) (*env, error) {
	root, fallback, err := paths.FindRoot(opts.root)
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}

	cfg, err := config.Load(root, map[string]interface{}{
		"paths.home":    opts.home,
		"output.format": opts.format,
	})
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}

	home, err := paths.HomeDir(cfg.Paths.Home)
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}

	p, err := paths.New(root, home, cfg.Paths.Source, cfg.Paths.Dirlinks, fallback)
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}

	if p.UsedFallback() {
		fmt.Fprintf(cmd.ErrOrStderr(), MsgFallbackWarning+"\n", p.Root())
	} else if os.Getenv("DOTLINK_DEBUG") != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), MsgDebugRoot, p.Root(), p.UsedFallback())
	}

	format, err := ui.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, fmt.Errorf(MsgErrFormat, err)
	}

	log.Info().
		Str("root", p.Root()).
		Str("source", p.SourceRoot()).
		Str("home", p.Home()).
		Str("dirlinks", p.DirlinksFile()).
		Msg("Paths resolved")

	return &env{
		paths:  p,
		config: cfg,
		format: format,
		fs:     filesystem.NewOS(),
	}, nil
}

func (e *env) installer(dryRun bool, reporter installer.Reporter) *installer.Installer {
	return installer.New(e.fs, installer.Options{
		SourceRoot:   e.paths.SourceRoot(),
		DestRoot:     e.paths.Home(),
		DirlinksFile: e.paths.DirlinksFile(),
		ExtraLinks:   e.config.Links,
		DryRun:       dryRun,
		Reporter:     reporter,
	})
}

func runInstall(cmd *cobra.Command, opts *globalOptions) error {
	e, err := loadEnv(cmd, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	// JSON output replaces the progress lines with the run's result
	var reporter installer.Reporter
	if e.format != ui.FormatJSON {
		reporter = ui.NewReporter(out, e.format)
	}

	result, err := e.installer(opts.dryRun, reporter).Install()
	if err != nil {
		return err
	}

	if e.format == ui.FormatJSON {
		return ui.WriteJSON(out, result)
	}
	return nil
}

func newInstallCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "install",
		Short:   MsgInstallShort,
		Long:    MsgInstallLong,
		Example: MsgInstallExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, opts)
		},
	}
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		Example: MsgStatusExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}

			statuses, err := e.installer(false, nil).Status()
			if err != nil {
				return err
			}

			return ui.RenderStatus(cmd.OutOrStdout(), statuses, e.format)
		},
	}
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}

			if e.format == ui.FormatJSON {
				return ui.WriteJSON(cmd.OutOrStdout(), e.config)
			}

			out, err := e.config.TOML()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func newGuideCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "guide",
		Short:   MsgGuideShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ui.ParseFormat(opts.format)
			if err != nil {
				return fmt.Errorf(MsgErrFormat, err)
			}
			out := cmd.OutOrStdout()
			_, err = fmt.Fprint(out, ui.RenderGuide(guideContent, ui.Resolve(format, out), 80))
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "man [dir]",
		Short:   MsgManShort,
		GroupID: "misc",
		Hidden:  true,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			header := &doc.GenManHeader{
				Title:   "DOTLINK",
				Section: "1",
			}
			return doc.GenManTree(cmd.Root(), header, dir)
		},
	}
}
