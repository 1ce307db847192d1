package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bastiangx/echoes/internal/cli"
	"github.com/bastiangx/echoes/internal/logger"
	"github.com/bastiangx/echoes/internal/tui"
	"github.com/bastiangx/echoes/internal/utils"
	"github.com/bastiangx/echoes/internal/watch"
	"github.com/bastiangx/echoes/pkg/config"
	"github.com/bastiangx/echoes/pkg/engine"
	"github.com/bastiangx/echoes/pkg/server"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	debug      bool
	minLen     int
	tokenizer  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           AppName,
		Short:         "Highlight the words you keep repeating",
		Long:          "Echoes finds repeated words in a text, ranks them by frequency and colours each one.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(opts.debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config.toml (default: ~/.config/echoes/config.toml)")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "Enable debug mode with detailed logging")
	flags.IntVar(&opts.minLen, "min", 0, "Minimum word length in characters")
	flags.StringVar(&opts.tokenizer, "tokenizer", "", "Word pattern: auto, unicode or ascii")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the MessagePack IPC server on stdin/stdout",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "cli",
			Short: "Type lines and print the repeated words after each one",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _ := opts.load(cmd)
				sigHandler()
				color := cli.ColorEnabled(cfg.CLI.Color, os.Stdout)
				return cli.NewInputHandler(cfg, os.Stdin, os.Stdout, color, nil).Start()
			},
		},
		&cobra.Command{
			Use:   "edit [file]",
			Short: "Edit text in the terminal with live highlighting",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _ := opts.load(cmd)
				text := ""
				if len(args) == 1 {
					var err error
					text, err = utils.ReadText(args[0], cfg.Server.MaxTextBytes)
					if err != nil && !errors.Is(err, fs.ErrNotExist) {
						return err
					}
				}
				return tui.Run(cmd.Context(), cfg, text)
			},
		},
		&cobra.Command{
			Use:   "watch <file>",
			Short: "Print the repeated words of a file every time it is saved",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWatch(cmd, opts, args[0])
			},
		},
		newConfigCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				showVersion()
			},
		},
	)
	return root
}

// load reads the config file and applies the flags that were set explicitly.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, string) {
	cfg, path, err := config.LoadConfigWithPriority(o.configPath)
	if err != nil {
		log.Warnf("Failed to load config: %v. Using defaults...", err)
		cfg = config.DefaultConfig()
	}
	if cmd.Flags().Changed("min") {
		cfg.Engine.MinWordLength = o.minLen
	}
	if cmd.Flags().Changed("tokenizer") {
		cfg.Engine.Tokenizer = o.tokenizer
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(path))
	return cfg, path
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, path := opts.load(cmd)
	srv := server.NewServer(cfg)
	if opts.debug {
		showStartupInfo(srv.Session(), config.GetActiveConfigPath(path))
	}
	sigHandler()
	return srv.Start()
}

func runWatch(cmd *cobra.Command, opts *rootOptions, path string) error {
	cfg, _ := opts.load(cmd)
	wlog := logger.New("watch")

	source, err := watch.NewFileSource(path, cfg.Server.MaxTextBytes, cfg.Engine.MinWordLength)
	if err != nil {
		return err
	}
	term := cli.NewTerminal(os.Stdout, cfg.CLI, cli.ColorEnabled(cfg.CLI.Color, os.Stdout))
	ctrl := engine.New(source, term, engine.OptionsFrom(cfg))
	defer ctrl.Close()

	w := watch.NewWatcher(source, ctrl, watch.DefaultDebounce, func(pass *engine.Pass) {
		wlog.Debug("pass", "n", ctrl.Passes(), "tracked", ctrl.Tracked().Len(),
			"height", term.ListHeight(), "elapsed", pass.Elapsed)
		term.Print()
	})
	term.Printf("Watching %s, ctrl+c to stop", source.Path())
	return w.Run(cmd.Context())
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change the config file",
	}

	var (
		minLen    int
		tokenizer string
		purgeMs   int
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Update engine values in the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := config.LoadConfigWithPriority(opts.configPath)
			if err != nil {
				return err
			}
			if path == "" {
				return fmt.Errorf("no config file to update")
			}
			var minPtr, purgePtr *int
			var tokPtr *string
			if cmd.Flags().Changed("min") {
				minPtr = &minLen
			}
			if cmd.Flags().Changed("tokenizer") {
				tokPtr = &tokenizer
			}
			if cmd.Flags().Changed("purge-ms") {
				purgePtr = &purgeMs
			}
			if minPtr == nil && tokPtr == nil && purgePtr == nil {
				return fmt.Errorf("nothing to update: pass --min, --tokenizer or --purge-ms")
			}
			if err := cfg.Update(path, minPtr, tokPtr, purgePtr); err != nil {
				return fmt.Errorf("failed to update config: %w", err)
			}
			fmt.Printf("Updated %s\n", config.GetActiveConfigPath(path))
			return nil
		},
	}
	// these shadow the persistent flags of the same name
	set.Flags().IntVar(&minLen, "min", 0, "Minimum word length to save")
	set.Flags().StringVar(&tokenizer, "tokenizer", "", "Tokenizer mode to save")
	set.Flags().IntVar(&purgeMs, "purge-ms", 0, "Purge delay in milliseconds to save")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the path of the active config file",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				_, path := opts.load(cmd)
				fmt.Println(config.GetActiveConfigPath(path))
			},
		},
		&cobra.Command{
			Use:   "rebuild",
			Short: "Overwrite the default config file with defaults",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.RebuildConfigFile(); err != nil {
					return fmt.Errorf("failed to rebuild config: %w", err)
				}
				fmt.Printf("Rebuilt %s\n", config.GetActiveConfigPath(""))
				return nil
			},
		},
		set,
	)
	return cmd
}
