// Package cli implements the recruiter command line: the serve command plus
// the admin tools that operate on the same storage.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"hrhelper/recruiter-service/internal/config"
	"hrhelper/recruiter-service/internal/logger"
)

const app = "recruiter"

// Actual version can be specified in build command.
var version = "unknown"

// cli carries state shared by every sub-command.
type cli struct {
	v       *viper.Viper
	cfgFile string
	envFile string
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	c := &cli{v: config.New()}

	root := &cobra.Command{
		Use:          app,
		Short:        "recruiter serves job offers, scores CVs against them and tracks review decisions",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "a YAML config file")
	pf.StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	pf.BoolP("debug", "d", false, "verbose/debug output")
	pf.BoolP("json", "j", false, "json format for logging")
	pf.String("storage", config.StoragePostgres, "storage backend: postgres or memory")

	for _, name := range []string{"debug", "json", "storage"} {
		_ = c.v.BindPFlag(name, pf.Lookup(name))
	}

	root.AddCommand(
		c.serveCommand(),
		c.rescoreCommand(),
		c.seedCommand(),
		c.usersCommand(),
		versionCommand(),
	)
	return root
}

// load resolves configuration and builds the logger.
func (c *cli) load() (*config.Config, *zap.Logger, error) {
	if err := config.LoadDotEnv(c.envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(logger.Options{JSON: cfg.JSON, Debug: cfg.Debug, Version: version})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
