package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/authentica/internal/logger"
	"github.com/ppiankov/authentica/internal/model"
)

// Version is the CLI version
const Version = "0.1.0"

var (
	cfgFile string
	verbose bool
	dbPath  string
	noCache bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "authentica",
	Short: "Authentica - authenticity signals for scholarly abstracts",
	Long: `Authentica scores scholarly abstracts for signs of machine generation
and collects evidence of copied phrasing.

It combines transparent linguistic heuristics, exact-phrase search against
scholarly indexes, and similarity to a labelled corpus. Every score carries
the rules that produced it.

Authentica reports signals, not verdicts.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Authentica.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "authentica v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.authentica/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "document store path (overrides store.path)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "disable the embedding and search cache")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	bindEnv()

	rootCmd.AddCommand(versionCmd)
}

// bindEnv maps every configuration key to an AUTHENTICA_* variable (nested keys use "_").
// Unmarshal only sees keys viper knows about, so each key is bound explicitly.
func bindEnv() {
	viper.SetEnvPrefix("AUTHENTICA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindStructEnv(reflect.TypeOf(model.Config{}), "")

	// API keys are read from the conventional variables as well as AUTHENTICA_*
	_ = viper.BindEnv("embedding.api_key", "AUTHENTICA_EMBEDDING_API_KEY", "OPENAI_API_KEY")
	_ = viper.BindEnv("search.api_key", "AUTHENTICA_SEARCH_API_KEY", "TAVILY_API_KEY")
}

func bindStructEnv(t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("mapstructure")
		if name == "" || name == "-" {
			continue
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if field.Type.Kind() == reflect.Struct {
			bindStructEnv(field.Type, key)
			continue
		}
		_ = viper.BindEnv(key)
	}
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Error("finding home directory: %v", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".authentica"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, the config file, environment, and global flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	return cfg, nil
}
