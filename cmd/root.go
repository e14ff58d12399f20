package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kbguard",
	Short: "Access control management for knowledge bases.",
	Long: `kbguard keeps per-resource read/write policies for knowledge bases,
evaluates permission checks against them and serves the administrative
API used to view, edit and bulk-update those policies.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.kbguard.yaml)")
}

// initConfig reads in the config file and environment variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".kbguard")
	}

	viper.SetEnvPrefix("KBGUARD")
	viper.AutomaticEnv()

	viper.SetDefault("debug", false)
	viper.SetDefault("log_dir", "./logs")
	viper.SetDefault("listen_addr", ":8080")
	viper.SetDefault("bulk_parallelism", 4)
	viper.SetDefault("store.backend", "memory")
	viper.SetDefault("store.badger_dir", "./data")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("using config file:", viper.ConfigFileUsed())
	}
}
