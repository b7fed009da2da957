package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/spark-root/coffea-slurm/internal/config"
	"github.com/spark-root/coffea-slurm/internal/driver"
	"github.com/spark-root/coffea-slurm/internal/errors"
	"github.com/spark-root/coffea-slurm/internal/logs"
)

// CLI flags
var (
	configPath  string
	master      string
	tree        string
	locators    []string
	logLevel    string
	showColumns bool
)

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the yaml config file")
	rootCmd.PersistentFlags().StringVar(&master, "master", "", "master URL, e.g. local[4]")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "engine log level (ALL, DEBUG, INFO, WARN, ERROR, FATAL, OFF, TRACE)")

	runCmd.Flags().StringVar(&tree, "tree", "", "name of the tree to count")
	runCmd.Flags().StringArrayVar(&locators, "locator", nil, "resource locator of a ROOT file, repeatable")
	runCmd.Flags().BoolVar(&showColumns, "show-columns", false, "print the columns of the tree after the count")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(confCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hepsmoke",
	Short: "Smoke test for reading ROOT event files through a processing session",
	Long: `hepsmoke builds a processing session with the root format connector, counts the
records of one tree of a ROOT file on a remote storage federation and prints the
effective session configuration sorted by key.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Count the records of the configured tree and print the session configuration",
	Run: func(cmd *cobra.Command, args []string) {
		jobDriver := newDriver()
		jobDriver.ShowColumns = showColumns

		err := jobDriver.Run(context.Background(), os.Stdout)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"Kind": errors.KindOf(err),
			}).WithError(err).Fatal("Smoke test failed")
		}
	},
}

var confCmd = &cobra.Command{
	Use:   "conf",
	Short: "Print the effective session configuration without reading data",
	Run: func(cmd *cobra.Command, args []string) {
		jobDriver := newDriver()

		s, err := jobDriver.Session()
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"Kind": errors.KindOf(err),
			}).WithError(err).Fatal("Error creating the session")
		}

		if err := driver.PrintConf(os.Stdout, s.Conf()); err != nil {
			logrus.WithError(err).Fatal("Error printing the configuration")
		}
	},
}

// newDriver reads the config file, applies the flags and creates the driver
func newDriver() *driver.Driver {
	conf, err := config.ReadLocalConfigFile(configPath)
	if err != nil {
		logrus.WithField("File name", configPath).WithError(err).Fatal("Error reading config file")
	}

	if master != "" {
		conf.Master = master
	}
	if tree != "" {
		conf.Tree = tree
	}
	if len(locators) > 0 {
		conf.Locators = locators
	}
	if logLevel != "" {
		conf.EngineLogLevel = logLevel
	}

	logrus.SetLevel(logs.ConfigLogLevelToLevel(conf.LogLevel))

	jobDriver, err := driver.NewDriver(conf)
	if err != nil {
		logrus.WithError(err).Fatal("Error initializing driver")
	}

	return jobDriver
}
