package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/cardmosaic/internal/config"
	"github.com/AnyUserName/cardmosaic/internal/logging"
)

var (
	version    = "0.1.0"
	verbose    bool
	configPath string
	log        = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "cardmosaic",
	Short: "Photomosaics built from Magic card art",
	Long: `cardmosaic rebuilds a base image out of a pool of small tile images,
typically Scryfall art crops.

Each tile is used at most once while the pool lasts; cells near the
corners accept worse matches first so the centre of the picture gets
the best tiles.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		log = logging.New(os.Stderr, verbose)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"cardmosaic %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// loadConfig reads --config when given, lets override copy explicitly set
// flags on top and validates the result.
func loadConfig(override func(c *config.Config)) (config.Config, error) {
	c := config.Default()
	if configPath != "" {
		var err error
		if c, err = config.Read(configPath); err != nil {
			return c, err
		}
	}
	override(&c)
	if err := c.Finalize(); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	log.Debug("config", "profile", c.Profile, "sample_size", c.SampleSize,
		"cards_wide", c.CardsWide, "output_width", c.OutputWidth, "aspect", c.Aspect)
	return c, nil
}
