package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/rulemig/internal/domain"
	m "gooze.dev/pkg/rulemig/internal/model"
)

var writeFlag bool
var reportFlag string
var collisionFlag string
var colorFlag bool

// migrateCmd represents the migrate command.
var migrateCmd = newMigrateCmd()

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [paths...]",
		Short: "Migrate ExternalResource rules to JUnit 5 extensions",
		Long:  migrateLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			collision, err := domain.ParseCollisionPolicy(viper.GetString(collisionConfigKey))
			if err != nil {
				return err
			}

			_, err = workflow.Run(cmd.Context(), domain.RunArgs{
				Paths:     parsePaths(args),
				Exclude:   viper.GetStringSlice(excludeConfigKey),
				Jobs:      viper.GetInt(jobsConfigKey),
				Write:     viper.GetBool(writeConfigKey),
				Report:    m.Path(viper.GetString(reportConfigKey)),
				SpillDir:  spillDir(),
				Collision: collision,
				Color:     viper.GetBool(colorConfigKey),
			})

			return err
		},
	}

	configureMigrateFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func configureMigrateFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&writeFlag, writeFlagName, "w", viper.GetBool(writeConfigKey), "write migrated sources instead of printing diffs")
	bindFlagToConfig(cmd.Flags().Lookup(writeFlagName), writeConfigKey)

	cmd.Flags().StringVarP(&reportFlag, reportFlagName, "r", viper.GetString(reportConfigKey), "save a YAML run report to this file")
	bindFlagToConfig(cmd.Flags().Lookup(reportFlagName), reportConfigKey)

	cmd.Flags().StringVar(&collisionFlag, collisionFlagName, viper.GetString(collisionConfigKey), "generated name collision policy: suffix or fail")
	bindFlagToConfig(cmd.Flags().Lookup(collisionFlagName), collisionConfigKey)

	cmd.Flags().BoolVar(&colorFlag, colorFlagName, viper.GetBool(colorConfigKey), "colour diff output")
	bindFlagToConfig(cmd.Flags().Lookup(colorFlagName), colorConfigKey)
}

// spillDir is where a run spills its queued change units.
func spillDir() string {
	return filepath.Join(os.TempDir(), "rulemig")
}
