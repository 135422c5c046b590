package cmd

import (
	"errors"
	"fmt"

	"Spitbox/db"
	"Spitbox/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var resetConfirmed bool

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "数据库管理",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建或更新数据表",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(gdb *gorm.DB) error {
			if err := db.Migrate(gdb); err != nil {
				return err
			}
			fmt.Println("数据表已是最新")
			return nil
		})
	},
}

var dbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "删除并重建所有数据表 (所有数据都会丢失)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirmed {
			return errors.New("refusing to reset without --yes")
		}
		return withDB(func(gdb *gorm.DB) error {
			if err := db.Reset(gdb.WithContext(cmd.Context())); err != nil {
				return err
			}
			logger.Warn("Database reset from command line", logger.String("driver", cfg.DBDriver))
			fmt.Println("数据库已重置")
			return nil
		})
	},
}

// withDB opens the configured database for the duration of fn.
func withDB(fn func(gdb *gorm.DB) error) error {
	gdb, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close(gdb)
	return fn(gdb)
}

func init() {
	dbResetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "确认删除所有数据")
	dbCmd.AddCommand(dbMigrateCmd, dbResetCmd)
	rootCmd.AddCommand(dbCmd)
}
