package cmd

import (
	"fmt"
	"strconv"

	"Spitbox/repository"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "列出所有用户",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(gdb *gorm.DB) error {
			store := repository.NewStore(gdb)
			users, err := store.Users.List(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(users))
			for _, u := range users {
				login := "password"
				if u.PasswordHash == nil {
					login = "google"
				}
				rows = append(rows, []string{
					strconv.FormatInt(u.ID, 10),
					u.Username,
					u.Email,
					login,
					humanize.Time(u.CreatedAt),
				})
			}
			fmt.Println(renderTable([]string{"ID", "Username", "Email", "Login", "Joined"}, rows, 1))
			fmt.Printf("%s users\n", humanize.Comma(int64(len(users))))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
}
