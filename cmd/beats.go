package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"Spitbox/repository"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var beatsUser string

var beatsCmd = &cobra.Command{
	Use:   "beats",
	Short: "列出 beat 及其点赞数和评论数",
	Example: `  spitbox beats
  spitbox beats --user alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withDB(func(gdb *gorm.DB) error {
			store := repository.NewStore(gdb)

			var filter repository.BeatFilter
			if name := strings.TrimPrefix(strings.TrimSpace(beatsUser), "@"); name != "" {
				user, err := store.Users.GetByUsername(ctx, name)
				if err != nil {
					return err
				}
				if user == nil {
					return fmt.Errorf("user %q not found", name)
				}
				filter.UserID = user.ID
			}

			beats, err := store.Beats.List(ctx, filter)
			if err != nil {
				return err
			}
			ids := make([]int64, len(beats))
			authorIDs := make([]int64, len(beats))
			for i, b := range beats {
				ids[i] = b.ID
				authorIDs[i] = b.UserID
			}
			authors, err := store.Users.GetByIDs(ctx, authorIDs)
			if err != nil {
				return err
			}
			likes, err := store.Likes.CountByBeats(ctx, ids)
			if err != nil {
				return err
			}
			comments, err := store.Comments.CountByBeats(ctx, ids)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(beats))
			for _, b := range beats {
				author := "?"
				if u := authors[b.UserID]; u != nil {
					author = u.Username
				}
				rows = append(rows, []string{
					strconv.FormatInt(b.ID, 10),
					b.Title,
					author,
					humanize.Comma(likes[b.ID]),
					humanize.Comma(comments[b.ID]),
					humanize.Time(b.CreatedAt),
					b.AudioURL,
				})
			}
			fmt.Println(renderTable([]string{"ID", "Title", "Author", "Likes", "Comments", "Uploaded", "Audio"}, rows, 1, 4, 5))
			return nil
		})
	},
}

func init() {
	beatsCmd.Flags().StringVarP(&beatsUser, "user", "u", "", "只显示该用户的 beat")
	rootCmd.AddCommand(beatsCmd)
}
