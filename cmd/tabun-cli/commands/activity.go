package commands

import (
	"fmt"

	"tabun-api/lib/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var activityMore *int

func init() {
	activityMore = activityCmd.Flags().Int("more", 0, "Continue from this last id instead of loading the first page.")
	rootCmd.AddCommand(activityCmd)
}

var activityCmd = &cobra.Command{
	Use:   "activity [--more <last_id>]",
	Short: "Lists the events of the activity stream.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var items []*models.ActivityItem
		var lastID int
		var err error
		if *activityMore > 0 {
			items, lastID, err = client.GetMoreActivity(cmd.Context(), *activityMore)
		} else {
			items, lastID, err = client.GetActivity(cmd.Context())
		}
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Type", "User", "Target", "Data", "Time"})
		for _, item := range items {
			t.AppendRow(table.Row{
				item.Type,
				item.Username,
				activityTarget(item),
				item.Data,
				formatTime(item.Time),
			})
		}
		t.Render()
		fmt.Printf("last id: %d\n", lastID)
		return nil
	},
}

func activityTarget(item *models.ActivityItem) string {
	switch {
	case item.CommentID > 0:
		return fmt.Sprintf("%s#comment%d", models.PostPath(item.Blog, item.PostID), item.CommentID)
	case item.PostID > 0:
		return models.PostPath(item.Blog, item.PostID)
	case item.Blog != "":
		return "/blog/" + item.Blog + "/"
	}
	return item.Title
}
