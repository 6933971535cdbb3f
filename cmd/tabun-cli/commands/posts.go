package commands

import (
	"tabun-api/lib/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var postsRSS *bool

func init() {
	postsRSS = postsCmd.Flags().Bool("rss", false, "Read the path as an RSS feed.")
	rootCmd.AddCommand(postsCmd)
}

var postsCmd = &cobra.Command{
	Use:   "posts [path] [--rss]",
	Short: "Lists the posts of a listing page, the index by default.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}

		var posts []*models.Post
		var err error
		if *postsRSS {
			posts, err = client.GetRSSPosts(cmd.Context(), path)
		} else {
			posts, err = client.GetPosts(cmd.Context(), path)
		}
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Blog", "Author", "Title", "Rating", "Comments", "Time"})
		for _, post := range posts {
			comments, _ := post.Context.Int(models.CtxCommentsCount)
			t.AppendRow(table.Row{
				post.PostID,
				blogName(post.Blog),
				post.Author,
				post.Title,
				optional(post.VoteTotal),
				comments,
				formatTime(post.Time),
			})
		}
		t.Render()
		return nil
	},
}
