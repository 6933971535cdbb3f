package commands

import (
	"fmt"
	"strconv"
	"strings"

	"tabun-api/lib/commenttree"
	"tabun-api/lib/models"
	"tabun-api/lib/textformat"

	"github.com/spf13/cobra"
)

var postComments *bool

func init() {
	postComments = postCmd.Flags().Bool("comments", false, "Also print the comment tree.")
	rootCmd.AddCommand(postCmd)
}

var postCmd = &cobra.Command{
	Use:   "post <blog> <id> [--comments]",
	Short: "Prints a post as text, use - as the blog of personal posts.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		blog := args[0]
		if blog == "-" {
			blog = ""
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("post id: %w", err)
		}

		post, comments, err := client.GetPostAndComments(cmd.Context(), blog, id)
		if err != nil {
			return err
		}
		if post == nil {
			return fmt.Errorf("%s does not look like a post", models.PostPath(blog, id))
		}

		fmt.Printf("%s\n%s, %s, %s\n\n", post.Title, post.Author, formatTime(post.Time), optional(post.VoteTotal))
		fmt.Println(textformat.Format(post.Body, textformat.DefaultOptions()))
		if len(post.Tags) > 0 {
			fmt.Printf("\n#%s\n", strings.Join(post.Tags, " #"))
		}
		if !*postComments {
			return nil
		}

		forest, orphans := commenttree.Build(comments)
		fmt.Printf("\n%d comments\n", len(comments))
		commenttree.Walk(forest, func(n *commenttree.Node, depth int) {
			printComment(n.Comment, depth)
		})
		if len(orphans) > 0 {
			fmt.Printf("\norphaned: %v\n", orphans)
		}
		return nil
	},
}

func printComment(c *models.Comment, depth int) {
	indent := strings.Repeat("  ", depth)
	if c.Deleted {
		fmt.Printf("%s[%d deleted]\n", indent, c.CommentID)
		return
	}
	text := textformat.Format(c.Body, textformat.DefaultOptions())
	text = strings.ReplaceAll(text, "\n", "\n"+indent+"  ")
	fmt.Printf("%s[%d] %s (%s): %s\n", indent, c.CommentID, c.Author, optional(c.Vote), text)
}
