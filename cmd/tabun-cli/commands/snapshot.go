package commands

import (
	"log/slog"

	"tabun-api/lib/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var snapshotDB *string

func init() {
	snapshotDB = snapshotCmd.Flags().String("db", "", "The sqlite database to keep snapshots in, overrides the config.")
	rootCmd.AddCommand(snapshotCmd)
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [path] [--db <path/to/snapshots.db>]",
	Short: "Stores the posts of a listing page and reports the ones whose body changed.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		dbPath := cfg.SnapshotDB
		if *snapshotDB != "" {
			dbPath = *snapshotDB
		}
		if dbPath == "" {
			dbPath = "snapshots.db"
		}

		out, err := store.Open(cmd.Context(), dbPath)
		if err != nil {
			return err
		}
		defer out.Close()

		posts, err := client.GetPosts(cmd.Context(), path)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Blog", "Title", "Hash"})
		for _, post := range posts {
			changed, err := out.Put(cmd.Context(), post)
			if err != nil {
				return err
			}
			if changed {
				t.AppendRow(table.Row{post.PostID, blogName(post.Blog), post.Title, post.Hash()[:12]})
			}
		}
		slog.Info("snapshot taken", "posts", len(posts), "changed", t.Length())
		t.Render()
		return nil
	},
}
