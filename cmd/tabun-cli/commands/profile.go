package commands

import (
	"fmt"
	"strings"

	"tabun-api/lib/textformat"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile <username>",
	Short: "Prints the profile of a user.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := client.GetProfile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("profile of %s did not parse", args[0])
		}

		t := newTable()
		t.AppendRows([]table.Row{
			{"ID", user.UserID},
			{"Username", user.Username},
			{"Name", user.Realname},
			{"Gender", user.Gender},
			{"Skill", user.Skill},
			{"Rating", user.Rating},
			{"Registered", optionalTime(user.Registered)},
			{"Last visit", optionalTime(user.LastActivity)},
			{"Owns", strings.Join(user.Blogs.Owner, ", ")},
			{"Member of", strings.Join(user.Blogs.Member, ", ")},
			{"Publications", optional(user.Counts.Publications)},
			{"Friends", optional(user.Counts.Friends)},
		})
		t.Render()
		if user.Description != nil {
			fmt.Println(textformat.Format(user.Description, textformat.DefaultOptions()))
		}
		return nil
	},
}
