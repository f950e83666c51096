package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Profile management",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles that own memory",
		Run:   runProfileList,
	}

	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all working and semantic memory of the selected profile",
		Run:   runProfilePurge,
	}
	purgeCmd.Flags().Bool("yes", false, "Confirm the purge")

	profileCmd.AddCommand(listCmd, purgeCmd)
	RootCmd.AddCommand(profileCmd)
}

func runProfileList(cmd *cobra.Command, args []string) {
	e := openEnv(cmd)
	defer e.close()

	stats, err := e.store.Stats(cmd.Context())
	if err != nil {
		exitErr("list profiles", err)
	}
	printOut(cmd, stats.Profiles, func(w io.Writer) {
		for _, p := range stats.Profiles {
			fmt.Fprintln(w, p.ProfileID)
		}
	})
}

func runProfilePurge(cmd *cobra.Command, args []string) {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		exitErr("purge", fmt.Errorf("refusing to purge profile %q without --yes", profileID))
	}

	e := openEnv(cmd)
	defer e.close()

	res, err := e.store.PurgeProfile(cmd.Context(), profileID)
	if err != nil {
		exitErr("purge", err)
	}
	printOut(cmd, res, nil)
}
