package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/anrid/kbguard/pkg/accesspolicy"
	"github.com/anrid/kbguard/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var checkGroups []string

// policyCmd groups the policy inspection commands
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect and evaluate resource policies.",
}

// policyDumpCmd prints a stored policy
var policyDumpCmd = &cobra.Command{
	Use:   "dump [resource-id]",
	Short: "Print the stored policy of a resource.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, _, _, err := newStores(nil)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		p, err := store.FetchByResourceID(context.Background(), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		payload, err := json.Marshal(p)
		if err != nil {
			fmt.Println(errors.Wrap(err, "failed to marshal policy"))
			os.Exit(1)
		}

		util.PrettyPrint(payload)
	},
}

// policyCheckCmd evaluates a permission check against a stored policy
var policyCheckCmd = &cobra.Command{
	Use:   "check [resource-id] [user-id] [capability]",
	Short: "Evaluate whether a user holds a capability on a resource.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		capability := accesspolicy.ParseCapability(args[2])
		if capability == accesspolicy.CapNone {
			fmt.Println("capability must be read or write")
			os.Exit(1)
		}

		store, _, _, err := newStores(nil)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		p, err := store.FetchByResourceID(context.Background(), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		principal := accesspolicy.NewPrincipal(args[1], checkGroups...)

		if !accesspolicy.Can(principal, p, capability) {
			fmt.Println("denied")
			os.Exit(1)
		}

		fmt.Println("allowed")
	},
}

func init() {
	policyCheckCmd.Flags().StringSliceVar(&checkGroups, "groups", nil, "group ids the user belongs to")

	policyCmd.AddCommand(policyDumpCmd)
	policyCmd.AddCommand(policyCheckCmd)
	rootCmd.AddCommand(policyCmd)
}
