package cmd

import (
	"github.com/ardanlabs/sealedledger/business/core/exchange"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the basic view of the chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return session(func(c *exchange.Client) error {
			return do(c, exchange.GetBasicView, "", "")
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add <difficulty> <transaction>",
	Short: "Mine and append a block holding the transaction",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return session(func(c *exchange.Client) error {
			return do(c, exchange.AddBlock, args[0], args[1])
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of the chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return session(func(c *exchange.Client) error {
			return do(c, exchange.VerifyChain, "", "")
		})
	},
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show every block in the chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return session(func(c *exchange.Client) error {
			return do(c, exchange.GetFullView, "", "")
		})
	},
}

var corruptCmd = &cobra.Command{
	Use:   "corrupt <block-id> <data>",
	Short: "Overwrite the data of a block without re-mining it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return session(func(c *exchange.Client) error {
			return do(c, exchange.CorruptChain, args[0], args[1])
		})
	},
}

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Re-mine the chain from the first corrupted block",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return session(func(c *exchange.Client) error {
			return do(c, exchange.RepairChain, "", "")
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, addCmd, verifyCmd, viewCmd, corruptCmd, repairCmd)
}
