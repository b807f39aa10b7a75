package cmd

import (
	"github.com/ardanlabs/sealedledger/business/core/exchange"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Menu entries in the order they are offered.
const (
	menuStatus  = "View basic blockchain status"
	menuAdd     = "Add a transaction to the blockchain"
	menuVerify  = "Verify the blockchain"
	menuView    = "View the blockchain"
	menuCorrupt = "Corrupt the chain"
	menuRepair  = "Hide the corruption by repairing the chain"
	menuExit    = "Exit"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Run an interactive session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return session(menu)
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func menu(c *exchange.Client) error {
	options := []string{menuStatus, menuAdd, menuVerify, menuView, menuCorrupt, menuRepair, menuExit}

	for {
		choice, err := pterm.DefaultInteractiveSelect.
			WithDefaultText("Select an operation").
			WithOptions(options).
			Show()
		if err != nil {
			return err
		}

		var rt exchange.RequestType
		var var1, var2 string

		switch choice {
		case menuStatus:
			rt = exchange.GetBasicView

		case menuAdd:
			rt = exchange.AddBlock
			if var1, err = prompt("Enter difficulty > 0"); err != nil {
				return err
			}
			if var2, err = prompt("Enter transaction"); err != nil {
				return err
			}

		case menuVerify:
			rt = exchange.VerifyChain

		case menuView:
			rt = exchange.GetFullView

		case menuCorrupt:
			rt = exchange.CorruptChain
			pterm.Info.Println("Corrupt the Blockchain")
			if var1, err = prompt("Enter block ID of block to corrupt"); err != nil {
				return err
			}
			if var2, err = prompt("Enter new data for block " + var1); err != nil {
				return err
			}

		case menuRepair:
			rt = exchange.RepairChain

		default:
			return nil
		}

		if err := do(c, rt, var1, var2); err != nil {
			return err
		}
	}
}

func prompt(text string) (string, error) {
	return pterm.DefaultInteractiveTextInput.WithDefaultText(text).Show()
}
