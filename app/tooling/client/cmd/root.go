// Package cmd contains the ledger client app.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/sealedledger/business/core/exchange"
	"github.com/ardanlabs/sealedledger/foundation/blockchain/signature"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	url         string
	bits        int
	dialTimeout time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "ws://localhost:7777/v1/exchange", "Websocket url of the ledger exchange.")
	rootCmd.PersistentFlags().IntVarP(&bits, "bits", "b", 512, "Size in bits of each prime in the session keypair.")
	rootCmd.PersistentFlags().DurationVarP(&dialTimeout, "timeout", "t", time.Minute, "How long to wait for the service to accept the session.")
}

var rootCmd = &cobra.Command{
	Use:           "client",
	Short:         "Signing client for the sealed ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the client.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// =============================================================================

// session generates a fresh keypair, opens a session with the service, runs
// the function and ends the session with clientExit.
func session(fn func(c *exchange.Client) error) error {
	spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Generating session keypair ...")
	kp, err := signature.GenerateKeypair(bits)
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("generating keypair: %w", err)
	}

	pterm.Info.Printfln("Client ID: %s", kp.ClientID())

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	c, err := exchange.Dial(ctx, url, kp)
	if err != nil {
		return err
	}

	if err := fn(c); err != nil {
		c.Close()
		return err
	}

	resp, err := c.Close()
	if err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	pterm.Info.Println(resp.Response)

	return nil
}

// do sends one request and renders the response with the round trip time.
func do(c *exchange.Client, rt exchange.RequestType, var1 string, var2 string) error {
	start := time.Now()

	resp, err := c.Do(rt, var1, var2)
	if err != nil {
		return err
	}

	render(resp)
	pterm.Info.Printfln("Total execution time for %s: %s", rt, time.Since(start))

	return nil
}

func render(resp exchange.Response) {
	if resp.IsError() {
		pterm.Error.Println(resp.Response)
		return
	}

	pterm.DefaultBox.
		WithTitle(resp.ResponseType).
		WithHorizontalPadding(2).
		Println(resp.Response)
}
