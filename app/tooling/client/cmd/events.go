package cmd

import (
	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var eventsURL string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Stream the service's ledger events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), eventsURL, nil)
		if err != nil {
			return err
		}
		defer conn.Close()

		pterm.Info.Printfln("Streaming events from %s", eventsURL)

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return nil
				}
				return err
			}
			pterm.Println(string(msg))
		}
	},
}

func init() {
	eventsCmd.Flags().StringVarP(&eventsURL, "events-url", "e", "ws://localhost:7777/v1/events", "Websocket url of the event stream.")
	rootCmd.AddCommand(eventsCmd)
}
