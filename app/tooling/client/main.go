// This program is the signing client for the ledger service.
package main

import "github.com/ardanlabs/sealedledger/app/tooling/client/cmd"

func main() {
	cmd.Execute()
}
