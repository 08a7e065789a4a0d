package main

import "github.com/fleetops/fleetctl/cmd/fleetctl/cmd"

func main() {
	cmd.Execute()
}
