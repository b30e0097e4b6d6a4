package main

import "github.com/drivesweep/drivesweep/cmd/drivesweep/cmd"

func main() {
	cmd.Execute()
}
