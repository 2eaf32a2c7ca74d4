package main

import "github.com/fleetward/osrecon/cmd"

func main() {
	cmd.Execute()
}
