package main

import cmd "github.com/hpinterconnect/interconnect-sim/cmd/interconnect-sim"

func main() {
	cmd.Execute()
}
