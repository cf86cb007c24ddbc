package main

import "go-rho/cmd"

func main() {
	cmd.Execute()
}
