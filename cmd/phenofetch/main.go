package main

import "phenofetch/cmd/phenofetch/cmd"

func main() {
	cmd.Execute()
}
