package main

import "treenotes/cmd/treenotes-cli/cmd"

func main() {
	cmd.Execute()
}
