package main

import "github.com/averix/teamsync/cmd"

func main() {
	cmd.Execute()
}
