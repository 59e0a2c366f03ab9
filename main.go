package main

import "watch-list/cmd"

func main() {
	cmd.Execute()
}
