package main

import "jscheck/cmd"

func main() {
	cmd.Execute()
}
