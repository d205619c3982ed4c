package main

import "action-classifier/cmd"

func main() {
	cmd.Execute()
}
