package main

import "roomchat/cmd"

func main() {
	cmd.Execute()
}
