package main

import "refdesk/cmd"

func main() {
	cmd.Execute()
}
