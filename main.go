package main

import "asia2tv/cmd"

func main() {
	cmd.Execute()
}
