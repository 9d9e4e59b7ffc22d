package main

import "github.com/OpenTraceLab/OpenTracePAR/cmd/gp4par/cmd"

func main() {
	cmd.Execute()
}
