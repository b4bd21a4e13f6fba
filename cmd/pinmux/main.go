package main

import "github.com/OpenTraceLab/OpenTraceMux/cmd/pinmux/cmd"

func main() {
	cmd.Execute()
}
