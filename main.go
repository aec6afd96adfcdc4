package main

import "github.com/Alturino/ecfresh/cmd"

func main() {
	cmd.Start()
}
