package main

import "github.com/theirongolddev/finboard/cmd"

func main() {
	cmd.Execute()
}
