package main

import "github.com/snaphist/snaphist/cmd"

func main() {
	cmd.Execute()
}
