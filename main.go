package main

import "xbuild/cmd"

func main() {
	cmd.Execute()
}
