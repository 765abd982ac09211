package main

import "aigw/cmd"

const Version = "v0.1.0"

func main() {
	cmd.Execute(Version)
}
