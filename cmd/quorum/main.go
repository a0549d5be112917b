package main

import "github.com/buildwithgrove/quorum/cmd/quorum/cmd"

func main() {
	cmd.Execute()
}
