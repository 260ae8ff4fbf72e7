package main

import "github.com/archsync/syncengine/pkg/cli"

var version = "dev"

func main() {
	cli.Execute(version)
}
