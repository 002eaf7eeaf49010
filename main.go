package main

import "github.com/naka-gawa/repo-pulse/cmd"

func main() {
	cmd.Execute()
}
