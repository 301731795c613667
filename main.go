package main

import "github.com/theirongolddev/crowdscope/cmd"

func main() {
	cmd.Execute()
}
