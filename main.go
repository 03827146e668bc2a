package main

import "github.com/clusterlab/nodealloc/cmd"

func main() {
	cmd.Execute()
}
