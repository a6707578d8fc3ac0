package main

import "github.com/mendelics-labs/bcf2/cmd"

func main() {
	cmd.Execute()
}
