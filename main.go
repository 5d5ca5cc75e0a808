package main

import "github.com/fwdslash/dynkv/cmd"

func main() {
	cmd.Execute()
}
