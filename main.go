package main

import "github.com/ss13community/banwatch/cmd"

func main() {
	cmd.Execute()
}
