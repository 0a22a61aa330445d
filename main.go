package main

import "golang-netstate/cmd"

func main() {
	cmd.Execute()
}
