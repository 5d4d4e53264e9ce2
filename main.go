package main

import "github.com/Xensen008/Pixify/cmd"

func main() {
	cmd.Run()
}
