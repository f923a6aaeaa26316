package main

import "mentorai/tutor/cmd"

func main() {
	cmd.Execute()
}
