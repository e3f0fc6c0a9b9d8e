package main

import "github.com/gregcorwin/Email/cmd/emailapi/cmd"

func main() {
	cmd.Execute()
}
