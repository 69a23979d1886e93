package main

import "github.com/oshokin/chromedriver-installer/cmd/chromedriver-installer/cmd"

func main() {
	cmd.Execute()
}
