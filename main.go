package main

import "github.com/weiihann/ecoquest-analytics/cmd"

func main() {
	cmd.Execute()
}
