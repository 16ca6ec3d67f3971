package main

import "modtrans/internal/cli"

func main() {
	cli.Execute()
}
