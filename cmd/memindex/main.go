package main

import "github.com/Adithya-Monish-Kumar-K/memindex/internal/cli"

func main() {
	cli.Execute()
}
