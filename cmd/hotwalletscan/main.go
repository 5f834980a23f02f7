// Package main provides the entry point for the hotwalletscan CLI.
//
// hotwalletscan crawls a blockchain-intelligence API for the hot wallets of an
// entity across many chains and exports them as a de-duplicated table.
//
// Usage:
//
//	hotwalletscan scan binance
//	hotwalletscan scan binance --chains bitcoin,ethereum --pages 3 --csv binance.csv
//
// See --help for all available options.
package main

func main() {
	Execute()
}
