// Package main provides the entry point for the pdscload CLI.
//
// pdscload indexes a PARADISEC archive tree and loads it onto a player
// device or a portable disk.
//
// Usage:
//
//	pdscload load --data /srv/archive --target /media/usb
//	pdscload index --data /srv/archive --pretty
//
// See --help for all available options.
package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
)

func main() {
	if err := fang.Execute(
		context.Background(),
		NewRootCmd(),
		fang.WithVersion(getVersion()),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}
