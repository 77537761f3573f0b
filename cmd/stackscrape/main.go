package main

import (
	"stackscrape/cmd/stackscrape/commands"
	"stackscrape/lib/util/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()
	commands.ExecuteContext(ctx)
}
