package main

import (
	"github.com/alecthomas/kong"

	"droscher.com/DinnerGargoyle/cmd"
)

func main() {
	ctx := kong.Parse(&cmd.CLI, kong.Name("Dinner Gargoyle"), kong.Description("DinnerGargoyle finds nearby restaurants and organizes dinner groups."))
	err := ctx.Run(&cmd.Context{Debug: cmd.CLI.Debug})
	ctx.FatalIfErrorf(err)
}
