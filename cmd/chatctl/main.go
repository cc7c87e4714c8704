package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"pitchtalk-backend/internal/chatclient"
)

// CLI represents the chatctl command line
type CLI struct {
	Server  string        `env:"PITCHTALK_URL" default:"http://localhost:8080" help:"Backend base URL"`
	Timeout time.Duration `default:"0s" help:"Request timeout (0 waits for the server)"`

	// Chat is the default command - interactive session
	Chat    ChatCmd    `default:"1" cmd:"" help:"Start an interactive chat (default)"`
	Send    SendCmd    `cmd:"" help:"Send a single message and print the conversation"`
	History HistoryCmd `cmd:"" help:"Print the current conversation"`
	Reset   ResetCmd   `cmd:"" help:"Clear the conversation (development servers only)"`
}

func (c *CLI) client() *chatclient.Client {
	return chatclient.New(c.Server, c.Timeout)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("chatctl"),
		kong.Description("Terminal chat client for the PitchTalk backend"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
