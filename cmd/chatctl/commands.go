package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"pitchtalk-backend/internal/chatclient"
	"pitchtalk-backend/internal/models"
)

type SendCmd struct {
	Message []string `arg:"" help:"Message text"`
}

func (c *SendCmd) Run(cli *CLI) error {
	turns, err := cli.client().Send(context.Background(), strings.Join(c.Message, " "))
	if err != nil {
		return err
	}
	printTurns(os.Stdout, turns)
	return nil
}

type HistoryCmd struct{}

func (c *HistoryCmd) Run(cli *CLI) error {
	turns, err := cli.client().History(context.Background())
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		fmt.Println(mutedStyle.Render("(no messages yet)"))
		return nil
	}
	printTurns(os.Stdout, turns)
	return nil
}

type ResetCmd struct{}

func (c *ResetCmd) Run(cli *CLI) error {
	if err := cli.client().Reset(context.Background()); err != nil {
		return err
	}
	fmt.Println(mutedStyle.Render("conversation cleared"))
	return nil
}

type ChatCmd struct{}

func (c *ChatCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return runChat(ctx, cli.client(), os.Stdin, os.Stdout)
}

// runChat reads one message per line and prints the turns each exchange adds.
func runChat(ctx context.Context, client *chatclient.Client, in io.Reader, out io.Writer) error {
	seen := 0
	if history, err := client.History(ctx); err == nil {
		printTurns(out, history)
		seen = len(history)
	}

	fmt.Fprintln(out, mutedStyle.Render("Type a message and press enter. Ctrl-D to quit."))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, promptStyle.Render("> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}

		turns, err := client.Send(ctx, message)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(out, errorStyle.Render("Sorry, something went wrong: "+err.Error()))
			continue
		}

		if seen > len(turns) {
			seen = 0
		}
		// The user's own line is already on screen.
		for _, t := range turns[seen:] {
			if t.Role == models.RoleUser && t.Content == message {
				continue
			}
			printTurn(out, t)
		}
		seen = len(turns)
	}
}
