// Command inspect prints the users, conversations or messages held in a
// duochat Badger store. It opens the store read-only and can run next to
// the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Tyrowin/duochat/internal/store"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "inspect: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	dbPath := fs.String("db", "./data", "Path to the badger store")
	what := fs.String("what", "users", "users, conversations or messages")
	conversation := fs.String("conversation", "", "Conversation id, required for messages")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := store.OpenBadgerReadOnly(*dbPath, logs.GetLoggerFromLevel(slog.LevelWarn))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	switch *what {
	case "users":
		return printUsers(ctx, s, out)
	case "conversations":
		return printConversations(ctx, s, out)
	case "messages":
		if *conversation == "" {
			return fmt.Errorf("-conversation is required with -what messages")
		}
		return printMessages(ctx, s, *conversation, out)
	default:
		return fmt.Errorf("unknown -what %q", *what)
	}
}

func newTable(out io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}

func printUsers(ctx context.Context, s *store.BadgerStore, out io.Writer) error {
	users, err := s.FindOtherUsers(ctx, "")
	if err != nil {
		return err
	}
	table := newTable(out, "ID", "Full name", "Email", "Logged in", "Created")
	for _, u := range users {
		table.Append([]string{u.ID, u.FullName, u.Email, yesNo(u.Token != ""), u.CreatedAt.Format(time.RFC3339)})
	}
	table.Render()
	return nil
}

func printConversations(ctx context.Context, s *store.BadgerStore, out io.Writer) error {
	convs, err := s.AllConversations(ctx)
	if err != nil {
		return err
	}
	table := newTable(out, "ID", "Members", "Messages", "Created")
	for _, c := range convs {
		msgs, err := s.FindMessagesForConversation(ctx, c.ID)
		if err != nil {
			return err
		}
		table.Append([]string{c.ID, strings.Join(c.Members, ", "), fmt.Sprint(len(msgs)), c.CreatedAt.Format(time.RFC3339)})
	}
	table.Render()
	return nil
}

func printMessages(ctx context.Context, s *store.BadgerStore, conversationID string, out io.Writer) error {
	if _, err := s.FindConversation(ctx, conversationID); err != nil {
		return err
	}
	msgs, err := s.FindMessagesForConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	table := newTable(out, "At", "Sender", "Message")
	for _, m := range msgs {
		table.Append([]string{m.CreatedAt.Format("2006-01-02 15:04:05"), m.SenderID, m.Text})
	}
	table.Render()
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
