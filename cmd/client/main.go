// Package main is the SecureTalk command-line client. Messages are sealed
// with the recipient's published AES-GCM key before they leave the process.
package main

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/SecureTalk/internal/client"
)

var (
	version   string
	buildDate string
)

// keygen generates key material for user and publishes it.
func keygen(ctx context.Context, c *client.Client, user string) error {
	km, err := client.GenerateKey()
	if err != nil {
		return err
	}
	return c.StoreKey(ctx, user, km)
}

// sendMessage encrypts text with the recipient's key and relays it.
func sendMessage(ctx context.Context, c *client.Client, from, to, text string) error {
	km, err := c.GetKey(ctx, to)
	if err != nil {
		return fmt.Errorf("fetch key for %s: %w", to, err)
	}
	enc, err := client.Encrypt(*km, text)
	if err != nil {
		return err
	}
	return c.Send(ctx, from, to, enc)
}

// receiveMessages prints every message addressed to user, decrypted with
// user's own key. Payloads that do not open are shown as such.
func receiveMessages(ctx context.Context, c *client.Client, user string, out io.Writer) error {
	msgs, err := c.Receive(ctx, user)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Fprintln(out, "No messages")
		return nil
	}
	km, err := c.GetKey(ctx, user)
	if err != nil {
		return fmt.Errorf("fetch own key: %w", err)
	}
	for _, m := range msgs {
		text, err := client.Decrypt(*km, m.Encrypted)
		if err != nil {
			text = "<cannot decrypt>"
		}
		fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Local().Format(time.DateTime), m.From, text)
	}
	return nil
}

// repl runs the interactive shell loop for a logged-in user.
func repl(ctx context.Context, c *client.Client, user string, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprintf(out, "securetalk(%s)> ", user)
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Fprintln(out, "Available commands: help, keygen, send <to> <text>, receive, exit")
		case "keygen":
			if err := keygen(ctx, c, user); err != nil {
				fmt.Fprintln(out, "keygen failed:", err)
				continue
			}
			fmt.Fprintln(out, "Key stored")
		case "send":
			if len(args) < 3 {
				fmt.Fprintln(out, "Usage: send <to> <text>")
				continue
			}
			if err := sendMessage(ctx, c, user, args[1], strings.Join(args[2:], " ")); err != nil {
				fmt.Fprintln(out, "send failed:", err)
				continue
			}
			fmt.Fprintln(out, "Message sent")
		case "receive":
			if err := receiveMessages(ctx, c, user, out); err != nil {
				fmt.Fprintln(out, "receive failed:", err)
			}
		case "exit":
			fmt.Fprintln(out, "Bye")
			return
		default:
			fmt.Fprintln(out, "Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// credentials resolves the username flag and prompts for the password.
func credentials(user string) (string, string, error) {
	if user == "" {
		var err error
		user, err = client.PromptLine(bufio.NewReader(os.Stdin), os.Stdout, "Username: ")
		if err != nil {
			return "", "", err
		}
	}
	if user == "" {
		return "", "", errors.New("username is required")
	}
	pw, err := client.PromptPassword(os.Stdout)
	if err != nil {
		return "", "", err
	}
	return user, pw, nil
}

// main parses command-line flags and dispatches the command.
func main() {
	var (
		cmd     string
		baseURL string
		caFile  string
		user    string
		to      string
		text    string
		showVer bool
	)

	flag.StringVar(&cmd, "cmd", "shell", "command: register | login | keygen | send | receive | shell")
	flag.StringVar(&baseURL, "url", "https://localhost", "server base URL")
	flag.StringVar(&caFile, "ca", "", "extra PEM certificate to trust (e.g. localhost+2.pem)")
	flag.StringVar(&user, "user", "", "username")
	flag.StringVar(&to, "to", "", "recipient for send")
	flag.StringVar(&text, "msg", "", "message text for send")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("SecureTalk Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	hc, err := client.NewHTTPClient(caFile)
	if err != nil {
		log.Fatal(err)
	}
	c := client.New(baseURL, hc)
	ctx := context.Background()

	switch cmd {
	case "register", "login", "shell":
		u, pw, err := credentials(user)
		if err != nil {
			log.Fatal(err)
		}
		switch cmd {
		case "register":
			if err := c.Register(ctx, u, pw); err != nil {
				log.Fatal(err)
			}
			fmt.Println("Registration successful")
		case "login":
			if err := c.Login(ctx, u, pw); err != nil {
				log.Fatal(err)
			}
			fmt.Println("Login successful")
		default:
			if err := c.Login(ctx, u, pw); err != nil {
				log.Fatal(err)
			}
			repl(ctx, c, u, os.Stdin, os.Stdout)
		}
	case "keygen":
		if user == "" {
			log.Fatal("please provide -user")
		}
		if err := keygen(ctx, c, user); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Key stored")
	case "send":
		if user == "" || to == "" || text == "" {
			log.Fatal("please provide -user, -to and -msg")
		}
		if err := sendMessage(ctx, c, user, to, text); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Message sent")
	case "receive":
		if user == "" {
			log.Fatal("please provide -user")
		}
		if err := receiveMessages(ctx, c, user, os.Stdout); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
}
