// Package main writes a self-signed certificate and key for the relay's
// HTTPS listener. The default file names match the server's defaults.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/SecureTalk/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run parses args, generates the pair and writes it under -out.
func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	dir := fs.String("out", ".", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1,::1", "comma-separated DNS names and IPs")
	validFor := fs.Duration("valid", 365*24*time.Hour, "certificate lifetime")
	certName := fs.String("cert", "localhost+2.pem", "certificate file name")
	keyName := fs.String("key", "localhost+2-key.pem", "private key file name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var hostList []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hostList = append(hostList, h)
		}
	}

	certPEM, keyPEM, err := certgen.GenerateSelfSigned(hostList, *validFor)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	certPath := filepath.Join(*dir, *certName)
	keyPath := filepath.Join(*dir, *keyName)
	if err := certgen.WritePair(certPath, keyPath, certPEM, keyPEM); err != nil {
		return err
	}

	fmt.Fprintf(out, "certificate: %s\nkey:         %s\n", certPath, keyPath)
	return nil
}
