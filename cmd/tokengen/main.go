// Package main generates bearer tokens for the bot webhook surface, for
// local testing and for provisioning chat runtimes.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	authmw "fusebot/pkg/platform/middleware/auth"
)

type tokenOutput struct {
	Token     string `json:"token"`
	Subject   string `json:"subject"`
	ExpiresIn string `json:"expires_in"`
	Usage     string `json:"usage"`
}

func main() {
	subject := flag.String("subject", "webhook-runtime", "Token subject (caller identity)")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token time-to-live")
	signingKey := flag.String("signing-key", os.Getenv("RUNTIME_SIGNING_KEY"), "HMAC signing key (defaults to RUNTIME_SIGNING_KEY)")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	if *signingKey == "" {
		fmt.Fprintln(os.Stderr, "signing key required: set RUNTIME_SIGNING_KEY or pass -signing-key")
		os.Exit(1)
	}

	token, err := authmw.MintToken(*signingKey, *subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(tokenOutput{
			Token:     token,
			Subject:   *subject,
			ExpiresIn: ttl.String(),
			Usage:     "Authorization: Bearer <token>",
		})
		return
	}

	fmt.Println("Webhook Bearer Token")
	fmt.Println("====================")
	fmt.Printf("Subject:    %s\n", *subject)
	fmt.Printf("Expires In: %s\n", *ttl)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/v1/messages")
}
