// Command admintoken prints a JWT that grants read access to the advice history.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/artem13815/finadvice/pkg/config"
	"github.com/artem13815/finadvice/pkg/security/jwt"
)

func main() {
	fs := pflag.NewFlagSet("admintoken", pflag.ContinueOnError)
	subject := fs.String("subject", "admin", "Token subject")
	configFile := fs.String("config", "", "Path to a YAML config file")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	var args []string
	if *configFile != "" {
		args = append(args, "--config", *configFile)
	}
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if cfg.Auth.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "auth.jwt_secret is not set")
		os.Exit(1)
	}

	token, err := jwt.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTTTL).
		Generate(*subject, jwt.ScopeHistoryRead)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
