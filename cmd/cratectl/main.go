// Command cratectl inspects a Crate schema and renders or applies DDL.
//
//	cratectl [-config crate.yaml] tables
//	cratectl columns posts
//	cratectl ddl -f tables.yaml [-watch]
//	cratectl plan -f tables.yaml [-dir migrations]
//	cratectl apply -f tables.yaml
//	cratectl sql "SELECT id FROM posts WHERE title = ?" hello
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
