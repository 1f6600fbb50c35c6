package cliutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestServiceGroupShowsHelp(t *testing.T) {
	group := NewServiceGroupCommand("s3", "Manage S3 buckets and objects")
	group.AddCommand(&cobra.Command{Use: "list-buckets", Short: "List buckets", RunE: func(*cobra.Command, []string) error { return nil }})

	root := NewTestRootCommand(group)
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"s3"})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute s3: %v", err)
	}
	for _, want := range []string{"Manage S3 buckets and objects.", "--max-pages", "list-buckets"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in help: %s", want, buf.String())
		}
	}
}

func TestServiceGroupRejectsUnknownSubcommand(t *testing.T) {
	group := NewServiceGroupCommand("s3", "Manage S3 buckets and objects")
	group.AddCommand(&cobra.Command{Use: "list-buckets", RunE: func(*cobra.Command, []string) error { return nil }})

	root := NewTestRootCommand(group)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"s3", "delete-everything"})

	if err := root.Execute(); err == nil {
		t.Fatal("expected unknown subcommand error")
	}
}
