// Package main validates a fault catalog file, reports English-only text the
// term dictionary cannot translate and optionally seeds a database with it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/atinyakov/FaultKeeper/internal/dataset"
	"github.com/atinyakov/FaultKeeper/internal/db"
	"github.com/atinyakov/FaultKeeper/internal/i18n"
)

func main() {
	var (
		file string
		dsn  string
	)
	flag.StringVar(&file, "f", "", "catalog JSON file (bundled dataset when empty)")
	flag.StringVar(&dsn, "d", "", "seed this database after a successful check")
	flag.Parse()

	if err := run(context.Background(), file, dsn, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "catalogcheck:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, file, dsn string, out io.Writer) error {
	c, err := load(file)
	if err != nil {
		return err
	}
	dict, err := dataset.Dictionary()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d brands, %d models, %d faults, %d steps\n",
		len(c.Brands), len(c.Models), len(c.Faults), len(c.Steps))
	for _, s := range untranslated(c, dict) {
		fmt.Fprintf(out, "untranslated: %s\n", s)
	}

	if dsn == "" {
		return nil
	}
	conn, err := db.InitPostgres(dsn)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.Seed(ctx, conn, c); err != nil {
		return err
	}
	fmt.Fprintln(out, "seeded")
	return nil
}

func load(file string) (*dataset.Catalog, error) {
	if file == "" {
		return dataset.Load()
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := dataset.Decode(f)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// untranslated lists derived texts that the dictionary leaves unchanged, so
// Turkish readers would see them in English.
func untranslated(c *dataset.Catalog, dict *i18n.Dictionary) []string {
	var out []string
	text := func(owner, field string, v i18n.Text) {
		if v.Form == i18n.FormDerived && v.EN != "" && dict.Translate(v.EN) == v.EN {
			out = append(out, fmt.Sprintf("%s %s %q", owner, field, v.EN))
		}
	}
	for _, f := range c.Faults {
		text(f.ID, "title", f.Title)
		text(f.ID, "summary", f.Summary)
		if f.SafetyNotice != nil {
			text(f.ID, "safetyNotice", *f.SafetyNotice)
		}
	}
	for _, s := range c.Steps {
		text(s.ID, "instruction", s.Instruction)
	}
	return out
}
