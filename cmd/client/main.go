package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/FaultKeeper/internal/client"
	"github.com/atinyakov/FaultKeeper/internal/i18n"
	"github.com/atinyakov/FaultKeeper/internal/middleware"
	"github.com/google/uuid"
)

var (
	version   string
	buildDate string
)

const help = `Available commands:
  search <text> [-b brand]  rank fault codes
  brands                    list brands
  fault <id>                open a fault page (uses quota on the free plan)
  fav ls | add <id> | rm <id>
  account                   show plan and quota
  upgrade | downgrade       change plan
  lang en|tr                switch language
  exit`

// repl runs the interactive shell loop.
func repl(api *client.API, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "faultkeeper> ")
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(out, "Bye")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := run(ctx, api, args, out); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
		cancel()
	}
}

func run(ctx context.Context, api *client.API, args []string, out io.Writer) error {
	switch args[0] {
	case "help":
		fmt.Fprintln(out, help)
	case "search":
		query, brand, err := parseSearch(args[1:])
		if err != nil {
			return err
		}
		results, err := api.Search(ctx, query, brand)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "No matches")
		}
		for _, r := range results {
			fmt.Fprintf(out, "%-20s %-6s %3d  %s\n", r.Fault.ID, r.Fault.Code, r.Score, r.Fault.Title)
		}
	case "brands":
		brands, err := api.Brands(ctx)
		if err != nil {
			return err
		}
		for _, b := range brands {
			fmt.Fprintf(out, "%-12s %s\n", b.ID, b.Name)
		}
	case "fault":
		if len(args) < 2 {
			return errors.New("usage: fault <id>")
		}
		page, err := api.Fault(ctx, args[1])
		if err != nil {
			return err
		}
		printFault(out, page)
	case "fav":
		return favorites(ctx, api, args[1:], out)
	case "account":
		acc, err := api.Account(ctx)
		if err != nil {
			return err
		}
		printAccount(out, acc)
	case "upgrade", "downgrade":
		call := api.Upgrade
		if args[0] == "downgrade" {
			call = api.Downgrade
		}
		acc, err := call(ctx)
		if err != nil {
			return err
		}
		printAccount(out, acc)
	case "lang":
		if len(args) < 2 {
			return errors.New("usage: lang en|tr")
		}
		l, ok := i18n.ParseLocale(args[1])
		if !ok {
			return fmt.Errorf("unsupported language %q", args[1])
		}
		api.Session.SetLang(string(l))
		return api.Session.Save()
	default:
		fmt.Fprintln(out, "Unknown command. Type 'help' for a list of commands.")
	}
	return nil
}

// parseSearch splits search arguments into the query text and an optional
// brand given with -b. Every other word belongs to the query.
func parseSearch(args []string) (query, brand string, err error) {
	usage := errors.New("usage: search <text> [-b brand]")
	words := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] != "-b" {
			words = append(words, args[i])
			continue
		}
		if i+1 >= len(args) || brand != "" {
			return "", "", usage
		}
		i++
		brand = args[i]
	}
	if len(words) == 0 {
		return "", "", usage
	}
	return strings.Join(words, " "), brand, nil
}

func favorites(ctx context.Context, api *client.API, args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "ls" {
		faults, err := api.Favorites(ctx)
		if err != nil {
			return err
		}
		if len(faults) == 0 {
			fmt.Fprintln(out, "No favorites")
		}
		for _, f := range faults {
			fmt.Fprintf(out, "%-20s %-6s %s\n", f.ID, f.Code, f.Title)
		}
		return nil
	}
	if len(args) < 2 {
		return errors.New("usage: fav add|rm <id>")
	}
	switch args[0] {
	case "add":
		created, err := api.AddFavorite(ctx, args[1])
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintln(out, "Saved")
		} else {
			fmt.Fprintln(out, "Already saved")
		}
	case "rm":
		removed, err := api.RemoveFavorite(ctx, args[1])
		if err != nil {
			return err
		}
		if removed {
			fmt.Fprintln(out, "Removed")
		} else {
			fmt.Fprintln(out, "Not in favorites")
		}
	default:
		return errors.New("usage: fav ls | add <id> | rm <id>")
	}
	return nil
}

func printFault(out io.Writer, page *client.FaultPage) {
	f := page.Fault
	fmt.Fprintf(out, "%s  %s  [%s]\n%s\n", f.Code, f.Title, f.Severity, f.Summary)
	if f.SafetyNotice != nil {
		fmt.Fprintf(out, "! %s\n", *f.SafetyNotice)
	}
	for _, c := range f.Causes {
		fmt.Fprintf(out, "  - %s\n", c)
	}
	for _, s := range page.Steps {
		pro := ""
		if s.RequiresProfessional {
			pro = " (professional)"
		}
		fmt.Fprintf(out, "%d. %s%s\n", s.Order, s.Instruction, pro)
	}
	printAccount(out, &page.Access)
}

func printAccount(out io.Writer, acc *client.Account) {
	if acc.Remaining < 0 {
		fmt.Fprintf(out, "plan: %s (unlimited)\n", acc.Plan)
		return
	}
	fmt.Fprintf(out, "plan: %s, %d of %d left today\n", acc.Plan, acc.Remaining, acc.QuotaLimit)
}

// main parses command-line flags, restores the session and starts the shell.
func main() {
	var (
		baseURL     string
		sessionFile string
		secret      string
		userID      string
		lang        string
		showVer     bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&sessionFile, "session", client.DefaultSessionFile, "path to session file")
	flag.StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "signing secret, mints a token for -user")
	flag.StringVar(&userID, "user", "", "user id for a minted token (random when empty)")
	flag.StringVar(&lang, "lang", "", "preferred language (en, tr)")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("FaultKeeper Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	session, err := client.LoadSession(sessionFile)
	if err != nil {
		log.Fatal(err)
	}
	if secret != "" && (session.Token == "" || userID != "") {
		if userID == "" {
			userID = uuid.NewString()
		}
		token, err := middleware.NewToken([]byte(secret), userID, 30*24*time.Hour)
		if err != nil {
			log.Fatal(err)
		}
		session.SetToken(token)
	}
	if lang != "" {
		session.SetLang(lang)
	}
	if err := session.Save(); err != nil {
		log.Fatal(err)
	}

	repl(client.New(baseURL, session), os.Stdin, os.Stdout)
}
