// Package main provides searchctl, an interactive terminal consumer for
// the research search service. It drives debounced searches against the
// HTTP API and presents results as a sortable, paginated table with CSV
// and PDF export.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/paperscout/research-search-service/internal/client"
	"github.com/paperscout/research-search-service/internal/export"
	"github.com/paperscout/research-search-service/internal/table"
)

const defaultQuery = "machine learning"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "http://localhost:3000", "base URL of the search service")
	rows := flag.Int("rows", 20, "results to request per search")
	query := flag.String("query", defaultQuery, "initial search query")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(zerolog.WarnLevel)

	api := client.NewAPIClient(*addr)
	changed := make(chan struct{}, 1)
	ctrl := client.NewController(api, logger,
		client.WithRows(*rows),
		client.WithOnChange(func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		}),
	)
	defer ctrl.Close()

	go func() {
		for range changed {
			render(ctrl)
			prompt()
		}
	}()

	fmt.Printf("searchctl connected to %s\n", *addr)
	fmt.Println(`type a query to search, or "help" for commands`)
	ctrl.SearchNow(*query)

	scanner := bufio.NewScanner(os.Stdin)
	prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			prompt()
			continue
		}
		if quit := execute(ctrl, line); quit {
			return nil
		}
		prompt()
	}
	return scanner.Err()
}

func prompt() {
	fmt.Print("> ")
}

// execute runs one command line. Any line that is not a recognized
// command is treated as a search query.
func execute(ctrl *client.Controller, line string) (quit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "quit", "exit":
		return true
	case "help":
		printHelp()
	case "show":
		render(ctrl)
	case "sort":
		doSort(ctrl, fields[1:])
	case "page":
		doPage(ctrl, fields[1:])
	case "export":
		doExport(ctrl, fields[1:])
	default:
		ctrl.SearchNow(line)
		fmt.Println("searching...")
	}
	return false
}

func printHelp() {
	fmt.Println(`commands:
  <text>                    search for <text>
  sort <column> [asc|desc]  sort by title, authors, journal, year or doi
  page next|prev|<n>        move between result pages
  export csv|pdf [file]     write the current results to a file
  show                      redraw the current page
  quit                      exit`)
}

func doSort(ctrl *client.Controller, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: sort <column> [asc|desc]")
		return
	}
	var key table.SortKey
	switch args[0] {
	case "title":
		key = table.SortTitle
	case "authors":
		key = table.SortAuthors
	case "journal":
		key = table.SortJournal
	case "year":
		key = table.SortYear
	case "doi":
		key = table.SortDOI
	default:
		fmt.Printf("unknown column %q\n", args[0])
		return
	}
	dir := table.Ascending
	if len(args) > 1 && args[1] == "desc" {
		dir = table.Descending
	}
	ctrl.Sort(key, dir)
	render(ctrl)
}

func doPage(ctrl *client.Controller, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: page next|prev|<n>")
		return
	}
	switch args[0] {
	case "next":
		ctrl.NextPage()
	case "prev":
		ctrl.PrevPage()
	default:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("unknown page %q\n", args[0])
			return
		}
		ctrl.SetPage(n - 1)
	}
	render(ctrl)
}

func doExport(ctrl *client.Controller, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: export csv|pdf [file]")
		return
	}
	items := ctrl.Visible()
	if len(items) == 0 {
		fmt.Println("nothing to export")
		return
	}

	var filename string
	switch args[0] {
	case "csv":
		filename = export.CSVFilename
	case "pdf":
		filename = export.PDFFilename
	default:
		fmt.Printf("unknown format %q\n", args[0])
		return
	}
	if len(args) > 1 {
		filename = args[1]
	}

	f, err := os.Create(filename)
	if err != nil {
		fmt.Printf("export failed: %v\n", err)
		return
	}
	defer f.Close()

	switch args[0] {
	case "csv":
		err = export.WriteCSV(f, items)
	case "pdf":
		err = export.WritePDF(f, "Search results", items)
	}
	if err != nil {
		fmt.Printf("export failed: %v\n", err)
		return
	}
	fmt.Printf("wrote %d visible results to %s\n", len(items), filename)
}

// render prints the current page of results.
func render(ctrl *client.Controller) {
	state, err := ctrl.State()
	switch state {
	case client.StateSearching:
		fmt.Println("searching...")
		return
	case client.StateFailed:
		fmt.Printf("search failed: %v (showing previous results)\n", err)
	case client.StateIdle:
		fmt.Println("no results yet")
		return
	}

	items := ctrl.Visible()
	page, pages := ctrl.Page()
	offset := page * ctrl.PageSize()
	fmt.Printf("%d total matches, page %d/%d\n", ctrl.Total(), page+1, pages)

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTITLE\tAUTHORS\tJOURNAL\tYEAR\tLINK")
	for i, item := range items {
		link := ""
		if item.DOI != "" {
			link = "https://doi.org/" + item.DOI
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			offset+i+1,
			clip(item.Title, 60),
			clip(strings.Join(item.Authors, ", "), 40),
			clip(item.Journal, 30),
			item.Year,
			link,
		)
	}
	w.Flush()
}

// clip truncates s to at most n runes with an ellipsis.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
