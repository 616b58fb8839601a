package cli

import (
	coreapp "codeflow/internal/core/app"
	"codeflow/internal/core/errors"
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/usermodel"
	"codeflow/internal/ui/report"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

func execute(ctx context.Context, a *coreapp.App, opts cliOptions, in io.Reader, out io.Writer) error {
	switch opts.command {
	case "rank":
		return runRank(a, opts, out)
	case "layout":
		return runLayout(a, opts, out)
	case "search":
		if len(opts.args) == 0 {
			return usageError("search requires a query")
		}
		return runSearch(ctx, a, opts, strings.Join(opts.args, " "), out)
	case "suggest":
		return runSuggest(ctx, a, opts, out)
	case "filter":
		return runFilter(a, opts, out)
	case "ingest":
		return runIngest(a, opts, in, out)
	case "bookmarks":
		return runBookmarks(ctx, a, opts, out)
	case "cycles":
		return runCycles(a, opts, out)
	case "chain":
		if len(opts.args) != 2 {
			return usageError("chain requires two file paths: codeflow chain <from> <to>")
		}
		return runChain(a, opts, out)
	case "export":
		scene := report.BuildScene(a.Graph.Current(), a.Suite)
		rendered, err := report.Render(scene, opts.format)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, rendered)
		return err
	case "health":
		return writeJSON(out, coreapp.NewHealthService(a).Check(ctx))
	case "watch":
		return runWatch(ctx, a)
	}
	return usageError("unknown command " + opts.command)
}

func usageError(msg string) error {
	return errors.New(errors.CodeValidationError, msg)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func limitOf(opts cliOptions, n int) int {
	if opts.limit > 0 && opts.limit < n {
		return opts.limit
	}
	return n
}

func runRank(a *coreapp.App, opts cliOptions, out io.Writer) error {
	ranked := a.Suite.Ranking.RankFiles(a.Graph.Current().Nodes())
	ranked = ranked[:limitOf(opts, len(ranked))]
	annotated := a.Suite.Layout.Annotate(ranked)

	if opts.jsonOut {
		return writeJSON(out, annotated)
	}
	rows := make([][]string, 0, len(annotated))
	for i, n := range annotated {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			n.Node.Path,
			n.Node.Language,
			formatScore(n.Importance.TotalScore),
			formatScore(n.Temperature),
			formatScore(n.PersonalizedScore),
		})
	}
	_, err := fmt.Fprintln(out, renderTable("Files", []string{"#", "Path", "Language", "Importance", "Temperature", "Personal"}, rows))
	return err
}

type layoutRow struct {
	Path     string         `json:"path"`
	Position ports.Position `json:"position"`
	Size     float64        `json:"size"`
	Color    string         `json:"color"`
}

func runLayout(a *coreapp.App, opts cliOptions, out io.Writer) error {
	nodes := a.Graph.Current().Nodes()
	nodes = nodes[:limitOf(opts, len(nodes))]

	placed := make([]layoutRow, 0, len(nodes))
	for _, n := range nodes {
		placed = append(placed, layoutRow{
			Path:     n.Path,
			Position: a.Suite.Layout.Position(n),
			Size:     a.Suite.Layout.Size(n),
			Color:    a.Suite.Coloring.NodeColor(n),
		})
	}
	if opts.jsonOut {
		return writeJSON(out, placed)
	}
	rows := make([][]string, 0, len(placed))
	for _, p := range placed {
		rows = append(rows, []string{
			p.Path,
			fmt.Sprintf("%.1f, %.1f, %.1f", p.Position.X, p.Position.Y, p.Position.Z),
			fmt.Sprintf("%.1f", p.Size),
			p.Color,
		})
	}
	_, err := fmt.Fprintln(out, renderTable("Layout", []string{"Path", "Position", "Size", "Color"}, rows))
	return err
}

func runSearch(ctx context.Context, a *coreapp.App, opts cliOptions, query string, out io.Writer) error {
	results := a.Suite.Search.Search(ctx, query)
	results = results[:limitOf(opts, len(results))]
	if opts.jsonOut {
		return writeJSON(out, results)
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Path, formatScore(r.RelevanceScore), firstLine(r.Preview)})
	}
	_, err := fmt.Fprintln(out, renderTable("Search: "+query, []string{"Path", "Score", "Preview"}, rows))
	return err
}

func runSuggest(ctx context.Context, a *coreapp.App, opts cliOptions, out io.Writer) error {
	var suggestions []ports.Suggestion
	title := "Suggestions"
	if len(opts.args) == 0 {
		suggestions = a.Suite.Suggestions.Contextual(ctx)
		title = "Contextual suggestions"
	} else {
		current, ok := a.Graph.FileByPath(opts.args[0])
		if !ok {
			return errors.AddContext(errors.New(errors.CodeNotFound, "file not in graph"), errors.CtxPath, opts.args[0])
		}
		suggestions = a.Suite.Suggestions.Suggest(ctx, current, ports.SuggestionContext{Exclude: splitList(opts.exclude)})
		title = "Suggestions for " + current.Path
	}
	suggestions = suggestions[:limitOf(opts, len(suggestions))]

	if opts.jsonOut {
		return writeJSON(out, suggestions)
	}
	rows := make([][]string, 0, len(suggestions))
	for _, s := range suggestions {
		rows = append(rows, []string{s.File, formatScore(s.Confidence), string(s.Type), s.Reason})
	}
	_, err := fmt.Fprintln(out, renderTable(title, []string{"File", "Confidence", "Type", "Reason"}, rows))
	return err
}

type filterView struct {
	DefaultLanguages []string                `json:"defaultLanguages"`
	Active           []string                `json:"active"`
	Visible          []string                `json:"visible"`
	Preferences      ports.FilterPreferences `json:"preferences"`
}

func runFilter(a *coreapp.App, opts cliOptions, out io.Writer) error {
	view := filterView{
		DefaultLanguages: a.Suite.Filtering.DefaultLanguages(),
		Preferences:      a.Suite.Filtering.Preferences(),
	}
	view.Active = splitList(opts.languages)
	if len(view.Active) == 0 {
		view.Active = view.DefaultLanguages
	}
	for _, n := range a.Suite.Filtering.Apply(a.Graph.Current().Nodes(), view.Active) {
		view.Visible = append(view.Visible, n.Path)
	}

	if opts.jsonOut {
		return writeJSON(out, view)
	}
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Default languages:"), strings.Join(view.DefaultLanguages, ", "))
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Active languages:"), strings.Join(view.Active, ", "))
	fmt.Fprintf(out, "%s %d of %d files\n", labelStyle.Render("Visible:"), len(view.Visible), a.Graph.Current().NodeCount())

	rows := preferenceRows("language", view.Preferences.Languages)
	rows = append(rows, preferenceRows("folder", view.Preferences.Folders)...)
	rows = append(rows, preferenceRows("extension", view.Preferences.Extensions)...)
	_, err := fmt.Fprintln(out, renderTable("Preferences", []string{"Kind", "Key", "Score"}, rows))
	return err
}

func runIngest(a *coreapp.App, opts cliOptions, in io.Reader, out io.Writer) error {
	src := in
	if len(opts.args) > 0 && opts.args[0] != "-" {
		f, err := os.Open(opts.args[0])
		if err != nil {
			return errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "open interactions"), errors.CtxPath, opts.args[0])
		}
		defer f.Close()
		src = f
	}

	dec := json.NewDecoder(src)
	accepted, ignored := 0, 0
	for dec.More() {
		var event usermodel.Interaction
		if err := dec.Decode(&event); err != nil {
			return errors.Wrap(err, errors.CodeValidationError, "decode interaction")
		}
		if event.Timestamp == 0 {
			event.Timestamp = a.Model.Now()
		}
		if event.Language == "" {
			if n, ok := a.Graph.FileByPath(event.FilePath); ok {
				event.Language = n.Language
			}
		}
		if a.Ingest(event) {
			accepted++
		} else {
			ignored++
			slog.Debug("interaction ignored", "type", event.Type, "path", event.FilePath)
		}
	}

	if opts.jsonOut {
		return writeJSON(out, map[string]any{"accepted": accepted, "ignored": ignored, "version": a.Model.Version()})
	}
	_, err := fmt.Fprintf(out, "ingested %d interactions (%d ignored), model version %d\n", accepted, ignored, a.Model.Version())
	return err
}

func runBookmarks(ctx context.Context, a *coreapp.App, opts cliOptions, out io.Writer) error {
	store := a.Bookmarks()
	if store == nil {
		return errors.New(errors.CodeUnavailable, "bookmarks need the database; set db.enabled")
	}
	user := a.Config.User.ID

	action := "list"
	if len(opts.args) > 0 {
		action = opts.args[0]
	}
	switch action {
	case "add":
		if len(opts.args) != 2 {
			return usageError("bookmarks add requires a path")
		}
		b := ports.Bookmark{UserID: user, Path: opts.args[1], Note: opts.note}
		if n, ok := a.Graph.FileByPath(b.Path); ok {
			b.Name = n.Name
		}
		if err := store.SaveBookmark(ctx, b); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "bookmarked %s\n", b.Path)
		return err
	case "remove":
		if len(opts.args) != 2 {
			return usageError("bookmarks remove requires an id or path")
		}
		if err := store.DeleteBookmark(ctx, user, opts.args[1]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "removed %s\n", opts.args[1])
		return err
	case "list":
	default:
		return usageError("unknown bookmarks action " + action)
	}

	criterion, ok := ports.ParseBookmarkCriterion(opts.by)
	if !ok {
		return usageError("unknown bookmark sort " + opts.by)
	}
	list, err := store.ListBookmarks(ctx, user)
	if err != nil {
		return err
	}
	sorted := a.Suite.Ranking.SortBookmarks(list, criterion)
	if opts.jsonOut {
		return writeJSON(out, sorted)
	}
	rows := make([][]string, 0, len(sorted))
	for _, b := range sorted {
		rows = append(rows, []string{b.Name, b.Path, a.Suite.Ranking.BookmarkStats(b), b.Note})
	}
	_, err = fmt.Fprintln(out, renderTable("Bookmarks by "+string(criterion), []string{"Name", "Path", "Stats", "Note"}, rows))
	return err
}

func runCycles(a *coreapp.App, opts cliOptions, out io.Writer) error {
	cycles := a.Graph.Current().DetectCycles()
	if opts.jsonOut {
		return writeJSON(out, cycles)
	}
	if len(cycles) == 0 {
		_, err := fmt.Fprintln(out, okStyle.Render("no dependency cycles"))
		return err
	}
	fmt.Fprintln(out, cycleStyle.Render(fmt.Sprintf("%d dependency cycles", len(cycles))))
	for _, cycle := range cycles {
		fmt.Fprintf(out, "  %s -> %s\n", strings.Join(cycle, " -> "), cycle[0])
	}
	return nil
}

func runChain(a *coreapp.App, opts cliOptions, out io.Writer) error {
	chain, ok := a.Graph.Current().DependencyChain(opts.args[0], opts.args[1])
	if !ok {
		return errors.AddContext(
			errors.Newf(errors.CodeNotFound, "no dependency chain from %s to %s", opts.args[0], opts.args[1]),
			errors.CtxOperation, "chain",
		)
	}
	if opts.jsonOut {
		return writeJSON(out, chain)
	}
	_, err := fmt.Fprintln(out, strings.Join(chain, " -> "))
	return err
}

func runWatch(ctx context.Context, a *coreapp.App) error {
	if !a.Config.Graph.Watch {
		slog.Info("graph.watch is off in config; watching anyway for this command")
	}
	if err := a.StartWatcher(); err != nil {
		return err
	}
	slog.Info("watching graph document", "path", a.Config.Graph.Path)
	<-ctx.Done()
	return nil
}
