package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/promptab/promptvar/internal/config"
	"github.com/promptab/promptvar/internal/engine"
	"github.com/promptab/promptvar/internal/errors"
	"github.com/promptab/promptvar/internal/history"
	"github.com/promptab/promptvar/internal/placeholder"
	"github.com/promptab/promptvar/internal/remote"
	"github.com/promptab/promptvar/internal/variable"
	"github.com/promptab/promptvar/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(store *variable.Store, buffer *history.Buffer, cfg *config.Config, client *remote.Client) *cli.App {
	app := &cli.App{
		Name:    "promptvar",
		Usage:   "Prompt placeholder and variable library",
		Version: Version,
		Commands: []*cli.Command{
			scanCmd(),
			previewCmd(store),
			replaceCmd(store),
			insertCmd(store),
			varCmd(store),
			historyCmd(buffer),
			optimizeCmd(store, buffer, cfg, client),
			pullCmd(store, client),
			pushCmd(store, client),
			serveCmd(store, buffer, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// scanCmd creates the scan command.
func scanCmd() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Scan text for [NAME] and {{name}} placeholders",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "syntax", Aliases: []string{"s"}, Usage: "Restrict to one convention: bracket|mustache"},
		},
		Action: func(c *cli.Context) error {
			text, err := readText(c)
			if err != nil {
				return outputError(err)
			}

			var occs []placeholder.Occurrence
			switch c.String("syntax") {
			case "":
				occs = placeholder.ScanBoth(text)
			case string(placeholder.SyntaxBracket), string(placeholder.SyntaxMustache):
				occs = placeholder.Scan(text, placeholder.Syntax(c.String("syntax")))
			default:
				return outputError(errors.NewInvalidRequest("syntax must be one of: bracket, mustache"))
			}

			return outputJSON(map[string]any{
				"occurrences": occs,
				"names":       placeholder.Names(occs),
			})
		},
	}
}

// previewCmd creates the preview command.
func previewCmd(store *variable.Store) *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Resolve text against the variable library and print the substituted preview",
		ArgsUsage: "[text]",
		Action: func(c *cli.Context) error {
			text, err := readText(c)
			if err != nil {
				return outputError(err)
			}

			view, err := engine.NewSession(text, store).View(c.Context)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(view)
		},
	}
}

// replaceCmd creates the replace command.
func replaceCmd(store *variable.Store) *cli.Command {
	return &cli.Command{
		Name:      "replace",
		Usage:     "Replace one placeholder occurrence at the given offsets (reads text from stdin)",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "start", Required: true, Usage: "Occurrence start offset (half-open)"},
			&cli.IntFlag{Name: "end", Required: true, Usage: "Occurrence end offset (half-open)"},
			&cli.StringFlag{Name: "value", Usage: "Replacement value; omit to reuse the stored variable's value"},
		},
		Action: func(c *cli.Context) error {
			text, err := readText(c)
			if err != nil {
				return outputError(err)
			}

			session := engine.NewSession(text, store)

			selected, ok := findOccurrence(text, c.Int("start"), c.Int("end"))
			if !ok {
				return outputError(errors.NewInvalidState("no occurrence at the given offsets; re-scan the text"))
			}
			if err := session.Select(c.Context, selected); err != nil {
				return outputError(err)
			}

			if c.IsSet("value") {
				err = session.ConfirmValue(c.Context, c.String("value"))
			} else {
				err = session.ConfirmExisting(c.Context)
			}
			if err != nil {
				return outputError(err)
			}

			view, err := session.View(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(view)
		},
	}
}

// insertCmd creates the insert command.
func insertCmd(store *variable.Store) *cli.Command {
	return &cli.Command{
		Name:      "insert",
		Usage:     "Append a placeholder matching the text's delimiter convention",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Variable name to insert"},
		},
		Action: func(c *cli.Context) error {
			text, err := readText(c)
			if err != nil {
				return outputError(err)
			}

			session := engine.NewSession(text, store)
			if err := session.Insert(c.String("name")); err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{"text": session.Text()})
		},
	}
}

// varCmd creates the var command group.
func varCmd(store *variable.Store) *cli.Command {
	return &cli.Command{
		Name:  "var",
		Usage: "Manage the variable library",
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Create or overwrite a variable by name",
				ArgsUsage: "<name> <value>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Optional free text"},
					&cli.StringFlag{Name: "category", Usage: "Optional grouping label"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() < 2 {
						return outputError(errors.NewInvalidRequest("usage: promptvar var set <name> <value>"))
					}

					v, err := store.UpsertByName(c.Context,
						c.Args().Get(0), c.Args().Get(1),
						c.String("description"), c.String("category"))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(v)
				},
			},
			{
				Name:  "list",
				Usage: "List all variables",
				Action: func(c *cli.Context) error {
					vars, err := store.List(c.Context)
					if err != nil {
						return outputError(err)
					}
					if vars == nil {
						vars = []variable.Variable{}
					}
					return outputJSON(map[string]any{"variables": vars})
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete a variable by id",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("usage: promptvar var rm <id>"))
					}

					id := c.Args().First()
					if err := store.RemoveByID(c.Context, id); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"deleted": id})
				},
			},
		},
	}
}

// historyCmd creates the history command group.
func historyCmd(buffer *history.Buffer) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect the recent-prompt history",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent optimization outcomes, most recent first",
				Action: func(c *cli.Context) error {
					entries, err := buffer.List(c.Context)
					if err != nil {
						return outputError(err)
					}
					if entries == nil {
						entries = []history.Entry{}
					}
					return outputJSON(map[string]any{"entries": entries})
				},
			},
			{
				Name:  "clear",
				Usage: "Clear the history",
				Action: func(c *cli.Context) error {
					if err := buffer.Clear(c.Context); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"cleared": true})
				},
			},
		},
	}
}

// optimizeCmd creates the optimize command.
func optimizeCmd(store *variable.Store, buffer *history.Buffer, cfg *config.Config, client *remote.Client) *cli.Command {
	return &cli.Command{
		Name:      "optimize",
		Usage:     "Send a prompt to the backend optimizer and record the outcome",
		ArgsUsage: "[prompt]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "techniques", Aliases: []string{"t"}, Usage: "Comma-separated technique names, e.g. chain_of_thought,few_shot"},
			&cli.BoolFlag{Name: "create-vars", Usage: "Create local variables from the optimizer's suggested placeholders"},
		},
		Action: func(c *cli.Context) error {
			if client == nil {
				return outputError(errors.NewInvalidRequest("api_base_url is not configured"))
			}

			prompt, err := readText(c)
			if err != nil {
				return outputError(err)
			}

			resp, err := client.Optimize(c.Context, remote.OptimizeRequest{
				Prompt:      prompt,
				Techniques:  splitList(c.String("techniques")),
				UseRAG:      cfg.UseRAG,
				LLMProvider: cfg.LLMProvider,
				Language:    cfg.Language,
			})
			if err != nil {
				return outputError(err)
			}

			if _, err := buffer.Add(c.Context, resp.Original, resp.Optimized); err != nil {
				return outputError(err)
			}

			if c.Bool("create-vars") {
				for _, sv := range resp.Variables {
					if sv.SuggestedName == "" {
						continue
					}
					if _, err := store.UpsertByName(c.Context, sv.SuggestedName, sv.Text, "", ""); err != nil {
						return outputError(err)
					}
				}
			}

			return outputJSON(resp)
		},
	}
}

// pullCmd creates the pull command.
func pullCmd(store *variable.Store, client *remote.Client) *cli.Command {
	return &cli.Command{
		Name:  "pull",
		Usage: "Import variables from the backend (newer local copies win)",
		Action: func(c *cli.Context) error {
			if client == nil {
				return outputError(errors.NewInvalidRequest("api_base_url is not configured"))
			}

			result, err := variable.Pull(c.Context, store, client)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(result)
		},
	}
}

// pushCmd creates the push command.
func pushCmd(store *variable.Store, client *remote.Client) *cli.Command {
	return &cli.Command{
		Name:  "push",
		Usage: "Push every local variable to the backend",
		Action: func(c *cli.Context) error {
			if client == nil {
				return outputError(errors.NewInvalidRequest("api_base_url is not configured"))
			}

			result, err := variable.Push(c.Context, store, client)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(result)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(store *variable.Store, buffer *history.Buffer, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the local web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8931, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(store, buffer, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// readText returns the first positional argument, or stdin when piped.
func readText(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	if !stdinHasData() {
		return "", errors.NewInvalidRequest("text must be given as an argument or piped via stdin")
	}
	text, err := readStdin()
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if text == "" {
		return "", errors.NewInvalidRequest("text is required")
	}
	return text, nil
}

// findOccurrence locates the occurrence of text spanning exactly [start,end).
func findOccurrence(text string, start, end int) (placeholder.Occurrence, bool) {
	for _, occ := range placeholder.ScanBoth(text) {
		if occ.Start == start && occ.End == end {
			return occ, true
		}
	}
	return placeholder.Occurrence{}, false
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if pErr, ok := err.(*errors.Error); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", pErr.Code, pErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// splitList splits a comma-separated string, dropping empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
