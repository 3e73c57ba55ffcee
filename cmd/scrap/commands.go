package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/starford/scrap/internal"
	"github.com/starford/scrap/internal/checksum"
	"github.com/starford/scrap/internal/models"
	"github.com/starford/scrap/internal/noteservice"
	"github.com/starford/scrap/internal/resolver"
)

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "sync",
			Usage:  "Rescan the workspace and report what was indexed",
			Action: withSession(runSync),
		},
		{
			Name:      "ls",
			Usage:     "List notes, optionally those in one folder",
			ArgsUsage: "[folder]",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "title", Usage: "Only notes with this exact title"},
				&cli.StringFlag{Name: "type", Usage: "Only notes of this file type"},
			},
			Action: withSession(runList),
		},
		{
			Name:  "folders",
			Usage: "List folders",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name", Usage: "Only folders with this display name"},
			},
			Action: withSession(runFolders),
		},
		{
			Name:      "open",
			Usage:     "Print a note",
			ArgsUsage: "<id>",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "meta", Usage: "Print id, title and type before the body"},
			},
			Action: withSession(runOpen),
		},
		{
			Name:      "add",
			Usage:     "Create an empty note",
			ArgsUsage: "<title>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "type", Value: "plain-text", Usage: "File type of the note"},
				&cli.StringFlag{Name: "parent", Aliases: []string{"p"}, Usage: "Folder id or shorthand, default root"},
			},
			Action: withSession(runAdd),
		},
		{
			Name:      "write",
			Usage:     "Replace the body of a note with standard input",
			ArgsUsage: "<id>",
			Action:    withSession(runWrite),
		},
		{
			Name:      "new-folder",
			Usage:     "Create a folder",
			ArgsUsage: "<name>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "parent", Aliases: []string{"p"}, Usage: "Folder id or shorthand, default root"},
			},
			Action: withSession(runNewFolder),
		},
		{
			Name:      "rename-folder",
			Usage:     "Change the display name of a folder",
			ArgsUsage: "<id> <name>",
			Action:    withSession(runRenameFolder),
		},
		{
			Name:      "rm",
			Usage:     "Move a note or folder to the trash",
			ArgsUsage: "<id>",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "permanent", Usage: "Delete instead of moving to the trash"},
			},
			Action: withSession(runRemove),
		},
		{
			Name:      "history",
			Usage:     "Show recent journal entries",
			ArgsUsage: "[id]",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: noteservice.DefaultHistoryLimit},
			},
			Action: withSession(runHistory),
		},
		{
			Name:  "serve",
			Usage: "Serve the REST API",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "port", Usage: "Listen port, overrides the config file"},
			},
			Action: serve,
		},
		{
			Name:   "mcp",
			Usage:  "Serve MCP tools over stdio",
			Action: serveMCP,
		},
	}
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	arg := cmd.Args().First()
	if arg == "" {
		return "", fmt.Errorf("%s: missing %s", cmd.Name, name)
	}
	return arg, nil
}

func runSync(ctx context.Context, _ *cli.Command, sess *internal.Session) error {
	r, err := sess.Service.Sync(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d notes, %d folders\n", r.Notes.Inserted, r.Folders.Inserted)
	for _, id := range r.Notes.Conflicts {
		fmt.Printf("duplicate note id %s\n", id)
	}
	for _, id := range r.Folders.Conflicts {
		fmt.Printf("duplicate folder id %s\n", id)
	}
	return nil
}

func runList(ctx context.Context, cmd *cli.Command, sess *internal.Session) error {
	svc := sess.Service
	var notes []models.NoteSummary
	switch {
	case cmd.Args().Present():
		view, err := svc.Folder(ctx, cmd.Args().First())
		if err != nil {
			return err
		}
		notes = view.Notes
	case cmd.String("title") != "":
		notes = summaries(svc.NotesByTitle(ctx, cmd.String("title")))
	case cmd.String("type") != "":
		notes = summaries(svc.NotesByType(ctx, cmd.String("type")))
	default:
		notes = svc.ListNotes(ctx)
	}

	tw := newTable(os.Stdout)
	for _, n := range notes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", resolver.Shorthand(n.ID), n.FileType, n.Title)
	}
	return tw.Flush()
}

func runFolders(ctx context.Context, cmd *cli.Command, sess *internal.Session) error {
	var folders []models.FolderSummary
	if name := cmd.String("name"); name != "" {
		for _, f := range sess.Service.FoldersByName(ctx, name) {
			folders = append(folders, models.FolderSummary{ID: f.ID, ParentID: f.ParentID, DisplayName: f.DisplayName})
		}
	} else {
		folders = sess.Service.ListFolders(ctx)
	}

	tw := newTable(os.Stdout)
	for _, f := range folders {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", resolver.Shorthand(f.ID), f.DisplayName, resolver.Shorthand(f.ParentID))
	}
	return tw.Flush()
}

func runOpen(ctx context.Context, cmd *cli.Command, sess *internal.Session) error {
	id, err := requireArg(cmd, "note id")
	if err != nil {
		return err
	}
	out, err := sess.Service.Execute(ctx, noteservice.OpenNote{ID: id})
	if err != nil {
		return err
	}
	n := out.Note
	if cmd.Bool("meta") {
		fmt.Printf("id:    %s\ntitle: %s\ntype:  %s\npath:  %s\n\n", n.ID, n.Title, n.FileType, n.RelPath)
	}
	fmt.Print(n.Body)
	return nil
}

func runAdd(ctx context.Context, cmd *cli.Command, sess *internal.Session) error {
	title, err := requireArg(cmd, "title")
	if err != nil {
		return err
	}
	out, err := sess.Service.Execute(ctx, noteservice.CreateNote{
		Parent:   cmd.String("parent"),
		Title:    title,
		FileType: cmd.String("type"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", resolver.Shorthand(out.Note.ID), out.Note.RelPath)
	return nil
}

func runWrite(ctx context.Context, cmd *cli.Command, sess *internal.Session) error {
	id, err := requireArg(cmd, "note id")
	if err != nil {
		return err
	}
	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	out, err := sess.Service.Execute(ctx, noteservice.UpdateNote{ID: id, Body: string(body)})
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", resolver.Shorthand(out.Note.ID), checksum.Short(out.Note.Checksum))
	return nil
}

func runNewFolder(ctx context.Context, cmd *cli.Command, sess *internal.Session) error {
	name, err := requireArg(cmd, "folder name")
	if err != nil {
		return err
	}
	out, err := sess.Service.Execute(ctx, noteservice.CreateFolder{
		Parent:      cmd.String("parent"),
		DisplayName: name,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", resolver.Shorthand(out.Folder.ID), out.Folder.RelPath)
	return nil
}

func runRenameFolder(ctx context.Context, cmd *cli.Command, sess *internal.Session) error {
	id, err := requireArg(cmd, "folder id")
	if err != nil {
		return err
	}
	name := cmd.Args().Get(1)
	if name == "" {
		return fmt.Errorf("%s: missing new name", cmd.Name)
	}
	out, err := sess.Service.Execute(ctx, noteservice.RenameFolder{ID: id, DisplayName: name})
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", resolver.Shorthand(out.Folder.ID), out.Folder.DisplayName)
	return nil
}

func runRemove(ctx context.Context, cmd *cli.Command, sess *internal.Session) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	out, err := sess.Service.Execute(ctx, noteservice.Remove{ID: id, Permanent: cmd.Bool("permanent")})
	if err != nil {
		return err
	}
	fmt.Printf("removed %d notes, %d folders\n", len(out.Removed.Notes), len(out.Removed.Folders))
	if out.TrashPath != "" {
		fmt.Printf("moved to %s\n", out.TrashPath)
	}
	return nil
}

func runHistory(ctx context.Context, cmd *cli.Command, sess *internal.Session) error {
	entries, err := sess.Service.History(ctx, cmd.Args().First(), int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	tw := newTable(os.Stdout)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.RecordedAt.Local().Format(time.DateTime), e.Action, e.Kind, resolver.Shorthand(e.EntityID), e.Path)
	}
	return tw.Flush()
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func summaries(notes []models.Note) []models.NoteSummary {
	out := make([]models.NoteSummary, 0, len(notes))
	for _, n := range notes {
		out = append(out, models.NoteSummary{ID: n.ID, Title: n.Title, FileType: n.FileType})
	}
	return out
}
