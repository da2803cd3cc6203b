package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/yapp/binding"
	"github.com/ardnew/yapp/lang"
	"github.com/ardnew/yapp/log"
)

const defaultEditor = "vi"

// editIndent is the indentation of the document presented for editing.
const editIndent = 2

// editDocumentCommand implements [tea.ExecCommand] for the environment
// document edit-load-retry loop. It writes the current document to a temp
// file, opens the user's editor, and loads the result. On error the user is
// prompted to re-edit; declining exits the program.
type editDocumentCommand struct {
	doc     binding.Document
	ctxFunc func() context.Context
	logger  log.Logger

	// Set by Run when the edited document loads successfully.
	newDoc binding.Document
	newEnv lang.Env
	edited bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editDocumentCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editDocumentCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editDocumentCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-load-retry loop. If the user declines to re-edit, it
// returns [ErrEditDeclined]. Clearing the file cancels the edit.
func (c *editDocumentCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := yaml.MarshalWithOptions(c.doc, yaml.Indent(editIndent))
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	f, err := os.CreateTemp("", "yapp-repl-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	err = f.Close()
	if err != nil {
		return err
	}

	for {
		err = os.WriteFile(tmpPath, content, 0o600)
		if err != nil {
			return err
		}

		err = runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		content, err = os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(content)) == 0 {
			return nil
		}

		loadErr := c.load(ctx, content)
		c.logger.TraceContext(
			ctx,
			"editor load attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", loadErr == nil),
		)

		if loadErr == nil {
			return nil
		}

		fmt.Fprintf(c.stderr, "\nLoad error: %s\n", loadErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}
	}
}

// load decodes content and builds its environment, recording both on
// success.
func (c *editDocumentCommand) load(ctx context.Context, content []byte) error {
	doc, err := binding.Decode(ctx, bytes.NewReader(content))
	if err != nil {
		return err
	}

	env, err := doc.Env(ctx, binding.WithLogger(c.logger))
	if err != nil {
		return err
	}

	c.newDoc, c.newEnv, c.edited = doc, env, true

	return nil
}

// runEditor launches the user's editor on the given file path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	// The editor may carry its own arguments, as in "code --wait".
	args := strings.Fields(editor)

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
