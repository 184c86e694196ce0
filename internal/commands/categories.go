package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"scrumboard/internal/board"
	"scrumboard/internal/config"
	"scrumboard/internal/exitcode"
	"scrumboard/internal/output"
)

func init() {
	Register(&CategoriesCmd{})
	Register(&AddCategoryCmd{})
}

// CategoriesCmd implements the categories command.
type CategoriesCmd struct{}

func (c *CategoriesCmd) Name() string      { return "categories" }
func (c *CategoriesCmd) Aliases() []string { return nil }
func (c *CategoriesCmd) Synopsis() string  { return "List categories" }
func (c *CategoriesCmd) Usage() string     { return "scrumboard categories" }
func (c *CategoriesCmd) NeedsAuth() bool   { return true }

func (c *CategoriesCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CategoriesCmd) Run(ctx context.Context, cfg *config.Config, b *board.Board, args []string, out, errOut io.Writer) int {
	if err := b.LoadCategories(ctx); err != nil {
		return reportError(errOut, err)
	}

	categories := b.Tasks().Categories()
	if len(categories) == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no categories found")
	}
	for _, cat := range categories {
		output.FormatCategory(out, cat)
	}
	return exitcode.Success
}

// AddCategoryCmd implements the addcategory command.
type AddCategoryCmd struct{}

func (c *AddCategoryCmd) Name() string      { return "addcategory" }
func (c *AddCategoryCmd) Aliases() []string { return []string{"createcategory"} }
func (c *AddCategoryCmd) Synopsis() string  { return "Create a category" }
func (c *AddCategoryCmd) Usage() string     { return "scrumboard addcategory <label...>" }
func (c *AddCategoryCmd) NeedsAuth() bool   { return true }

func (c *AddCategoryCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCategoryCmd) Run(ctx context.Context, cfg *config.Config, b *board.Board, args []string, out, errOut io.Writer) int {
	label := strings.TrimSpace(strings.Join(args, " "))

	cat, err := b.CreateCategory(ctx, label)
	if err != nil {
		if errors.Is(err, board.ErrEmptyLabel) {
			fmt.Fprintln(errOut, "error: category label required")
			return exitcode.UserError
		}
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok: %d\n", cat.ID)
	}
	return exitcode.Success
}
