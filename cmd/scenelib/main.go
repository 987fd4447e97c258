package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/scenelib/internal/compose"
	"github.com/nikbrunner/scenelib/internal/library"
	"github.com/nikbrunner/scenelib/internal/model"
	"github.com/nikbrunner/scenelib/internal/picker"
	"github.com/nikbrunner/scenelib/internal/prefs"
	"github.com/nikbrunner/scenelib/internal/search"
	"github.com/nikbrunner/scenelib/internal/view"
)

var (
	sess        *session
	configPath  string
	logLevel    string
	metricsPath string
	sourceID    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "scenelib",
		Short:         "Browse, tag and search a scene library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), configPath, logLevel, metricsPath)
			if err != nil {
				return err
			}
			sess = s
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if sess != nil {
				sess.Close()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/scenelib/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&metricsPath, "metrics-file", "", "write Prometheus metrics to this textfile on exit")
	rootCmd.PersistentFlags().StringVarP(&sourceID, "source", "s", model.WorldSourceID, `source id ("world" or "pack:<name>")`)

	rootCmd.AddCommand(
		newTreeCmd(),
		newListCmd(),
		newFavCmd(),
		newTagCmd(),
		newTagsCmd(),
		newRecentCmd(),
		newMoveCmd(),
		newImportCmd(),
		newDeleteCmd(),
		newToggleCmd(),
		newPickCmd(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func baseState() library.ViewState {
	return library.NewViewState().WithSource(sourceID)
}

// parseTarget turns "root" or an empty argument into nil.
func parseTarget(arg string) *string {
	if arg == "" || arg == model.ScopeIDUnsorted {
		return nil
	}
	return &arg
}

func newTreeCmd() *cobra.Command {
	var (
		term     string
		expanded []string
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the folder tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			vs := baseState().WithFolderSearch(term)
			for _, id := range expanded {
				vs = vs.WithExpanded(id, true)
			}
			tv, err := sess.lib.VisibleTree(cmd.Context(), vs)
			if err != nil {
				return err
			}
			fmt.Print(view.Tree(tv.Nodes, tv.Counts, view.DefaultStyles()))
			return nil
		},
	}
	cmd.Flags().StringVar(&term, "search", "", "filter folders by name")
	cmd.Flags().StringSliceVarP(&expanded, "expand", "e", nil, "folder ids to expand")
	return cmd
}

func newListCmd() *cobra.Command {
	var (
		scope  string
		query  string
		page   int
		ids    bool
		images bool
		width  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the scenes of a scope",
		Long: `List the scenes of a scope.

Scopes: favorites, all, root (unsorted), recent or a folder id.

Query syntax:
  #a b      scenes tagged with both a and b
  $castle   scenes whose name contains castle
  dragon    scenes whose name or any tag contains dragon`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			vs := baseState().WithScope(model.ParseScope(scope)).WithItemSearch(query).WithPage(page)
			iv, err := sess.lib.VisibleItems(cmd.Context(), vs)
			if err != nil {
				return err
			}
			display := sess.lib.Prefs().Display
			fmt.Print(view.Items(compose.Result(iv), view.ItemOptions{
				ShowTags:     display.ShowTags,
				ShowIDs:      ids,
				ShowImage:    images,
				UseFullImage: display.UseFullImage,
				Width:        width,
			}, view.DefaultStyles()))
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", model.ScopeIDFavorites, "scope to list")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search query")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().BoolVar(&ids, "ids", true, "show scene ids")
	cmd.Flags().BoolVar(&images, "images", false, "show image paths")
	cmd.Flags().IntVar(&width, "width", 0, "truncate names to width")
	return cmd
}

func newFavCmd() *cobra.Command {
	var folder bool
	cmd := &cobra.Command{
		Use:   "fav <id>",
		Short: "Toggle a favorite scene or folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := prefs.KindItem
			if folder {
				kind = prefs.KindFolder
			}
			on, err := sess.lib.ToggleFavorite(cmd.Context(), kind, args[0])
			if err != nil {
				return err
			}
			if on {
				fmt.Printf("Favorited %s\n", args[0])
			} else {
				fmt.Printf("Unfavorited %s\n", args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&folder, "folder", false, "toggle a folder instead of a scene")
	return cmd
}

func newTagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tag <id> [tags...]",
		Short: "Replace the tags of a scene; no tags clears them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tagList []string
			for _, a := range args[1:] {
				tagList = append(tagList, strings.Split(a, ",")...)
			}
			return sess.lib.SetTags(cmd.Context(), args[0], tagList)
		},
	}
}

func newTagsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "tags [partial]",
		Short: "List the tag vocabulary or suggest tags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := sess.lib.Vocabulary()
			if len(args) == 1 {
				out = sess.lib.SuggestTags(args[0], limit)
			}
			for _, t := range out {
				fmt.Println(t)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum suggestions")
	return cmd
}

func newRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show or edit the recently used scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, id := range sess.lib.Prefs().Recents.List() {
				fmt.Printf("%2d  %s\n", i+1, id)
			}
			return nil
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <id>",
			Short: "Mark a scene as recently used",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return sess.lib.AddToRecent(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Remove a scene from the recent list",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return sess.lib.RemoveFromRecent(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Clear the recent list",
			RunE: func(cmd *cobra.Command, args []string) error {
				return sess.lib.ClearRecent(cmd.Context())
			},
		},
	)
	return cmd
}

func newMoveCmd() *cobra.Command {
	var folder bool
	cmd := &cobra.Command{
		Use:   "move <id> <folder-id|root>",
		Short: "Move a scene or folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := parseTarget(args[1])
			var err error
			if folder {
				err = sess.lib.MoveFolder(cmd.Context(), args[0], target)
			} else {
				err = sess.lib.MoveItem(cmd.Context(), args[0], target)
			}
			if err != nil {
				return err
			}
			return sess.saveWorld()
		},
	}
	cmd.Flags().BoolVar(&folder, "folder", false, "move a folder instead of a scene")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <id> [folder-id|root]",
		Short: "Copy a scene into the world",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dest *string
			if len(args) == 2 {
				dest = parseTarget(args[1])
			}
			newID, err := sess.lib.ImportItem(cmd.Context(), args[0], dest)
			if newID != "" {
				if serr := sess.saveWorld(); serr != nil {
					return serr
				}
			}
			if err != nil {
				return err
			}
			fmt.Println(newID)
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a world scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.lib.DeleteItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			return sess.saveWorld()
		},
	}
}

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "toggle <tags|paginate|full-image>",
		Short:     "Flip a display preference",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"tags", "paginate", "full-image"},
		RunE: func(cmd *cobra.Command, args []string) error {
			d := sess.lib.Prefs().Display
			var (
				toggle func(context.Context) error
				value  *bool
			)
			switch args[0] {
			case "tags":
				toggle, value = d.ToggleShowTags, &d.ShowTags
			case "paginate":
				toggle, value = d.TogglePaginate, &d.Paginate
			case "full-image":
				toggle, value = d.ToggleUseFullImage, &d.UseFullImage
			default:
				return fmt.Errorf("unknown preference %q", args[0])
			}
			if err := toggle(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", args[0], strconv.FormatBool(*value))
			return nil
		},
	}
}

func newPickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pick <query...>",
		Short: "Fuzzy search scenes and pick one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			iv, err := sess.lib.VisibleItems(cmd.Context(), baseState().WithScope(model.AllScope))
			if err != nil {
				return err
			}
			// The listing is paginated; fetch every page.
			items := iv.Items
			for page := 2; page <= iv.TotalPages; page++ {
				next, err := sess.lib.VisibleItems(cmd.Context(), baseState().WithScope(model.AllScope).WithPage(page))
				if err != nil {
					return err
				}
				items = append(items, next.Items...)
			}

			results := search.FuzzyItems(items, query)
			if len(results) == 0 {
				fmt.Printf("No scenes found for '%s'\n", query)
				return nil
			}

			var selected *model.Item
			if len(results) == 1 {
				selected = results[0].Item
			} else {
				finalModel, err := tea.NewProgram(picker.New(results, query)).Run()
				if err != nil {
					return fmt.Errorf("run picker: %w", err)
				}
				selected = finalModel.(picker.Picker).SelectedItem()
			}
			if selected == nil {
				return nil
			}

			if err := sess.lib.AddToRecent(cmd.Context(), selected.ID); err != nil {
				return err
			}
			fmt.Println(selected.ID)
			return nil
		},
	}
}
