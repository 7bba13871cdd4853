package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"indx-go/internal/app"
	"indx-go/internal/config"
	"indx-go/internal/indx"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Index", "Query").
func newApp(ctx context.Context, operation string) (*app.App, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// parseTagList splits a comma-separated tag list into FilteringTags.
func parseTagList(raw string) []indx.FilteringTag {
	var tags []indx.FilteringTag
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tags = append(tags, indx.ParseTag(part))
	}
	return tags
}

// queryFlags registers the shared query flags on a command.
func queryFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("recursive", "r", false, "Include subdirectories")
	cmd.Flags().StringArrayP("tag", "t", nil, "Require a tag (repeatable)")
	cmd.Flags().StringArray("not-tag", nil, "Exclude a tag (repeatable)")
	cmd.Flags().Bool("any-tag", false, "Match any required tag instead of all")
	cmd.Flags().StringArray("type", nil, "Filter by content type (repeatable)")
	cmd.Flags().StringArrayP("name", "n", nil, "Filter by name substring (repeatable)")
	cmd.Flags().Bool("any-name", false, "Match any name substring instead of all")
	cmd.Flags().String("visibility", "", "Visibility filter: normal, hidden or any")
	cmd.Flags().String("sort", "", "Sort order: name, name_desc, created, created_desc, updated, updated_desc")
	cmd.Flags().Int("limit", 0, "Maximum number of results")
	cmd.Flags().Int("offset", 0, "Number of results to skip")
	cmd.Flags().Bool("cached", false, "Serve from the query cache when possible")
}

// queryParams builds RequestParams from the shared query flags and the
// optional directory argument (default: current directory).
func queryParams(cmd *cobra.Command, args []string) (indx.RequestParams, error) {
	var params indx.RequestParams

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return params, fmt.Errorf("resolving %s: %w", root, err)
	}
	params.Root = abs

	params.Recursive, _ = cmd.Flags().GetBool("recursive")
	params.Cached, _ = cmd.Flags().GetBool("cached")
	params.Types, _ = cmd.Flags().GetStringArray("type")
	params.Names, _ = cmd.Flags().GetStringArray("name")
	params.Limit, _ = cmd.Flags().GetInt("limit")
	params.Offset, _ = cmd.Flags().GetInt("offset")

	tags, _ := cmd.Flags().GetStringArray("tag")
	for _, raw := range tags {
		for _, tag := range parseTagList(raw) {
			params.Tags = append(params.Tags, indx.TagFilter{Tag: tag})
		}
	}
	notTags, _ := cmd.Flags().GetStringArray("not-tag")
	for _, raw := range notTags {
		for _, tag := range parseTagList(raw) {
			params.Tags = append(params.Tags, indx.TagFilter{Tag: tag, Exclude: true})
		}
	}

	if anyTag, _ := cmd.Flags().GetBool("any-tag"); anyTag {
		params.TagOperator = indx.OperatorOr
	}
	if anyName, _ := cmd.Flags().GetBool("any-name"); anyName {
		params.NameOperator = indx.OperatorOr
	}

	visibility, _ := cmd.Flags().GetString("visibility")
	switch visibility {
	case "":
	case "normal":
		params.Visibility = indx.VisibilityNormal
	case "hidden":
		params.Visibility = indx.VisibilityHidden
	case "any":
		params.Visibility = indx.VisibilityAny
	default:
		return params, fmt.Errorf("unknown visibility %q", visibility)
	}

	sortBy, _ := cmd.Flags().GetString("sort")
	params.SortBy = indx.SortBy(sortBy)

	return params, nil
}

// printInfos writes query results: tab-separated when piped, aligned when
// printing to a terminal.
func printInfos(infos []*indx.IndexInfo) {
	if len(infos) == 0 {
		fmt.Println("No content found.")
		return
	}

	tty := term.IsTerminal(int(os.Stdout.Fd()))
	for _, info := range infos {
		var tags []string
		for _, tag := range info.Tags {
			tags = append(tags, tag.String())
		}
		if tty {
			fmt.Printf("%-10s %-40s %s\n", info.Type, info.Name, strings.Join(tags, ", "))
		} else {
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
				info.ID, info.Type, info.Location, info.Name, strings.Join(tags, ","))
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "indx",
	Short: "Filesystem content indexer and tagging engine",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:  %s\n", cfg.LogDir)
		fmt.Printf("Database: %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Cache:    %s (ttl %dm)\n", cfg.Cache.Type, cfg.Cache.TTLMinutes)
		return nil
	},
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		if err := app.Migrate(cfg); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Database is up to date.")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether migrations are pending",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		if err := app.MigrationStatus(cfg); err != nil {
			fmt.Printf("Migrations pending: %v\n", err)
			return nil
		}
		fmt.Println("Database schema is current.")
		return nil
	},
}

// index command
var indexCmd = &cobra.Command{
	Use:   "index [DIR]",
	Short: "Index a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Index")
		if err != nil {
			return err
		}
		defer a.Close()

		target := "."
		if len(args) > 0 {
			target = args[0]
		}
		if target == "." {
			if target, err = os.Getwd(); err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
		}

		diff, err := a.Service.IndexDirectory(ctx, target)
		if err != nil {
			return fmt.Errorf("indexing: %w", err)
		}

		fmt.Printf("Indexed %s: %d added, %d relocated, %d removed, %d unchanged\n",
			target, len(diff.Added), len(diff.Relocated), len(diff.Removed), diff.Unchanged)
		if len(diff.Duplicates) > 0 {
			fmt.Printf("%d of the added files are copies of already-indexed content\n", len(diff.Duplicates))
		}
		return nil
	},
}

// ls command
var lsCmd = &cobra.Command{
	Use:   "ls [DIR]",
	Short: "List and filter indexed content",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		params, err := queryParams(cmd, args)
		if err != nil {
			return err
		}

		a, err := newApp(ctx, "Query")
		if err != nil {
			return err
		}
		defer a.Close()

		infos, err := a.Service.Query(ctx, params)
		if err != nil {
			return err
		}
		printInfos(infos)
		return nil
	},
}

// info command
var infoCmd = &cobra.Command{
	Use:   "info ID",
	Short: "Show one content record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "GetInfo")
		if err != nil {
			return err
		}
		defer a.Close()

		id := indx.ContentID(args[0])
		info, err := a.Service.GetIndexInfo(ctx, id)
		if err != nil {
			return err
		}
		if info == nil {
			fmt.Println("Not found.")
			return nil
		}

		fmt.Printf("ID:         %s\n", info.ID)
		fmt.Printf("Name:       %s\n", info.Name)
		fmt.Printf("Location:   %s\n", info.Location)
		fmt.Printf("Type:       %s\n", info.Type)
		fmt.Printf("Visibility: %s\n", info.Visibility)
		fmt.Printf("Created:    %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
		for _, tag := range info.Tags {
			fmt.Printf("Tag:        %s\n", tag.String())
		}

		attrs, err := a.Service.GetAttributes(ctx, id)
		if err != nil {
			return err
		}
		for key, value := range attrs {
			fmt.Printf("Attr:       %s=%s\n", key, value)
		}
		return nil
	},
}

// content commands
var mvCmd = &cobra.Command{
	Use:   "mv ID NEW_NAME",
	Short: "Rename content on disk and in the index",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Rename")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service.RenameContent(ctx, indx.ContentID(args[0]), args[1]); err != nil {
			return err
		}
		fmt.Printf("Renamed to %s\n", args[1])
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move ID DIR",
	Short: "Move content to another directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Move")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service.MoveContent(ctx, indx.ContentID(args[0]), args[1]); err != nil {
			return err
		}
		fmt.Printf("Moved to %s\n", args[1])
		return nil
	},
}

var hideCmd = &cobra.Command{
	Use:   "hide ID",
	Short: "Hide content from default listings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "SetVisibility")
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Service.SetVisibility(ctx, indx.ContentID(args[0]), indx.VisibilityHidden)
	},
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Restore hidden content to normal visibility",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "SetVisibility")
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Service.SetVisibility(ctx, indx.ContentID(args[0]), indx.VisibilityNormal)
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove content from the index (the file stays on disk)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service.DeleteContent(ctx, indx.ContentID(args[0])); err != nil {
			return err
		}
		fmt.Println("Removed from index.")
		return nil
	},
}

// attr command
var attrCmd = &cobra.Command{
	Use:   "attr",
	Short: "Manage content attributes",
}

var attrSetCmd = &cobra.Command{
	Use:   "set ID KEY VALUE",
	Short: "Set an attribute",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "SetAttribute")
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Service.SetAttribute(ctx, indx.ContentID(args[0]), args[1], args[2])
	},
}

var attrGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "List attributes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "GetAttributes")
		if err != nil {
			return err
		}
		defer a.Close()

		attrs, err := a.Service.GetAttributes(ctx, indx.ContentID(args[0]))
		if err != nil {
			return err
		}
		for key, value := range attrs {
			fmt.Printf("%s=%s\n", key, value)
		}
		return nil
	},
}

// tag command
var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add TAGS ID [ID...]",
	Short: "Attach comma-separated tags to content",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Tag")
		if err != nil {
			return err
		}
		defer a.Close()

		tags := parseTagList(args[0])
		var ids []indx.ContentID
		for _, arg := range args[1:] {
			ids = append(ids, indx.ContentID(arg))
		}
		return a.Service.AssociateTags(ctx, tags, ids)
	},
}

var tagSetCmd = &cobra.Command{
	Use:   "set TAGS ID [ID...]",
	Short: "Replace the complete tag set of content",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Retag")
		if err != nil {
			return err
		}
		defer a.Close()

		tags := parseTagList(args[0])
		var ids []indx.ContentID
		for _, arg := range args[1:] {
			ids = append(ids, indx.ContentID(arg))
		}
		return a.Service.ReplaceTags(ctx, ids, tags)
	},
}

var tagRmCmd = &cobra.Command{
	Use:   "rm TAG [ID...]",
	Short: "Detach a tag, everywhere or from specific content",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Untag")
		if err != nil {
			return err
		}
		defer a.Close()

		tag := indx.ParseTag(args[0])
		var scope indx.RemovalScope
		matchRoot, _ := cmd.Flags().GetString("matching")
		switch {
		case matchRoot != "":
			recursive, _ := cmd.Flags().GetBool("recursive")
			scope.Matching = &indx.RequestParams{Root: matchRoot, Recursive: recursive}
		case len(args) > 1:
			for _, arg := range args[1:] {
				scope.ContentIDs = append(scope.ContentIDs, indx.ContentID(arg))
			}
		default:
			scope.All = true
		}
		return a.Service.RemoveTag(ctx, tag, scope)
	},
}

var tagRenameCmd = &cobra.Command{
	Use:   "rename OLD NEW [ID...]",
	Short: "Rename a tag, globally or for specific content only",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "RenameTag")
		if err != nil {
			return err
		}
		defer a.Close()

		oldTag := indx.ParseTag(args[0])
		newTag := indx.ParseTag(args[1])
		if len(args) > 2 {
			var ids []indx.ContentID
			for _, arg := range args[2:] {
				ids = append(ids, indx.ContentID(arg))
			}
			return a.Service.RenameTagFor(ctx, oldTag, newTag, ids)
		}
		return a.Service.RenameTag(ctx, oldTag, newTag)
	},
}

var tagConsolidateCmd = &cobra.Command{
	Use:   "consolidate FROM INTO",
	Short: "Merge one tag into another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "ConsolidateTag")
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Service.ConsolidateTag(ctx, indx.ParseTag(args[0]), indx.ParseTag(args[1]))
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "ListTags")
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.Service.ListTags(ctx)
		if err != nil {
			return err
		}
		for _, rec := range records {
			fmt.Println(rec.Tag().String())
		}
		return nil
	},
}

// bookmark command
var bookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "Manage bookmarks",
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add ID",
	Short: "Bookmark content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Bookmark")
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.Service.Bookmark(ctx, indx.ContentID(args[0])); err != nil {
			return err
		}
		fmt.Println("Bookmarked.")
		return nil
	},
}

var bookmarkRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Unbookmark")
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Service.Unbookmark(ctx, indx.ContentID(args[0]))
	},
}

var bookmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "ListBookmarks")
		if err != nil {
			return err
		}
		defer a.Close()

		bookmarks, err := a.Service.ListBookmarks(ctx)
		if err != nil {
			return err
		}
		for _, b := range bookmarks {
			info, err := a.Service.GetIndexInfo(ctx, b.IndexID)
			if err != nil {
				return err
			}
			if info == nil {
				continue
			}
			fmt.Printf("%s\t%s/%s\n", b.CreatedAt.Format("2006-01-02"), info.Location, info.Name)
		}
		return nil
	},
}

// queue command
var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Manage queues",
}

var queueCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "CreateQueue")
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.Service.CreateQueue(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Queue %s created.\n", args[0])
		return nil
	},
}

var queueAddCmd = &cobra.Command{
	Use:   "add NAME ID",
	Short: "Append content to a queue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Enqueue")
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.Service.Enqueue(ctx, args[0], indx.ContentID(args[1]))
		if err != nil {
			return err
		}
		fmt.Printf("Queued at position %d.\n", item.Position)
		return nil
	},
}

var queueDoneCmd = &cobra.Command{
	Use:   "done ITEM_ID",
	Short: "Mark a queue item completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "CompleteQueueItem")
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Service.CompleteQueueItem(ctx, args[0])
	},
}

var queueListCmd = &cobra.Command{
	Use:   "list [NAME]",
	Short: "List queues, or the items of one queue",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "ListQueues")
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 0 {
			queues, err := a.Service.ListQueues(ctx)
			if err != nil {
				return err
			}
			for _, q := range queues {
				fmt.Println(q.Name)
			}
			return nil
		}

		items, err := a.Service.ListQueueItems(ctx, args[0])
		if err != nil {
			return err
		}
		for _, item := range items {
			done := " "
			if item.Completed {
				done = "x"
			}
			info, err := a.Service.GetIndexInfo(ctx, item.IndexID)
			if err != nil {
				return err
			}
			name := string(item.IndexID)
			if info != nil {
				name = info.Name
			}
			fmt.Printf("[%s] %3d  %s  (%s)\n", done, item.Position, name, item.ID)
		}
		return nil
	},
}

// query command (saved queries)
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Manage saved queries",
}

var querySaveCmd = &cobra.Command{
	Use:   "save NAME [DIR]",
	Short: "Save the given filters under a name",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		params, err := queryParams(cmd, args[1:])
		if err != nil {
			return err
		}

		a, err := newApp(ctx, "SaveQuery")
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.Service.SaveQuery(ctx, args[0], params); err != nil {
			return err
		}
		fmt.Printf("Saved query %s.\n", args[0])
		return nil
	},
}

var queryRunCmd = &cobra.Command{
	Use:   "run NAME",
	Short: "Run a saved query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "RunSavedQuery")
		if err != nil {
			return err
		}
		defer a.Close()

		infos, err := a.Service.RunSavedQuery(ctx, args[0])
		if err != nil {
			return err
		}
		printInfos(infos)
		return nil
	},
}

var queryRenameCmd = &cobra.Command{
	Use:   "rename OLD NEW",
	Short: "Rename a saved query",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "RenameSavedQuery")
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Service.RenameSavedQuery(ctx, args[0], args[1])
	},
}

var queryRmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Delete a saved query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "DeleteSavedQuery")
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Service.DeleteSavedQuery(ctx, args[0])
	},
}

var queryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved queries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "ListSavedQueries")
		if err != nil {
			return err
		}
		defer a.Close()

		queries, err := a.Service.ListSavedQueries(ctx)
		if err != nil {
			return err
		}
		for _, q := range queries {
			fmt.Printf("%-20s root=%s recursive=%v tags=%d\n",
				q.Name, q.Params.Root, q.Params.Recursive, len(q.Params.Tags))
		}
		return nil
	},
}

// snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot DEST",
	Short: "Copy the live database to DEST",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Snapshot")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Snapshot(args[0]); err != nil {
			return fmt.Errorf("snapshot failed: %w", err)
		}
		fmt.Printf("Snapshot written to %s\n", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	migrateCmd.AddCommand(migrateStatusCmd)

	queryFlags(lsCmd)
	queryFlags(querySaveCmd)

	tagRmCmd.Flags().String("matching", "", "Detach from content under this directory")
	tagRmCmd.Flags().BoolP("recursive", "r", false, "Apply --matching recursively")

	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagSetCmd)
	tagCmd.AddCommand(tagRmCmd)
	tagCmd.AddCommand(tagRenameCmd)
	tagCmd.AddCommand(tagConsolidateCmd)
	tagCmd.AddCommand(tagListCmd)

	attrCmd.AddCommand(attrSetCmd)
	attrCmd.AddCommand(attrGetCmd)

	bookmarkCmd.AddCommand(bookmarkAddCmd)
	bookmarkCmd.AddCommand(bookmarkRmCmd)
	bookmarkCmd.AddCommand(bookmarkListCmd)

	queueCmd.AddCommand(queueCreateCmd)
	queueCmd.AddCommand(queueAddCmd)
	queueCmd.AddCommand(queueDoneCmd)
	queueCmd.AddCommand(queueListCmd)

	queryCmd.AddCommand(querySaveCmd)
	queryCmd.AddCommand(queryRunCmd)
	queryCmd.AddCommand(queryRenameCmd)
	queryCmd.AddCommand(queryRmCmd)
	queryCmd.AddCommand(queryListCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(hideCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(attrCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(bookmarkCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(snapshotCmd)
}
