package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"learnsnap/internal/models"
)

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printVideos(w io.Writer, videos []models.Video) {
	if len(videos) == 0 {
		fmt.Fprintln(w, "No videos found.")
		return
	}
	fmt.Fprintf(w, "%-6s  %-40s  %-12s  %-8s  %8s  %s\n", "ID", "TITLE", "LEVEL", "LENGTH", "VIEWS", "INSTRUCTOR")
	fmt.Fprintf(w, "%-6s  %-40s  %-12s  %-8s  %8s  %s\n", "--", "-----", "-----", "------", "-----", "----------")
	for _, v := range videos {
		instructor := "-"
		if v.Instructor != nil {
			instructor = v.Instructor.Username
		}
		level := string(v.DifficultyLevel)
		if level == "" {
			level = "-"
		}
		fmt.Fprintf(w, "%-6d  %-40s  %-12s  %-8s  %8d  %s\n",
			v.ID, truncate(v.Title, 40), level, formatDuration(v.Duration), v.ViewsCount, instructor)
	}
}

func printPage(w io.Writer, page *models.Page[models.Video]) {
	printVideos(w, page.Content)
	if page.TotalPages > 1 {
		fmt.Fprintf(w, "\n(page %d of %d, %d videos)\n", page.Number+1, page.TotalPages, page.TotalElements)
	}
}

func newVideosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "videos",
		Short: "Browse the video catalog",
	}

	var q models.PageQuery
	addPageFlags := func(c *cobra.Command) {
		c.Flags().IntVar(&q.Page, "page", 0, "Page number, starting at 0")
		c.Flags().IntVar(&q.Size, "size", 12, "Page size")
		c.Flags().StringVar(&q.Sort, "sort", "", "Sort expression, e.g. createdAt,desc")
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List videos",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			page, err := a.videos.List(cmd.Context(), q)
			if err != nil {
				return fail("list videos", err)
			}
			printPage(cmd.OutOrStdout(), page)
			return nil
		}),
	}
	addPageFlags(list)

	search := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search videos by keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			page, err := a.videos.Search(cmd.Context(), strings.Join(args, " "), q)
			if err != nil {
				return fail("search videos", err)
			}
			printPage(cmd.OutOrStdout(), page)
			return nil
		}),
	}
	addPageFlags(search)

	byCategory := &cobra.Command{
		Use:   "category <category-id>",
		Short: "List videos in a category",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}
			page, err := a.videos.ByCategory(cmd.Context(), id, q)
			if err != nil {
				return fail("list category videos", err)
			}
			printPage(cmd.OutOrStdout(), page)
			return nil
		}),
	}
	addPageFlags(byCategory)

	byInstructor := &cobra.Command{
		Use:   "instructor <instructor-id>",
		Short: "List videos by an instructor",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "instructor")
			if err != nil {
				return err
			}
			page, err := a.videos.ByInstructor(cmd.Context(), id, q)
			if err != nil {
				return fail("list instructor videos", err)
			}
			printPage(cmd.OutOrStdout(), page)
			return nil
		}),
	}
	addPageFlags(byInstructor)

	var limit int
	popular := &cobra.Command{
		Use:   "popular",
		Short: "Most viewed videos",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			videos, err := a.videos.Popular(cmd.Context(), limit)
			if err != nil {
				return fail("popular videos", err)
			}
			printVideos(cmd.OutOrStdout(), videos)
			return nil
		}),
	}
	popular.Flags().IntVar(&limit, "limit", 10, "Number of videos")

	recent := &cobra.Command{
		Use:   "recent",
		Short: "Newest videos",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			videos, err := a.videos.Recent(cmd.Context(), limit)
			if err != nil {
				return fail("recent videos", err)
			}
			printVideos(cmd.OutOrStdout(), videos)
			return nil
		}),
	}
	recent.Flags().IntVar(&limit, "limit", 10, "Number of videos")

	cmd.AddCommand(list, search, byCategory, byInstructor, popular, recent,
		newVideoShowCmd(a), newVideoWatchCmd(a), newVideoCompleteCmd(a))
	return cmd
}

func newVideoShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <video-id>",
		Short: "Show a video and count the view",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0], "video")
			if err != nil {
				return err
			}
			a.nav.Enter(videoPath(id))
			v, err := a.videos.Get(ctx, id)
			if err != nil {
				return fail("show video", err)
			}
			if err := a.videos.IncrementViews(ctx, id); err != nil {
				a.log.Warn("failed to count view", "video_id", id, "error", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n", v.Title)
			if v.Description != "" {
				fmt.Fprintf(out, "%s\n\n", v.Description)
			}
			fmt.Fprintf(out, "%-12s %s\n", "Watch:", v.VideoURL)
			fmt.Fprintf(out, "%-12s %s\n", "Length:", formatDuration(v.Duration))
			if v.DifficultyLevel != "" {
				fmt.Fprintf(out, "%-12s %s\n", "Level:", v.DifficultyLevel)
			}
			if v.Category != nil {
				fmt.Fprintf(out, "%-12s %s\n", "Category:", v.Category.Name)
			}
			if v.Instructor != nil {
				fmt.Fprintf(out, "%-12s %s\n", "Instructor:", v.Instructor.Username)
			}
			fmt.Fprintf(out, "%-12s %d views, %d likes\n", "Stats:", v.ViewsCount, v.LikesCount)

			if a.session.State().IsAuthenticated {
				p, err := a.progress.ForVideo(ctx, id)
				switch {
				case err == nil && p.Completed && p.QuizScore != nil:
					fmt.Fprintf(out, "%-12s completed, quiz score %d%%\n", "Progress:", *p.QuizScore)
				case err == nil && p.Completed:
					fmt.Fprintf(out, "%-12s completed\n", "Progress:")
				case err == nil:
					fmt.Fprintf(out, "%-12s watched %s\n", "Progress:", formatDuration(p.WatchedDuration))
				}
			}
			fmt.Fprintf(out, "\nTake the quiz: learnsnap quiz %d\n", id)
			return nil
		}),
	}
}

func newVideoWatchCmd(a *app) *cobra.Command {
	var seconds int
	cmd := &cobra.Command{
		Use:   "watch <video-id>",
		Short: "Record how far you have watched a video",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0], "video")
			if err != nil {
				return err
			}
			if err := a.require(ctx, videoPath(id)); err != nil {
				return fail("record progress", err)
			}
			p, err := a.progress.UpdateWatch(ctx, id, seconds)
			if err != nil {
				return fail("record progress", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watched %s of video %d.\n", formatDuration(p.WatchedDuration), id)
			return nil
		}),
	}
	cmd.Flags().IntVar(&seconds, "seconds", 0, "Watched duration in seconds")
	_ = cmd.MarkFlagRequired("seconds")
	return cmd
}

func newVideoCompleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <video-id>",
		Short: "Mark a video as completed",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0], "video")
			if err != nil {
				return err
			}
			if err := a.require(ctx, videoPath(id)); err != nil {
				return fail("complete video", err)
			}
			if _, err := a.progress.MarkCompleted(ctx, id, nil); err != nil {
				return fail("complete video", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Video %d marked as completed.\n", id)
			return nil
		}),
	}
}

func newCategoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Browse and manage categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			cats, err := a.categories.List(cmd.Context())
			if err != nil {
				return fail("list categories", err)
			}
			out := cmd.OutOrStdout()
			if len(cats) == 0 {
				fmt.Fprintln(out, "No categories found.")
				return nil
			}
			fmt.Fprintf(out, "%-6s  %-24s  %-24s  %s\n", "ID", "NAME", "SLUG", "DESCRIPTION")
			fmt.Fprintf(out, "%-6s  %-24s  %-24s  %s\n", "--", "----", "----", "-----------")
			for _, c := range cats {
				fmt.Fprintf(out, "%-6d  %-24s  %-24s  %s\n", c.ID, truncate(c.Name, 24), truncate(c.Slug, 24), c.Description)
			}
			return nil
		}),
	}

	show := &cobra.Command{
		Use:   "show <category-id>",
		Short: "Show one category",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}
			c, err := a.categories.Get(cmd.Context(), id)
			if err != nil {
				return fail("show category", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", c.Name, c.Slug)
			if c.Description != "" {
				fmt.Fprintln(out, c.Description)
			}
			fmt.Fprintf(out, "\nVideos: learnsnap videos category %d\n", c.ID)
			return nil
		}),
	}

	var in models.CategoryInput
	addInputFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&in.Name, "name", "", "Category name")
		c.Flags().StringVar(&in.Slug, "slug", "", "URL slug")
		c.Flags().StringVar(&in.Description, "description", "", "Description")
		c.Flags().StringVar(&in.Icon, "icon", "", "Icon name")
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a category (admin)",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.require(ctx, pathAdmin, models.RoleAdmin); err != nil {
				return fail("create category", err)
			}
			c, err := a.categories.Create(ctx, in)
			if err != nil {
				return fail("create category", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Category %d created: %s\n", c.ID, c.Name)
			return nil
		}),
	}
	addInputFlags(create)

	update := &cobra.Command{
		Use:   "update <category-id>",
		Short: "Update a category (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}
			if err := a.require(ctx, pathAdmin, models.RoleAdmin); err != nil {
				return fail("update category", err)
			}
			current, err := a.categories.Get(ctx, id)
			if err != nil {
				return fail("update category", err)
			}
			merged := models.CategoryInput{
				Name:        current.Name,
				Slug:        current.Slug,
				Description: current.Description,
				Icon:        current.Icon,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				merged.Name = in.Name
			}
			if flags.Changed("slug") {
				merged.Slug = in.Slug
			}
			if flags.Changed("description") {
				merged.Description = in.Description
			}
			if flags.Changed("icon") {
				merged.Icon = in.Icon
			}
			c, err := a.categories.Update(ctx, id, merged)
			if err != nil {
				return fail("update category", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Category %d updated: %s\n", c.ID, c.Name)
			return nil
		}),
	}
	addInputFlags(update)

	del := &cobra.Command{
		Use:   "delete <category-id>",
		Short: "Delete a category (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}
			if err := a.require(ctx, pathAdmin, models.RoleAdmin); err != nil {
				return fail("delete category", err)
			}
			if err := a.categories.Delete(ctx, id); err != nil {
				return fail("delete category", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Category %d deleted.\n", id)
			return nil
		}),
	}

	cmd.AddCommand(list, show, create, update, del)
	return cmd
}
