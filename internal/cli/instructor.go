package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"learnsnap/internal/models"
)

var teachingRoles = []models.Role{models.RoleInstructor, models.RoleAdmin}

func newInstructorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instructor",
		Short: "Upload videos and author quizzes (instructors and admins)",
	}

	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "Show your videos and their totals",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.require(ctx, pathInstructor, teachingRoles...); err != nil {
				return fail("instructor dashboard", err)
			}
			stats, videos, err := a.videos.InstructorStats(ctx, a.currentUser().ID)
			if err != nil {
				return fail("instructor dashboard", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-8s %d\n", "Videos:", stats.Videos)
			fmt.Fprintf(out, "%-8s %d\n", "Views:", stats.Views)
			fmt.Fprintf(out, "%-8s %d\n\n", "Likes:", stats.Likes)
			printVideos(out, videos)
			return nil
		}),
	}

	cmd.AddCommand(dashboard, newUploadCmd(a), newEditVideoCmd(a), newDeleteVideoCmd(a), newQuizAuthoringCmd(a))
	return cmd
}

func addVideoFlags(c *cobra.Command, in *models.VideoInput, difficulty *string) {
	c.Flags().StringVar(&in.Title, "title", "", "Video title")
	c.Flags().StringVar(&in.Description, "description", "", "Description")
	c.Flags().StringVar(&in.VideoURL, "url", "", "Video URL")
	c.Flags().StringVar(&in.ThumbnailURL, "thumbnail", "", "Thumbnail URL")
	c.Flags().IntVar(&in.Duration, "duration", 0, "Length in seconds")
	c.Flags().StringVar(difficulty, "difficulty", "", "BEGINNER, INTERMEDIATE or ADVANCED")
	c.Flags().Int64Var(&in.CategoryID, "category", 0, "Category id")
}

func newUploadCmd(a *app) *cobra.Command {
	var (
		in         models.VideoInput
		difficulty string
	)
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Publish a new video",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.require(ctx, pathInstructor, teachingRoles...); err != nil {
				return fail("upload video", err)
			}
			in.DifficultyLevel = models.Difficulty(difficulty)
			v, err := a.videos.Create(ctx, in)
			if err != nil {
				return fail("upload video", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Video %d published: %s\nAdd questions with `learnsnap instructor quiz add %d`.\n", v.ID, v.Title, v.ID)
			return nil
		}),
	}
	addVideoFlags(cmd, &in, &difficulty)
	return cmd
}

func newEditVideoCmd(a *app) *cobra.Command {
	var (
		in         models.VideoInput
		difficulty string
	)
	cmd := &cobra.Command{
		Use:   "edit <video-id>",
		Short: "Change a video you published",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0], "video")
			if err != nil {
				return err
			}
			if err := a.require(ctx, pathInstructor, teachingRoles...); err != nil {
				return fail("edit video", err)
			}
			current, err := a.videos.Get(ctx, id)
			if err != nil {
				return fail("edit video", err)
			}

			merged := models.VideoInput{
				Title:           current.Title,
				Description:     current.Description,
				VideoURL:        current.VideoURL,
				ThumbnailURL:    current.ThumbnailURL,
				Duration:        current.Duration,
				DifficultyLevel: current.DifficultyLevel,
			}
			if current.Category != nil {
				merged.CategoryID = current.Category.ID
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				merged.Title = in.Title
			}
			if flags.Changed("description") {
				merged.Description = in.Description
			}
			if flags.Changed("url") {
				merged.VideoURL = in.VideoURL
			}
			if flags.Changed("thumbnail") {
				merged.ThumbnailURL = in.ThumbnailURL
			}
			if flags.Changed("duration") {
				merged.Duration = in.Duration
			}
			if flags.Changed("difficulty") {
				merged.DifficultyLevel = models.Difficulty(difficulty)
			}
			if flags.Changed("category") {
				merged.CategoryID = in.CategoryID
			}

			v, err := a.videos.Update(ctx, id, merged)
			if err != nil {
				return fail("edit video", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Video %d updated: %s\n", v.ID, v.Title)
			return nil
		}),
	}
	addVideoFlags(cmd, &in, &difficulty)
	return cmd
}

func newDeleteVideoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <video-id>",
		Short: "Delete a video you published",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0], "video")
			if err != nil {
				return err
			}
			if err := a.require(ctx, pathInstructor, teachingRoles...); err != nil {
				return fail("delete video", err)
			}
			if err := a.videos.Delete(ctx, id); err != nil {
				return fail("delete video", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Video %d deleted.\n", id)
			return nil
		}),
	}
}

func newQuizAuthoringCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Author the questions of a video",
	}

	list := &cobra.Command{
		Use:   "list <video-id>",
		Short: "List the questions of a video",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0], "video")
			if err != nil {
				return err
			}
			if err := a.require(ctx, pathInstructor, teachingRoles...); err != nil {
				return fail("list questions", err)
			}
			quizzes, err := a.authoring.QuizzesForVideo(ctx, id)
			if err != nil {
				return fail("list questions", err)
			}
			out := cmd.OutOrStdout()
			if len(quizzes) == 0 {
				fmt.Fprintln(out, "No questions yet.")
				return nil
			}
			for _, q := range quizzes {
				fmt.Fprintf(out, "[%d] %s\n", q.ID, q.Question)
				for i, opt := range q.Options {
					fmt.Fprintf(out, "     %d. %s\n", i+1, opt)
				}
			}
			return nil
		}),
	}

	var in models.QuizInput
	addQuizFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&in.Question, "question", "", "Question text")
		c.Flags().StringArrayVar(&in.Options, "option", nil, "Answer option (repeat for each option, in order)")
		c.Flags().StringVar(&in.CorrectAnswer, "answer", "", "The correct option, verbatim")
		c.Flags().StringVar(&in.Explanation, "explanation", "", "Shown after grading")
	}

	add := &cobra.Command{
		Use:   "add <video-id>",
		Short: "Add a question to a video",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0], "video")
			if err != nil {
				return err
			}
			if err := a.require(ctx, pathInstructor, teachingRoles...); err != nil {
				return fail("add question", err)
			}
			q, err := a.authoring.CreateQuiz(ctx, id, in)
			if err != nil {
				return fail("add question", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Question %d added to video %d.\n", q.ID, id)
			return nil
		}),
	}
	addQuizFlags(add)

	edit := &cobra.Command{
		Use:   "edit <quiz-id>",
		Short: "Replace a question",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0], "quiz")
			if err != nil {
				return err
			}
			if err := a.require(ctx, pathInstructor, teachingRoles...); err != nil {
				return fail("edit question", err)
			}
			q, err := a.authoring.UpdateQuiz(ctx, id, in)
			if err != nil {
				return fail("edit question", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Question %d updated.\n", q.ID)
			return nil
		}),
	}
	addQuizFlags(edit)

	del := &cobra.Command{
		Use:   "delete <quiz-id>",
		Short: "Delete a question",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0], "quiz")
			if err != nil {
				return err
			}
			if err := a.require(ctx, pathInstructor, teachingRoles...); err != nil {
				return fail("delete question", err)
			}
			if err := a.authoring.DeleteQuiz(ctx, id); err != nil {
				return fail("delete question", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Question %d deleted.\n", id)
			return nil
		}),
	}

	cmd.AddCommand(list, add, edit, del)
	return cmd
}
