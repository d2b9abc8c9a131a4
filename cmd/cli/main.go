package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sessionresults/adapters/api"
	"sessionresults/adapters/excel"
	"sessionresults/adapters/terminal"
	"sessionresults/adapters/timezone"
	"sessionresults/domain/feedback"
	"sessionresults/domain/results"
	"sessionresults/internal"
	"sessionresults/internal/config"
	apperrors "sessionresults/internal/errors"
	"sessionresults/internal/resultspage"
)

// pageFlags identify the session every subcommand works on
type pageFlags struct {
	backendURL  string
	courseID    string
	sessionName string
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err unless the page already showed it as a status message
func reportError(w io.Writer, err error) {
	if apperrors.GetCode(err) == apperrors.CodeExternalService {
		return
	}
	fmt.Fprintln(w, err)
}

// backendError marks failed backend calls so they are not printed twice
func backendError(err error) error {
	var reqErr *feedback.RequestError
	if errors.As(err, &reqErr) {
		return apperrors.ExternalServiceError("feedback backend", err)
	}
	return err
}

func newRootCmd() *cobra.Command {
	flags := &pageFlags{}
	rootCmd := &cobra.Command{
		Use:   "sessionresults-cli",
		Short: "Inspect and publish feedback session results from the terminal",
	}
	rootCmd.PersistentFlags().StringVar(&flags.backendURL, "backend", "", "Backend base URL (default $BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&flags.courseID, "course", "", "Course id")
	rootCmd.PersistentFlags().StringVar(&flags.sessionName, "session", "", "Feedback session name")
	_ = rootCmd.MarkPersistentFlagRequired("course")
	_ = rootCmd.MarkPersistentFlagRequired("session")

	rootCmd.AddCommand(
		newSummaryCmd(flags),
		newPublishCmd(flags),
		newExportCmd(flags),
	)
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	return rootCmd
}

func newSummaryCmd(flags *pageFlags) *cobra.Command {
	var loadAll bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the session header, sections, questions and non-respondents",
		Long: `Print what the results page shows before anything is expanded.

Example: sessionresults-cli summary --course CS2103T --session "Mid-term Peer Feedback" --load-all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := openPage(cmd, flags)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if loadAll {
				if err := ctrl.LoadAllQuestions(cmd.Context()); err != nil {
					return backendError(err)
				}
			}
			printSummary(cmd.OutOrStdout(), ctrl.Snapshot())
			return nil
		},
	}

	cmd.Flags().BoolVar(&loadAll, "load-all", false, "Load the responses of every question")
	return cmd
}

func newPublishCmd(flags *pageFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish or unpublish the session results after confirmation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := openPage(cmd, flags)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			dialog := terminal.NewDialog(cmd.InOrStdin(), cmd.OutOrStdout())
			return backendError(ctrl.TogglePublish(cmd.Context(), dialog))
		},
	}
}

func newExportCmd(flags *pageFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Load every question and write the results as an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = fmt.Sprintf("%s_%s.xlsx", flags.courseID, flags.sessionName)
			}

			ctrl, err := openPage(cmd, flags)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if err := ctrl.LoadAllQuestions(cmd.Context()); err != nil {
				return backendError(err)
			}

			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer file.Close()

			if err := excel.NewExporter(nil).Export(ctrl.Snapshot(), results.DefaultViewOptions(), file); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output file (default <course>_<session>.xlsx)")
	return cmd
}

// openPage initializes a controller for the flagged session and waits for every initial fetch
func openPage(cmd *cobra.Command, flags *pageFlags) (*resultspage.Controller, error) {
	ctx := cmd.Context()
	clientConfig, err := backendConfig(flags)
	if err != nil {
		return nil, err
	}
	backend, err := api.NewClient(clientConfig, nil)
	if err != nil {
		return nil, err
	}

	ctrl := resultspage.NewController(ctx, resultspage.Dependencies{
		Backend:   backend,
		Status:    terminal.NewMessenger(cmd.ErrOrStderr()),
		Timezone:  timezone.NewFormatter(timezone.SessionTimeLayout),
		Navigator: terminal.NewNavigator(cmd.OutOrStdout()),
		Logger:    internal.NewDefaultLogger(),
	})
	ctrl.Init(results.PageParams{CourseID: flags.courseID, SessionName: flags.sessionName})

	if err := ctrl.Wait(ctx); err != nil && !ctrl.Snapshot().SessionLoaded {
		ctrl.Close()
		return nil, backendError(err)
	}
	return ctrl, nil
}

func backendConfig(flags *pageFlags) (*api.ClientConfig, error) {
	if flags.backendURL != "" {
		return api.DefaultClientConfig(flags.backendURL), nil
	}
	appConfig, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg := api.DefaultClientConfig(appConfig.Backend.URL)
	cfg.Timeout = appConfig.Backend.Timeout
	return cfg, nil
}

func printSummary(out io.Writer, view results.PageView) {
	s := view.Session
	fmt.Fprintf(out, "%s / %s\n", s.CourseID, s.FeedbackSessionName)
	fmt.Fprintf(out, "  Opens:   %s\n", view.FormattedOpeningTime)
	fmt.Fprintf(out, "  Closes:  %s\n", view.FormattedClosingTime)
	fmt.Fprintf(out, "  Status:  %s\n\n", s.PublishStatus)

	fmt.Fprintf(out, "Sections (%d)\n", len(view.Sections))
	for _, sec := range view.Sections {
		fmt.Fprintf(out, "  %s\n", sec.Name)
	}

	fmt.Fprintf(out, "\nQuestions (%d)\n", len(view.Questions))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, q := range view.Questions {
		responses := "-"
		if q.Populated {
			responses = fmt.Sprintf("%d responses", len(q.Responses))
		}
		fmt.Fprintf(tw, "  Q%d\t%s\t%s\n", q.Question.QuestionNumber, q.Question.QuestionBrief, responses)
	}
	tw.Flush()

	if !view.NoResponsePanelLoaded {
		fmt.Fprintln(out, "\nNon-respondents could not be loaded")
		return
	}
	fmt.Fprintf(out, "\nNot responded (%d)\n", len(view.NoResponseStudents))
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, st := range view.NoResponseStudents {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", st.SectionName, st.TeamName, st.Name, st.Email)
	}
	tw.Flush()
}
