package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/txn2/interview-platform/pkg/interview"
	"github.com/txn2/interview-platform/pkg/session"
)

const interviewerPrefix = "面接官: "

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run an interview in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			questions, _ := cmd.Flags().GetInt("questions")
			if questions == 0 {
				questions = cfg.Interview.DefaultMaxQuestions
			}
			minutes, _ := cmd.Flags().GetInt("minutes")
			if minutes == 0 {
				minutes = cfg.Interview.DefaultTimeLimitMinutes
			}

			store := session.NewMemoryStore(cfg.Store.TTL)
			defer func() { _ = store.Close() }()
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
			svc := interview.NewService(store, interview.WithLogger(logger))

			return play(cmd, svc, questions, minutes)
		},
	}
	cmd.Flags().Int("questions", 0, "Maximum number of questions (defaults to interview.default_max_questions)")
	cmd.Flags().Int("minutes", 0, "Time limit in minutes (defaults to interview.default_time_limit_minutes)")
	return cmd
}

// play drives one session over the command's stdin and stdout.
func play(cmd *cobra.Command, svc *interview.Service, questions, minutes int) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())

	reply, err := svc.Start(ctx, interview.StartParams{MaxQuestions: questions, TimeLimitMinutes: minutes})
	if err != nil {
		return fmt.Errorf("starting interview: %w", err)
	}
	fmt.Fprintln(out, interviewerPrefix+reply.QuestionText)

	for !reply.Finished {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return fmt.Errorf("reading answer: %w", err)
			}
			fmt.Fprintln(out)
			return nil
		}

		next, err := svc.Answer(ctx, reply.SessionID, strings.TrimSpace(in.Text()))
		if errors.Is(err, interview.ErrMissingAnswer) {
			fmt.Fprintln(out, "回答を入力してください。")
			continue
		}
		if err != nil {
			return fmt.Errorf("answering: %w", err)
		}
		reply = next
		fmt.Fprintln(out, interviewerPrefix+reply.QuestionText)
	}

	return printSummary(cmd, svc, reply, out)
}

func printSummary(cmd *cobra.Command, svc *interview.Service, reply *interview.Reply, out io.Writer) error {
	sess, err := svc.Transcript(cmd.Context(), reply.SessionID)
	if err != nil {
		return fmt.Errorf("loading transcript: %w", err)
	}
	fmt.Fprintf(out, "\n--- %s: %d questions, %d answers ---\n", reply.EndReason, sess.QuestionCount, len(sess.History))
	return nil
}
