package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vslobodin/jobscout/internal/assistant"
	"github.com/vslobodin/jobscout/internal/extract"
	"github.com/vslobodin/jobscout/internal/jobsource"
	"github.com/vslobodin/jobscout/internal/logger"
	"github.com/vslobodin/jobscout/internal/matching"
	"github.com/vslobodin/jobscout/internal/profile"
)

const (
	PromptCoverLetter   = "Draft a cover letter for a match"
	PromptAskQuestion   = "Ask a question about a match"
	PromptResultsToFile = "Dump results to file"
	PromptQuit          = "Quit"
	PromptBack          = "back"
)

var errExit = errors.New("exit requested")

var matchPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptCoverLetter, PromptAskQuestion, PromptResultsToFile, PromptQuit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank job postings against a resume and explain every score",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("resume", "r", "", "resume file to match (pdf, docx, txt or pre-extracted json)")
	matchCmd.Flags().Float64P("min-score", "m", 0, "drop matches with a final score below this threshold")
	matchCmd.Flags().BoolP("no-interactive", "n", false, "print the ranking and exit without the action menu")

	matchCmd.MarkFlagRequired("resume")
}

func match(cmd *cobra.Command) {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		zlog.Fatal("config is required")
	}

	zlog.Info("starting jobscout", zap.String("version", version))

	pretty, _ := json.MarshalIndent(config, "", "  ")
	zlog.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	resumePath := cmd.Flag("resume").Value.String()
	raw, err := extract.New(zlog).ExtractFile(resumePath)
	if err != nil {
		zlog.Fatal("extracting resume", zap.Error(err))
	}

	resume, err := profile.NormalizeResume(raw)
	if err != nil {
		zlog.Fatal("normalizing resume", zap.Error(err))
	}

	zlog.Info("resume profile ready",
		zap.Int("skills", len(resume.Skills)),
		zap.Float64("years_experience", resume.YearsExperience),
	)

	source, err := buildSource(config, zlog)
	if err != nil {
		zlog.Fatal("building job source", zap.Error(err))
	}

	postings, err := fetchPostings(ctx, source, config, zlog)
	if err != nil {
		zlog.Fatal("fetching postings", zap.Error(err))
	}
	if len(postings) == 0 {
		zlog.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	ranker, err := buildRanker(ctx, config, zlog)
	if err != nil {
		zlog.Fatal("building ranker", zap.Error(err))
	}

	results := ranker.Rank(ctx, resume, postings)

	minScore, _ := cmd.Flags().GetFloat64("min-score")
	if minScore > 0 {
		initial := results.Len()
		results = results.AboveThreshold(minScore)
		zlog.Info("threshold step",
			zap.Int("initial", initial),
			zap.Int("dropped", initial-results.Len()),
			zap.Int("left", results.Len()),
		)
	}

	if results.Len() == 0 {
		zlog.Info("exiting", zap.String("reason", "no matches above threshold"))
		return
	}

	printRanking(results)

	if noInteractive, _ := cmd.Flags().GetBool("no-interactive"); noInteractive {
		return
	}

	helper, err := buildAssistant(ctx, config, zlog)
	if err != nil {
		zlog.Warn("assistant unavailable", zap.Error(err))
	}

	for {
		_, action, err := matchPrompt.Run()
		if err != nil {
			zlog.Fatal("exiting", zap.Error(err))
		}

		if err := handleMatchAction(ctx, action, helper, zlog, resume, postings, results); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			zlog.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleMatchAction(ctx context.Context, action string, helper *assistant.Assistant, zlog *zap.Logger, resume *profile.ResumeProfile, postings []*profile.JobPosting, results matching.Results) error {
	switch action {
	case PromptCoverLetter:
		return draftCoverLetter(ctx, helper, zlog, resume, postings, results)
	case PromptAskQuestion:
		return askQuestion(ctx, helper, zlog, resume, postings, results)
	case PromptResultsToFile:
		filename, err := results.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		zlog.Info("dumped results to file", zap.String("filename", filename))
		return nil
	case PromptQuit:
		zlog.Info("exiting", zap.String("reason", "got quit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// selectMatch asks the user to pick one ranked match and returns its posting.
func selectMatch(postings []*profile.JobPosting, results matching.Results) (*profile.JobPosting, error) {
	items := make([]string, 0, results.Len())
	for _, r := range results {
		items = append(items, fmt.Sprintf("%s %s / %s / %.0f%%", r.JobID, r.Title, r.Company, r.FinalScore*100))
	}

	selectPrompt := promptui.Select{
		Label: "Choose a match and press ENTER",
		Items: append(items, PromptBack),
	}

	_, selected, err := selectPrompt.Run()
	if err != nil {
		return nil, err
	}
	if selected == PromptBack {
		return nil, nil
	}

	jobID := strings.Split(selected, " ")[0]
	for _, p := range postings {
		if p.ID == jobID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("there is no such job id %s", jobID)
}

func draftCoverLetter(ctx context.Context, helper *assistant.Assistant, zlog *zap.Logger, resume *profile.ResumeProfile, postings []*profile.JobPosting, results matching.Results) error {
	if helper == nil {
		zlog.Warn("assistant is not configured", zap.String("hint", "enable the assistant section in the configuration file"))
		return nil
	}

	posting, err := selectMatch(postings, results)
	if err != nil || posting == nil {
		return err
	}

	letter, err := helper.CoverLetter(ctx, resume, posting)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n\n", letter)
	return nil
}

func askQuestion(ctx context.Context, helper *assistant.Assistant, zlog *zap.Logger, resume *profile.ResumeProfile, postings []*profile.JobPosting, results matching.Results) error {
	if helper == nil {
		zlog.Warn("assistant is not configured", zap.String("hint", "enable the assistant section in the configuration file"))
		return nil
	}

	posting, err := selectMatch(postings, results)
	if err != nil || posting == nil {
		return err
	}

	questionPrompt := promptui.Prompt{Label: "Question"}
	question, err := questionPrompt.Run()
	if err != nil {
		return err
	}

	answer, err := helper.Answer(ctx, resume, posting, question)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n\n", answer)
	return nil
}

// fetchPostings searches the source and normalizes the raw postings,
// skipping malformed entries.
func fetchPostings(ctx context.Context, source jobsource.Source, config *Config, zlog *zap.Logger) ([]*profile.JobPosting, error) {
	criteria := jobsource.Criteria(config.Search)

	raw, err := source.Search(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", source.Name(), err)
	}

	zlog.Info("fetched postings", zap.String("job_source", source.Name()), zap.Int("count", len(raw)))

	postings := make([]*profile.JobPosting, 0, len(raw))
	for _, r := range raw {
		p, err := profile.NormalizePosting(r)
		if err != nil {
			zlog.Warn("skipping malformed posting", zap.Error(err))
			continue
		}
		postings = append(postings, p)
	}
	return postings, nil
}

func printRanking(results matching.Results) {
	fmt.Printf("\n%-4s %-6s %-35s %-20s %s\n", "#", "SCORE", "TITLE", "COMPANY", "BREAKDOWN")
	for i, r := range results {
		fmt.Printf("%-4d %-6s %-35s %-20s skill %.2f / exp %.2f / sem %.2f\n",
			i+1,
			fmt.Sprintf("%.0f%%", r.FinalScore*100),
			truncate(r.Title, 35),
			truncate(r.Company, 20),
			r.SkillScore, r.ExperienceScore, r.SemanticScore,
		)
		if summary := r.Summary(); summary != "" {
			fmt.Printf("     %s\n", summary)
		}
	}
	fmt.Println()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
