package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/finvet/internal/model"
	"github.com/ppiankov/finvet/internal/route"
)

// Answerer answers a single question
type Answerer interface {
	Answer(ctx context.Context, question string, prior *route.Context) (*model.Report, error)
}

// AnswerJob answers one question from a batch. Batch questions are
// independent, so no conversation context is threaded between them.
type AnswerJob struct {
	Index    int
	Question string
	Answerer Answerer
	Limiter  *Limiter
	Provider string
}

// Execute runs the job
func (j *AnswerJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Provider); err != nil {
			return &AnswerResult{Index: j.Index, Question: j.Question, Error: err}
		}
	}

	report, err := j.Answerer.Answer(ctx, j.Question, nil)
	if err != nil {
		return &AnswerResult{Index: j.Index, Question: j.Question, Error: err}
	}
	return &AnswerResult{Index: j.Index, Question: j.Question, Report: report}
}

// AnswerResult is the outcome of one batch question
type AnswerResult struct {
	Index    int
	Question string
	Report   *model.Report
	Error    error
}

// GetError returns the job error, if any
func (r *AnswerResult) GetError() error {
	return r.Error
}

// BatchProcessor answers many questions concurrently
type BatchProcessor struct {
	answerer    Answerer
	limiter     *Limiter
	provider    string
	concurrency int
}

// NewBatchProcessor creates a batch processor. A non-positive rate disables
// throttling; provider labels the limiter bucket the batch draws from.
func NewBatchProcessor(answerer Answerer, provider string, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	var limiter *Limiter
	if requestsPerSecond > 0 {
		limiter = NewLimiter(requestsPerSecond, burst)
	}

	return &BatchProcessor{
		answerer:    answerer,
		limiter:     limiter,
		provider:    provider,
		concurrency: concurrency,
	}
}

// ProcessQuestions answers the questions concurrently. Results come back in
// input order regardless of completion order.
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, questions []string) []*AnswerResult {
	if len(questions) == 0 {
		return []*AnswerResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for i, q := range questions {
		pool.Submit(&AnswerJob{
			Index:    i,
			Question: q,
			Answerer: b.answerer,
			Limiter:  b.limiter,
			Provider: b.provider,
		})
	}

	results := pool.Wait()

	answers := make([]*AnswerResult, len(results))
	for i, result := range results {
		answers[i] = result.(*AnswerResult)
	}
	sort.Slice(answers, func(i, j int) bool {
		return answers[i].Index < answers[j].Index
	})

	return answers
}

// ProcessFile reads questions from a file and answers them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnswerResult, error) {
	questions, err := ReadQuestionsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	return b.ProcessQuestions(ctx, questions), nil
}

// ReadQuestionsFromFile reads one question per line, skipping blanks,
// comments, and repeats.
func ReadQuestionsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var questions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			questions = append(questions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return questions, nil
}
