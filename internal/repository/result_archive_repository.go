package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/certbible/certprep/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultArchiveRepository handles the durable exam_results archive.
type ResultArchiveRepository struct {
	pool *pgxpool.Pool
}

func NewResultArchiveRepository(pool *pgxpool.Pool) *ResultArchiveRepository {
	return &ResultArchiveRepository{pool: pool}
}

// InsertBatch archives many results in one round trip. Re-archiving a result
// ID is a no-op, so a re-queued batch never duplicates rows.
func (r *ResultArchiveRepository) InsertBatch(ctx context.Context, jobs []model.ArchiveJob) error {
	n := len(jobs)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, n)
	learners := make([]string, 0, n)
	sessions := make([]string, 0, n)
	exams := make([]string, 0, n)
	domains := make([]string, 0, n)
	totals := make([]int32, 0, n)
	corrects := make([]int32, 0, n)
	scores := make([]float64, 0, n)
	submittedAts := make([]time.Time, 0, n)

	for _, j := range jobs {
		id, err := uuid.Parse(j.Result.ID)
		if err != nil {
			return fmt.Errorf("result id %q: %w", j.Result.ID, err)
		}
		ids = append(ids, id)
		learners = append(learners, j.LearnerID)
		sessions = append(sessions, j.SessionID)
		exams = append(exams, j.Result.Exam)
		domains = append(domains, j.Result.Domain)
		totals = append(totals, int32(j.Result.TotalQuestions))
		corrects = append(corrects, int32(j.Result.CorrectCount))
		scores = append(scores, j.Result.Score)
		submittedAts = append(submittedAts, j.Result.Timestamp)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO exam_results
			(id, learner_id, session_id, exam, domain, total_questions, correct_count, score, submitted_at)
		SELECT * FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::text[],
			$4::text[],
			$5::text[],
			$6::int[],
			$7::int[],
			$8::float8[],
			$9::timestamptz[]
		)
		ON CONFLICT (id) DO NOTHING`,
		ids, learners, sessions, exams, domains, totals, corrects, scores, submittedAts,
	)
	return err
}

// Insert archives a single result.
func (r *ResultArchiveRepository) Insert(ctx context.Context, j model.ArchiveJob) error {
	id, err := uuid.Parse(j.Result.ID)
	if err != nil {
		return fmt.Errorf("result id %q: %w", j.Result.ID, err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO exam_results
			(id, learner_id, session_id, exam, domain, total_questions, correct_count, score, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`,
		id, j.LearnerID, j.SessionID, j.Result.Exam, j.Result.Domain,
		j.Result.TotalQuestions, j.Result.CorrectCount, j.Result.Score, j.Result.Timestamp,
	)
	return err
}

// ListByLearner pages a learner's archived results, newest first.
func (r *ResultArchiveRepository) ListByLearner(ctx context.Context, learnerID string, q model.ArchiveQuery) ([]model.ArchivedResult, int, error) {
	where := ` FROM exam_results WHERE learner_id = $1`
	args := []any{learnerID}
	if q.Exam != "" {
		args = append(args, q.Exam)
		where += fmt.Sprintf(" AND lower(exam) = lower($%d)", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, learner_id, session_id, exam, domain, total_questions, correct_count, score, submitted_at, archived_at` +
		where +
		fmt.Sprintf(" ORDER BY submitted_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.PerPage, q.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := make([]model.ArchivedResult, 0, q.PerPage)
	for rows.Next() {
		var a model.ArchivedResult
		if err := rows.Scan(
			&a.ID, &a.LearnerID, &a.SessionID, &a.Exam, &a.Domain,
			&a.TotalQuestions, &a.CorrectCount, &a.Score, &a.SubmittedAt, &a.ArchivedAt,
		); err != nil {
			return nil, 0, err
		}
		results = append(results, a)
	}
	return results, total, rows.Err()
}
