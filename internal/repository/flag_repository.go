package repository

import (
	"context"
	"time"

	"github.com/certbible/certprep/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FlagRepository persists learner-reported question flags.
type FlagRepository struct {
	pool *pgxpool.Pool
}

func NewFlagRepository(pool *pgxpool.Pool) *FlagRepository {
	return &FlagRepository{pool: pool}
}

// InsertBatch writes many flags with one UNNEST insert.
func (r *FlagRepository) InsertBatch(ctx context.Context, flags []model.QuestionFlag) error {
	n := len(flags)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, n)
	learners := make([]string, n)
	sessions := make([]string, n)
	indexes := make([]int32, n)
	questionIDs := make([]string, n)
	texts := make([]string, n)
	exams := make([]string, n)
	reasons := make([]string, n)
	customs := make([]string, n)
	createdAts := make([]time.Time, n)
	for i, f := range flags {
		ids[i] = f.ID
		learners[i] = f.LearnerID
		sessions[i] = f.SessionID
		indexes[i] = int32(f.QuestionIndex)
		questionIDs[i] = f.QuestionID
		texts[i] = f.QuestionText
		exams[i] = f.Exam
		reasons[i] = string(f.Reason)
		customs[i] = f.CustomReason
		createdAts[i] = f.CreatedAt
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO question_flags
			(id, learner_id, session_id, question_index, question_id, question_text, exam, reason, custom_reason, created_at)
		SELECT * FROM UNNEST(
			$1::uuid[], $2::text[], $3::text[], $4::int[], $5::text[],
			$6::text[], $7::text[], $8::text[], $9::text[], $10::timestamptz[]
		)
		ON CONFLICT (id) DO NOTHING`,
		ids, learners, sessions, indexes, questionIDs, texts, exams, reasons, customs, createdAts,
	)
	return err
}

// Insert writes one flag.
func (r *FlagRepository) Insert(ctx context.Context, f model.QuestionFlag) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO question_flags
			(id, learner_id, session_id, question_index, question_id, question_text, exam, reason, custom_reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO NOTHING`,
		f.ID, f.LearnerID, f.SessionID, f.QuestionIndex, f.QuestionID,
		f.QuestionText, f.Exam, string(f.Reason), f.CustomReason, f.CreatedAt,
	)
	return err
}
