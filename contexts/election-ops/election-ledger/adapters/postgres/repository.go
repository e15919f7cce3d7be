package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"hustings/contexts/election-ops/election-ledger/domain/entities"
	domainerrors "hustings/contexts/election-ops/election-ledger/domain/errors"
	"hustings/contexts/election-ops/election-ledger/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the ledger tables.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(
		&electionModel{},
		&candidateModel{},
		&voterModel{},
		&outboxModel{},
	)
}

func (r *Repository) InsertElection(ctx context.Context, election entities.Election) (uint64, error) {
	var assigned uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&electionModel{}).Count(&count).Error; err != nil {
			return err
		}
		row := electionModelFromEntity(election)
		row.ID = uint64(count)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		assigned = row.ID
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domainerrors.ErrSequenceConflict
		}
		return 0, r.logError("ledger_repo_insert_election_failed", err,
			"election_name", strings.TrimSpace(election.Name),
		)
	}
	return assigned, nil
}

func (r *Repository) GetElection(ctx context.Context, electionID uint64) (entities.Election, error) {
	var row electionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", electionID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, domainerrors.ErrElectionNotFound
		}
		return entities.Election{}, r.logError("ledger_repo_get_election_failed", err, "election_id", electionID)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveElection(ctx context.Context, election entities.Election) error {
	row := electionModelFromEntity(election)
	result := r.db.WithContext(ctx).
		Model(&electionModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"name":        row.Name,
			"start_time":  row.StartTime,
			"end_time":    row.EndTime,
			"active":      row.Active,
			"finalized":   row.Finalized,
			"creator":     row.Creator,
			"total_votes": row.TotalVotes,
		})
	if result.Error != nil {
		return r.logError("ledger_repo_save_election_failed", result.Error, "election_id", row.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrElectionNotFound
	}
	return nil
}

func (r *Repository) CountElections(ctx context.Context) (uint64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&electionModel{}).Count(&count).Error; err != nil {
		return 0, r.logError("ledger_repo_count_elections_failed", err)
	}
	return uint64(count), nil
}

func (r *Repository) InsertCandidate(ctx context.Context, candidate entities.Candidate) (uint64, error) {
	var assigned uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&candidateModel{}).
			Where("election_id = ?", candidate.ElectionID).
			Count(&count).Error; err != nil {
			return err
		}
		row := candidateModelFromEntity(candidate)
		row.ID = uint64(count)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		assigned = row.ID
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domainerrors.ErrSequenceConflict
		}
		return 0, r.logError("ledger_repo_insert_candidate_failed", err,
			"election_id", candidate.ElectionID,
			"candidate_name", strings.TrimSpace(candidate.Name),
		)
	}
	return assigned, nil
}

func (r *Repository) GetCandidate(ctx context.Context, electionID uint64, candidateID uint64) (entities.Candidate, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).
		Where("election_id = ? AND id = ?", electionID, candidateID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, domainerrors.ErrCandidateNotFound
		}
		return entities.Candidate{}, r.logError("ledger_repo_get_candidate_failed", err,
			"election_id", electionID,
			"candidate_id", candidateID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCandidates(ctx context.Context, electionID uint64) ([]entities.Candidate, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_candidates_failed", err, "election_id", electionID)
	}
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveCandidate(ctx context.Context, candidate entities.Candidate) error {
	row := candidateModelFromEntity(candidate)
	result := r.db.WithContext(ctx).
		Model(&candidateModel{}).
		Where("election_id = ? AND id = ?", row.ElectionID, row.ID).
		Updates(map[string]any{
			"name":       row.Name,
			"vote_count": row.VoteCount,
			"active":     row.Active,
		})
	if result.Error != nil {
		return r.logError("ledger_repo_save_candidate_failed", result.Error,
			"election_id", row.ElectionID,
			"candidate_id", row.ID,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCandidateNotFound
	}
	return nil
}

func (r *Repository) CountCandidates(ctx context.Context, electionID uint64) (uint64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&candidateModel{}).
		Where("election_id = ?", electionID).
		Count(&count).Error; err != nil {
		return 0, r.logError("ledger_repo_count_candidates_failed", err, "election_id", electionID)
	}
	return uint64(count), nil
}

func (r *Repository) InsertVoter(ctx context.Context, voter entities.Voter) error {
	row := voterModelFromEntity(voter)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrVoterAlreadyExists
		}
		return r.logError("ledger_repo_insert_voter_failed", err,
			"election_id", row.ElectionID,
			"voter_address", row.Address,
		)
	}
	return nil
}

func (r *Repository) GetVoter(ctx context.Context, electionID uint64, address string) (entities.Voter, bool, error) {
	var row voterModel
	err := r.db.WithContext(ctx).
		Where("election_id = ? AND address = ?", electionID, strings.TrimSpace(address)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Voter{}, false, nil
	}
	if err != nil {
		return entities.Voter{}, false, r.logError("ledger_repo_get_voter_failed", err,
			"election_id", electionID,
			"voter_address", strings.TrimSpace(address),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) CountVoters(ctx context.Context, electionID uint64) (uint64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&voterModel{}).
		Where("election_id = ?", electionID).
		Count(&count).Error; err != nil {
		return 0, r.logError("ledger_repo_count_voters_failed", err, "election_id", electionID)
	}
	return uint64(count), nil
}

// ApplyBallot commits the voter flag, the candidate tally and the election
// total inside one transaction. The voter row is locked first so a
// concurrent ballot for the same address observes the has-voted flag.
func (r *Repository) ApplyBallot(ctx context.Context, application ports.BallotApplication) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var voter voterModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("election_id = ? AND address = ?", application.ElectionID, strings.TrimSpace(application.Address)).
			First(&voter).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrVoterNotRegistered
			}
			return err
		}
		if !voter.Registered {
			return domainerrors.ErrVoterNotRegistered
		}
		if voter.HasVoted {
			return domainerrors.ErrAlreadyVoted
		}

		votedAt := application.VotedAt.UTC()
		if err := tx.Model(&voterModel{}).
			Where("election_id = ? AND address = ?", voter.ElectionID, voter.Address).
			Updates(map[string]any{
				"has_voted": true,
				"voted_for": application.CandidateID,
				"voted_at":  votedAt,
			}).Error; err != nil {
			return err
		}

		tally := tx.Model(&candidateModel{}).
			Where("election_id = ? AND id = ?", application.ElectionID, application.CandidateID).
			Update("vote_count", gorm.Expr("vote_count + 1"))
		if tally.Error != nil {
			return tally.Error
		}
		if tally.RowsAffected == 0 {
			return domainerrors.ErrCandidateNotFound
		}

		total := tx.Model(&electionModel{}).
			Where("id = ?", application.ElectionID).
			Update("total_votes", gorm.Expr("total_votes + 1"))
		if total.Error != nil {
			return total.Error
		}
		if total.RowsAffected == 0 {
			return domainerrors.ErrElectionNotFound
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		return r.logError("ledger_repo_apply_ballot_failed", err,
			"election_id", application.ElectionID,
			"candidate_id", application.CandidateID,
			"voter_address", strings.TrimSpace(application.Address),
		)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("ledger_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ledger_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := r.db.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return r.logError("ledger_repo_append_outbox_load_existing_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrEventConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("ledger_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOutboxNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-ops/election-ledger",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ledger repository operation failed", fields...)
	return err
}

type electionModel struct {
	ID         uint64    `gorm:"column:id;primaryKey"`
	Name       string    `gorm:"column:name"`
	StartTime  time.Time `gorm:"column:start_time"`
	EndTime    time.Time `gorm:"column:end_time"`
	Active     bool      `gorm:"column:active"`
	Finalized  bool      `gorm:"column:finalized"`
	Creator    string    `gorm:"column:creator"`
	TotalVotes uint64    `gorm:"column:total_votes"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (electionModel) TableName() string {
	return "elections"
}

func electionModelFromEntity(election entities.Election) electionModel {
	return electionModel{
		ID:         election.ID,
		Name:       strings.TrimSpace(election.Name),
		StartTime:  election.StartTime.UTC(),
		EndTime:    election.EndTime.UTC(),
		Active:     election.Active,
		Finalized:  election.Finalized,
		Creator:    strings.TrimSpace(election.Creator),
		TotalVotes: election.TotalVotes,
		CreatedAt:  election.CreatedAt.UTC(),
	}
}

func (m electionModel) toEntity() entities.Election {
	return entities.Election{
		ID:         m.ID,
		Name:       m.Name,
		StartTime:  m.StartTime.UTC(),
		EndTime:    m.EndTime.UTC(),
		Active:     m.Active,
		Finalized:  m.Finalized,
		Creator:    m.Creator,
		TotalVotes: m.TotalVotes,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

type candidateModel struct {
	ElectionID   uint64    `gorm:"column:election_id;primaryKey"`
	ID           uint64    `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name"`
	VoteCount    uint64    `gorm:"column:vote_count"`
	Active       bool      `gorm:"column:active"`
	RegisteredAt time.Time `gorm:"column:registered_at"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func candidateModelFromEntity(candidate entities.Candidate) candidateModel {
	return candidateModel{
		ElectionID:   candidate.ElectionID,
		ID:           candidate.ID,
		Name:         strings.TrimSpace(candidate.Name),
		VoteCount:    candidate.VoteCount,
		Active:       candidate.Active,
		RegisteredAt: candidate.RegisteredAt.UTC(),
	}
}

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		ElectionID:   m.ElectionID,
		ID:           m.ID,
		Name:         m.Name,
		VoteCount:    m.VoteCount,
		Active:       m.Active,
		RegisteredAt: m.RegisteredAt.UTC(),
	}
}

type voterModel struct {
	ElectionID   uint64    `gorm:"column:election_id;primaryKey"`
	Address      string    `gorm:"column:address;primaryKey"`
	Registered   bool      `gorm:"column:registered"`
	HasVoted     bool      `gorm:"column:has_voted"`
	VotedFor     uint64    `gorm:"column:voted_for"`
	VotedAt      time.Time `gorm:"column:voted_at"`
	RegisteredAt time.Time `gorm:"column:registered_at"`
}

func (voterModel) TableName() string {
	return "voters"
}

func voterModelFromEntity(voter entities.Voter) voterModel {
	return voterModel{
		ElectionID:   voter.ElectionID,
		Address:      strings.TrimSpace(voter.Address),
		Registered:   voter.Registered,
		HasVoted:     voter.HasVoted,
		VotedFor:     voter.VotedFor,
		VotedAt:      voter.VotedAt.UTC(),
		RegisteredAt: voter.RegisteredAt.UTC(),
	}
}

func (m voterModel) toEntity() entities.Voter {
	return entities.Voter{
		ElectionID:   m.ElectionID,
		Address:      m.Address,
		Registered:   m.Registered,
		HasVoted:     m.HasVoted,
		VotedFor:     m.VotedFor,
		VotedAt:      m.VotedAt.UTC(),
		RegisteredAt: m.RegisteredAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "ledger_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isDomainError(err error) bool {
	return errors.Is(err, domainerrors.ErrState) ||
		errors.Is(err, domainerrors.ErrNotFound) ||
		errors.Is(err, domainerrors.ErrValidation) ||
		errors.Is(err, domainerrors.ErrAuthorization)
}

var _ ports.ElectionRepository = (*Repository)(nil)
var _ ports.CandidateRepository = (*Repository)(nil)
var _ ports.VoterRepository = (*Repository)(nil)
var _ ports.BallotApplier = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
