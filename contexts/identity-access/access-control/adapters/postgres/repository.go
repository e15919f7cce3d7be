package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"hustings/contexts/identity-access/access-control/domain/entities"
	"hustings/contexts/identity-access/access-control/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// roleStateID pins the administrator record to a single row.
const roleStateID = 1

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

// Migrate creates or updates the role tables.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&roleStateModel{}, &commissionerModel{})
}

// Seed installs the bootstrap administrator when no role state exists yet.
// An already-seeded database is left untouched.
func (r *Repository) Seed(ctx context.Context, administrator string) error {
	administrator = strings.TrimSpace(administrator)
	if administrator == "" {
		return errors.New("bootstrap administrator address is required")
	}
	now := time.Now().UTC()
	state := roleStateModel{
		ID:            roleStateID,
		Administrator: administrator,
		UpdatedAt:     now,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&state)
	if create.Error != nil {
		return r.logError("access_repo_seed_state_failed", create.Error)
	}
	if create.RowsAffected == 0 {
		return nil
	}
	grant := commissionerModel{
		Address: administrator,
		AddedBy: administrator,
		AddedAt: now,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoNothing: true,
	}).Create(&grant).Error; err != nil {
		return r.logError("access_repo_seed_grant_failed", err, "address", administrator)
	}
	return nil
}

func (r *Repository) Administrator(ctx context.Context) (string, error) {
	var state roleStateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", roleStateID).
		First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", r.logError("access_repo_get_administrator_failed", err)
	}
	return state.Administrator, nil
}

func (r *Repository) SetAdministrator(ctx context.Context, address string) error {
	result := r.db.WithContext(ctx).
		Model(&roleStateModel{}).
		Where("id = ?", roleStateID).
		Updates(map[string]any{
			"administrator": strings.TrimSpace(address),
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return r.logError("access_repo_set_administrator_failed", result.Error,
			"address", strings.TrimSpace(address),
		)
	}
	if result.RowsAffected == 0 {
		return errors.New("role state row missing, run seed first")
	}
	return nil
}

func (r *Repository) IsCommissioner(ctx context.Context, address string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&commissionerModel{}).
		Where("address = ?", strings.TrimSpace(address)).
		Count(&count).Error; err != nil {
		return false, r.logError("access_repo_is_commissioner_failed", err,
			"address", strings.TrimSpace(address),
		)
	}
	return count > 0, nil
}

func (r *Repository) AddCommissioner(ctx context.Context, grant entities.Commissioner) error {
	row := commissionerModel{
		Address: strings.TrimSpace(grant.Address),
		AddedBy: strings.TrimSpace(grant.AddedBy),
		AddedAt: grant.AddedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return nil
		}
		return r.logError("access_repo_add_commissioner_failed", create.Error,
			"address", row.Address,
		)
	}
	return nil
}

func (r *Repository) RemoveCommissioner(ctx context.Context, address string) error {
	if err := r.db.WithContext(ctx).
		Where("address = ?", strings.TrimSpace(address)).
		Delete(&commissionerModel{}).Error; err != nil {
		return r.logError("access_repo_remove_commissioner_failed", err,
			"address", strings.TrimSpace(address),
		)
	}
	return nil
}

func (r *Repository) ListCommissioners(ctx context.Context) ([]entities.Commissioner, error) {
	var rows []commissionerModel
	if err := r.db.WithContext(ctx).
		Order("added_at ASC, address ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("access_repo_list_commissioners_failed", err)
	}
	items := make([]entities.Commissioner, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.Commissioner{
			Address: row.Address,
			AddedBy: row.AddedBy,
			AddedAt: row.AddedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "identity-access/access-control",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("access repository operation failed", fields...)
	return err
}

type roleStateModel struct {
	ID            int       `gorm:"column:id;primaryKey"`
	Administrator string    `gorm:"column:administrator"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (roleStateModel) TableName() string {
	return "role_state"
}

type commissionerModel struct {
	Address string    `gorm:"column:address;primaryKey"`
	AddedBy string    `gorm:"column:added_by"`
	AddedAt time.Time `gorm:"column:added_at"`
}

func (commissionerModel) TableName() string {
	return "commissioners"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.RoleRepository = (*Repository)(nil)
