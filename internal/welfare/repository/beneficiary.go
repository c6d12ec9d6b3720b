package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/database"
)

const beneficiaryColumns = `b.id, b.user_id, b.classification, b.latitude, b.longitude, b.date_of_birth,
	b.disability_type, b.pwd_id_number, b.guardian_name, b.guardian_contact, b.guardian_relationship,
	b.senior_id_url, b.psa_url, b.postal_id_url, b.voters_id_url, b.national_id_url, b.medical_cert_url,
	b.govt_id_url, b.pwd_form_url, b.barangay_cert_url, b.death_cert_url, b.medical_records_url,
	b.status, b.created_at`

const beneficiaryViewSelect = `SELECT ` + beneficiaryColumns + `,
	u.first_name, u.last_name, u.middle_name, u.email, u.address, u.contact_number
	FROM beneficiaries b
	JOIN users u ON u.id = b.user_id`

// BeneficiaryRepository handles beneficiary profile persistence
type BeneficiaryRepository struct {
	db *database.DB
}

// NewBeneficiaryRepository creates a new beneficiary repository
func NewBeneficiaryRepository(db *database.DB) *BeneficiaryRepository {
	return &BeneficiaryRepository{db: db}
}

// Create inserts a profile. A second profile for the same user is a Conflict.
func (r *BeneficiaryRepository) Create(ctx context.Context, b *domain.Beneficiary) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.Status == "" {
		b.Status = domain.BeneficiaryPending
	}

	query := `
		INSERT INTO beneficiaries (id, user_id, classification, latitude, longitude, date_of_birth,
		    disability_type, pwd_id_number, guardian_name, guardian_contact, guardian_relationship,
		    senior_id_url, psa_url, postal_id_url, voters_id_url, national_id_url, medical_cert_url,
		    govt_id_url, pwd_form_url, barangay_cert_url, death_cert_url, medical_records_url, status)
		VALUES (:id, :user_id, :classification, :latitude, :longitude, :date_of_birth,
		    :disability_type, :pwd_id_number, :guardian_name, :guardian_contact, :guardian_relationship,
		    :senior_id_url, :psa_url, :postal_id_url, :voters_id_url, :national_id_url, :medical_cert_url,
		    :govt_id_url, :pwd_form_url, :barangay_cert_url, :death_cert_url, :medical_records_url, :status)
	`

	if _, err := r.db.Conn(ctx).NamedExecContext(ctx, query, b); err != nil {
		return database.MapError(err)
	}
	return nil
}

// GetByID returns a profile joined with its owner.
func (r *BeneficiaryRepository) GetByID(ctx context.Context, id string) (*domain.BeneficiaryView, error) {
	var v domain.BeneficiaryView
	if err := r.db.Conn(ctx).GetContext(ctx, &v, beneficiaryViewSelect+` WHERE b.id = $1`, id); err != nil {
		return nil, notFound(err, "beneficiary")
	}
	return &v, nil
}

// GetByUserID returns the profile owned by userID.
func (r *BeneficiaryRepository) GetByUserID(ctx context.Context, userID string) (*domain.BeneficiaryView, error) {
	var v domain.BeneficiaryView
	if err := r.db.Conn(ctx).GetContext(ctx, &v, beneficiaryViewSelect+` WHERE b.user_id = $1`, userID); err != nil {
		return nil, notFound(err, "beneficiary")
	}
	return &v, nil
}

// List returns the page of profiles visible under scope.
func (r *BeneficiaryRepository) List(ctx context.Context, scope domain.Scope, page, perPage int) ([]*domain.BeneficiaryView, int64, error) {
	w := &where{}
	w.scope(scope)

	var total int64
	countQuery := `SELECT COUNT(*) FROM beneficiaries b JOIN users u ON u.id = b.user_id` + w.String()
	if err := r.db.Conn(ctx).GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return nil, 0, err
	}

	query := beneficiaryViewSelect + w.String() + ` ORDER BY b.created_at DESC` + w.page(page, perPage)
	out := []*domain.BeneficiaryView{}
	if err := r.db.Conn(ctx).SelectContext(ctx, &out, query, w.args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update writes every mutable column of b.
func (r *BeneficiaryRepository) Update(ctx context.Context, b *domain.Beneficiary) error {
	query := `
		UPDATE beneficiaries SET
		    classification = :classification, latitude = :latitude, longitude = :longitude,
		    date_of_birth = :date_of_birth, disability_type = :disability_type, pwd_id_number = :pwd_id_number,
		    guardian_name = :guardian_name, guardian_contact = :guardian_contact,
		    guardian_relationship = :guardian_relationship,
		    senior_id_url = :senior_id_url, psa_url = :psa_url, postal_id_url = :postal_id_url,
		    voters_id_url = :voters_id_url, national_id_url = :national_id_url,
		    medical_cert_url = :medical_cert_url, govt_id_url = :govt_id_url, pwd_form_url = :pwd_form_url,
		    barangay_cert_url = :barangay_cert_url, death_cert_url = :death_cert_url,
		    medical_records_url = :medical_records_url, status = :status
		WHERE id = :id
	`

	res, err := r.db.Conn(ctx).NamedExecContext(ctx, query, b)
	if err != nil {
		return database.MapError(err)
	}
	return affected(res, "beneficiary")
}

// IDsByName finds profiles whose owner has the given first and last name,
// compared case-insensitively.
func (r *BeneficiaryRepository) IDsByName(ctx context.Context, first, last string) ([]string, error) {
	ids := []string{}
	err := r.db.Conn(ctx).SelectContext(ctx, &ids, `
		SELECT b.id
		FROM beneficiaries b
		JOIN users u ON u.id = b.user_id
		WHERE lower(u.first_name) = lower($1) AND lower(u.last_name) = lower($2)
	`, first, last)
	return ids, err
}

// BarangayStats groups profiles by their owner's barangay.
func (r *BeneficiaryRepository) BarangayStats(ctx context.Context) ([]domain.BarangayStat, error) {
	query := `
		SELECT trim(u.address) AS barangay,
		       COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE b.classification = 'senior_citizen') AS senior_citizen,
		       COUNT(*) FILTER (WHERE b.classification = 'pwd') AS pwd,
		       COUNT(*) FILTER (WHERE b.classification = 'solo_parent') AS solo_parent,
		       AVG(b.latitude) AS latitude,
		       AVG(b.longitude) AS longitude
		FROM beneficiaries b
		JOIN users u ON u.id = b.user_id
		GROUP BY trim(u.address)
		ORDER BY total DESC, barangay
	`

	out := []domain.BarangayStat{}
	err := r.db.Conn(ctx).SelectContext(ctx, &out, query)
	return out, err
}
