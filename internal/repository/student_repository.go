package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/academyhq/academy-api/internal/models"
)

// Sentinel errors surfaced by the transactional workflows. Services translate
// them into the legacy error messages.
var (
	// ErrStudentMissing: no student_details row exists for the user.
	ErrStudentMissing = errors.New("student details not found")
	// ErrUserMissing: the users row vanished mid-transaction; the delete
	// workflow treats the user row as authoritative and rolls everything back.
	ErrUserMissing = errors.New("user row not found")
	// ErrProfileMissing: a student profile update matched zero rows.
	ErrProfileMissing = errors.New("student profile not found")
)

// StudentRepository manages persistence for users, student details and their
// assignment tables. Multi-table workflows run as single transactions.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindUserByID fetches a user row regardless of role.
func (r *StudentRepository) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `SELECT id, name, first_name, last_name, username, email, phn_num, gender, date_of_birth, address, role, status, created_at, updated_at
        FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindStudent fetches a user constrained to role=student.
func (r *StudentRepository) FindStudent(ctx context.Context, id int64) (*models.User, error) {
	const query = `SELECT id, name, first_name, last_name, username, email, phn_num, gender, date_of_birth, address, role, status, created_at, updated_at
        FROM users WHERE id = $1 AND role = $2`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id, models.RoleStudent); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindStudentProfile returns a student user with its nested details row.
func (r *StudentRepository) FindStudentProfile(ctx context.Context, id int64) (*models.StudentProfile, error) {
	user, err := r.FindStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := &models.StudentProfile{User: *user}

	details, err := r.FindDetailsByUserID(ctx, id)
	if err == nil {
		profile.StudentDetail = details
	} else if !errors.Is(err, ErrStudentMissing) {
		return nil, err
	}
	return profile, nil
}

// FindDetailsByUserID fetches the student_details row for a user.
func (r *StudentRepository) FindDetailsByUserID(ctx context.Context, userID int64) (*models.StudentDetails, error) {
	const query = `SELECT id, user_id, student_no, salutation, ice_contact, photo_url, created_at, updated_at
        FROM student_details WHERE user_id = $1`
	var details models.StudentDetails
	if err := r.db.GetContext(ctx, &details, query, userID); err != nil {
		if isNoRows(err) {
			return nil, ErrStudentMissing
		}
		return nil, fmt.Errorf("find student details: %w", err)
	}
	return &details, nil
}

// Register creates the user and, for students, the details row and all
// assignment rows inside one transaction.
func (r *StudentRepository) Register(ctx context.Context, params models.RegistrationParams) (userID int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin registration transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const insertUser = `INSERT INTO users (name, first_name, last_name, username, email, phn_num, gender, date_of_birth, address, role, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	u := params.User
	if err = tx.QueryRowContext(ctx, insertUser,
		u.Name, u.FirstName, u.LastName, u.Username, u.Email, u.PhnNum,
		u.Gender, u.DateOfBirth, u.Address, u.Role, u.Status, now, now,
	).Scan(&userID); err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}

	if params.Details != nil {
		const insertDetails = `INSERT INTO student_details (user_id, student_no, salutation, ice_contact, photo_url, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)`
		d := params.Details
		if _, err = tx.ExecContext(ctx, insertDetails, userID, d.StudentNo, d.Salutation, d.ICEContact, d.PhotoURL, now, now); err != nil {
			return 0, fmt.Errorf("insert student details: %w", err)
		}

		if err = bulkInsertAssignments(ctx, tx, "user_grades", "grade_id", userID, params.GradeIDs, false); err != nil {
			return 0, err
		}
		if err = bulkInsertAssignments(ctx, tx, "user_slots", "slot_id", userID, params.SlotIDs, false); err != nil {
			return 0, err
		}
		if err = bulkInsertAssignments(ctx, tx, "user_branches", "branch_id", userID, params.BranchIDs, true); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit registration: %w", err)
	}
	return userID, nil
}

// CreateProfile inserts a student_details row for an existing student user.
func (r *StudentRepository) CreateProfile(ctx context.Context, details *models.StudentDetails) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin profile transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	details.CreatedAt = now
	details.UpdatedAt = now
	const query = `INSERT INTO student_details (user_id, student_no, salutation, ice_contact, photo_url, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err = tx.QueryRowContext(ctx, query, details.UserID, details.StudentNo, details.Salutation, details.ICEContact, details.PhotoURL, now, now).Scan(&details.ID); err != nil {
		return fmt.Errorf("insert student details: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit profile: %w", err)
	}
	return nil
}

// UpdateProfile applies the partial user update and, when the effective role
// is student, the details update plus the full replacement of any supplied
// grade/slot assignments, all in one transaction.
func (r *StudentRepository) UpdateProfile(ctx context.Context, params models.ProfileUpdateParams) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()

	set := make([]string, 0, 12)
	args := make([]interface{}, 0, 13)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	p := params.User
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.FirstName != nil {
		add("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		add("last_name", *p.LastName)
	}
	if p.Username != nil {
		add("username", *p.Username)
	}
	if p.Email != nil {
		add("email", *p.Email)
	}
	if p.PhnNum != nil {
		add("phn_num", *p.PhnNum)
	}
	if p.Gender != nil {
		add("gender", *p.Gender)
	}
	if p.DateOfBirth != nil {
		add("date_of_birth", *p.DateOfBirth)
	}
	if p.Address != nil {
		add("address", *p.Address)
	}
	add("role", params.EffectiveRole)
	add("status", params.EffectiveStatus)
	add("updated_at", now)

	args = append(args, params.UserID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if params.AsStudent {
		if err = r.updateDetailsTx(ctx, tx, params, now); err != nil {
			return err
		}

		if len(params.GradeIDs) > 0 {
			if _, err = tx.ExecContext(ctx, "DELETE FROM user_grades WHERE user_id = $1", params.UserID); err != nil {
				return fmt.Errorf("clear grade assignments: %w", err)
			}
			if err = bulkInsertAssignments(ctx, tx, "user_grades", "grade_id", params.UserID, params.GradeIDs, false); err != nil {
				return err
			}
		}
		if len(params.SlotIDs) > 0 {
			if _, err = tx.ExecContext(ctx, "DELETE FROM user_slots WHERE user_id = $1", params.UserID); err != nil {
				return fmt.Errorf("clear slot assignments: %w", err)
			}
			if err = bulkInsertAssignments(ctx, tx, "user_slots", "slot_id", params.UserID, params.SlotIDs, false); err != nil {
				return err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

func (r *StudentRepository) updateDetailsTx(ctx context.Context, tx *sqlx.Tx, params models.ProfileUpdateParams, now time.Time) error {
	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	d := params.Details
	if d.StudentNo != nil {
		add("student_no", *d.StudentNo)
	}
	if d.Salutation != nil {
		add("salutation", *d.Salutation)
	}
	if d.ICEContact != nil {
		add("ice_contact", *d.ICEContact)
	}
	if d.PhotoURL != nil {
		add("photo_url", *d.PhotoURL)
	}
	add("updated_at", now)

	args = append(args, params.UserID)
	query := fmt.Sprintf("UPDATE student_details SET %s WHERE user_id = $%d", strings.Join(set, ", "), len(args))
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update student details: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student details result: %w", err)
	}
	if affected > 0 {
		return nil
	}
	if params.PriorRoleStudent {
		return ErrProfileMissing
	}

	// Role promotion: no profile row existed, create one instead of silently
	// losing the write.
	photoURL := params.DefaultPhotoURL
	if d.PhotoURL != nil {
		photoURL = *d.PhotoURL
	}
	studentNo := ""
	if d.StudentNo != nil {
		studentNo = *d.StudentNo
	}
	const insert = `INSERT INTO student_details (user_id, student_no, salutation, ice_contact, photo_url, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, insert, params.UserID, studentNo, d.Salutation, d.ICEContact, photoURL, now, now); err != nil {
		return fmt.Errorf("create promoted student details: %w", err)
	}
	return nil
}

// UpdatePhoto sets photo_url on the student's details row outside any wider
// transaction, mirroring the standalone photo upload endpoint.
func (r *StudentRepository) UpdatePhoto(ctx context.Context, userID int64, photoURL string) error {
	const query = `UPDATE student_details SET photo_url = $2, updated_at = $3 WHERE user_id = $1`
	res, err := r.db.ExecContext(ctx, query, userID, photoURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update photo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update photo result: %w", err)
	}
	if affected == 0 {
		return ErrProfileMissing
	}
	return nil
}

// DeleteStudent removes the user and every dependent row in one transaction
// and returns the photo URL that was stored, for file cleanup after commit.
func (r *StudentRepository) DeleteStudent(ctx context.Context, userID int64) (photoURL string, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin delete transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var details struct {
		ID       int64  `db:"id"`
		PhotoURL string `db:"photo_url"`
	}
	if err = tx.GetContext(ctx, &details, "SELECT id, photo_url FROM student_details WHERE user_id = $1", userID); err != nil {
		if isNoRows(err) {
			err = ErrStudentMissing
			return "", err
		}
		return "", fmt.Errorf("load student details: %w", err)
	}

	// Order among the dependent tables does not matter; the user row goes
	// last and is authoritative.
	if _, err = tx.ExecContext(ctx, "DELETE FROM payments WHERE student_details_id = $1", details.ID); err != nil {
		return "", fmt.Errorf("delete payments: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM user_grades WHERE user_id = $1", userID); err != nil {
		return "", fmt.Errorf("delete grade assignments: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM user_slots WHERE user_id = $1", userID); err != nil {
		return "", fmt.Errorf("delete slot assignments: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM user_branches WHERE user_id = $1", userID); err != nil {
		return "", fmt.Errorf("delete branch assignments: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM student_details WHERE user_id = $1", userID); err != nil {
		return "", fmt.Errorf("delete student details: %w", err)
	}

	res, execErr := tx.ExecContext(ctx, "DELETE FROM users WHERE id = $1", userID)
	if execErr != nil {
		err = fmt.Errorf("delete user: %w", execErr)
		return "", err
	}
	affected, raErr := res.RowsAffected()
	if raErr != nil {
		err = fmt.Errorf("delete user result: %w", raErr)
		return "", err
	}
	if affected == 0 {
		err = ErrUserMissing
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit delete: %w", err)
	}
	return details.PhotoURL, nil
}

// ListGrades returns the grade records assigned to a user.
func (r *StudentRepository) ListGrades(ctx context.Context, userID int64) ([]models.GradeSummary, error) {
	const query = `SELECT g.id, g.grade_name, g.course_id
        FROM user_grades ug
        JOIN grades g ON g.id = ug.grade_id
        WHERE ug.user_id = $1`
	var grades []models.GradeSummary
	if err := r.db.SelectContext(ctx, &grades, query, userID); err != nil {
		return nil, fmt.Errorf("list student grades: %w", err)
	}
	return grades, nil
}

// ListBranches returns the branches a student is assigned to. Unknown ids
// yield an empty list, not an error.
func (r *StudentRepository) ListBranches(ctx context.Context, userID int64) ([]models.BranchSummary, error) {
	const query = `SELECT b.id, b.branch_name
        FROM branches b
        JOIN user_branches ub ON ub.branch_id = b.id
        JOIN users u ON u.id = ub.user_id AND u.role = $2
        WHERE ub.user_id = $1`
	var branches []models.BranchSummary
	if err := r.db.SelectContext(ctx, &branches, query, userID, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("list student branches: %w", err)
	}
	return branches, nil
}

// ListSlots returns the slots a student is enrolled in.
func (r *StudentRepository) ListSlots(ctx context.Context, userID int64) ([]models.Slot, error) {
	const query = `SELECT s.id, s.day, s.st_time, s.end_time, s.branch_id, s.course_id, s.grade_id
        FROM slots s
        JOIN user_slots us ON us.slot_id = s.id
        JOIN users u ON u.id = us.user_id AND u.role = $2
        WHERE us.user_id = $1`
	var slots []models.Slot
	if err := r.db.SelectContext(ctx, &slots, query, userID, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("list student slots: %w", err)
	}
	return slots, nil
}

// ListRoster returns the flat student roster used by the export endpoint.
func (r *StudentRepository) ListRoster(ctx context.Context) ([]models.RosterRow, error) {
	const query = `SELECT sd.student_no, u.username, u.email, u.status
        FROM student_details sd
        JOIN users u ON u.id = sd.user_id
        ORDER BY sd.student_no`
	var rows []models.RosterRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return rows, nil
}

func bulkInsertAssignments(ctx context.Context, tx *sqlx.Tx, table, column string, userID int64, ids []int64, ignoreDuplicates bool) error {
	if len(ids) == 0 {
		return nil
	}
	values := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, userID)
	for i, id := range ids {
		args = append(args, id)
		values[i] = fmt.Sprintf("($1, $%d)", len(args))
	}
	query := fmt.Sprintf("INSERT INTO %s (user_id, %s) VALUES %s", table, column, strings.Join(values, ", "))
	if ignoreDuplicates {
		query += " ON CONFLICT DO NOTHING"
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("bulk insert %s: %w", table, err)
	}
	return nil
}
